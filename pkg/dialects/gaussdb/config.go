// Package gaussdb provides the GaussDB (openGauss) SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package gaussdb

import "github.com/pangpang20/gaussdb-django/pkg/core"

// Config is the GaussDB dialect configuration.
// This is pure data, shared by the compiler and the adapter.
var Config = &core.DialectConfig{
	Name:          "gaussdb",
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	},

	JSONArrayFunc:   "json_build_array",
	JSONObjectFunc:  "json_build_object",
	EmptyJSONArray:  "'[]'::json",
	EmptyJSONObject: "'{}'::json",
	NumericCastType: "numeric",
	TextCastType:    "text",

	// Serial pseudo-types are only valid in column definitions.
	SerialTypeRemaps: map[string]string{
		"smallserial": "smallint",
		"serial":      "integer",
		"bigserial":   "bigint",
	},

	FieldTypes: map[core.FieldType]string{
		core.FieldText:      "text",
		core.FieldChar:      "varchar",
		core.FieldSmallInt:  "smallint",
		core.FieldInteger:   "integer",
		core.FieldBigInt:    "bigint",
		core.FieldSmallAuto: "smallserial",
		core.FieldAuto:      "serial",
		core.FieldBigAuto:   "bigserial",
		core.FieldFloat:     "double precision",
		core.FieldDecimal:   "numeric",
		core.FieldBoolean:   "boolean",
		core.FieldDate:      "date",
		core.FieldTimestamp: "timestamp with time zone",
		core.FieldUUID:      "uuid",
		core.FieldJSON:      "jsonb",
	},

	// Bulk inserts use a plain VALUES list; the UNNEST strategy is disabled.
	SupportsUnnestInsert: false,
	SupportsReturning:    true,

	DataTypes: []string{
		"smallint", "integer", "bigint", "int", "int2", "int4", "int8", "tinyint",
		"smallserial", "serial", "bigserial",
		"numeric", "decimal", "number", "real", "float", "float4", "float8",
		"double precision", "money",
		"boolean", "bool",
		"char", "character", "varchar", "character varying", "varchar2",
		"nvarchar2", "text", "clob", "name",
		"bytea", "blob", "raw",
		"date", "time", "timetz", "timestamp", "timestamptz",
		"timestamp with time zone", "timestamp without time zone",
		"smalldatetime", "interval",
		"uuid", "json", "jsonb", "inet", "cidr", "macaddr",
		"bit", "varbit", "oid", "xml",
	},
}
