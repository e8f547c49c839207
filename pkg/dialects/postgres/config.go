// Package postgres provides the PostgreSQL SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import "github.com/pangpang20/gaussdb-django/pkg/core"

// Config is the PostgreSQL dialect configuration.
var Config = &core.DialectConfig{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase, // Postgres normalizes unquoted to lowercase
	},

	JSONArrayFunc:   "jsonb_build_array",
	JSONObjectFunc:  "jsonb_build_object",
	EmptyJSONArray:  "'[]'::jsonb",
	EmptyJSONObject: "'{}'::jsonb",
	NumericCastType: "numeric",
	TextCastType:    "text",

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

	SupportsUnnestInsert: true,
	SupportsReturning:    true,

	DataTypes: []string{
		"smallint", "integer", "bigint", "int", "int2", "int4", "int8",
		"smallserial", "serial", "bigserial",
		"numeric", "decimal", "real", "float4", "float8", "double precision",
		"money", "boolean", "bool",
		"char", "character", "varchar", "character varying", "text", "name",
		"bytea", "date", "time", "timetz", "timestamp", "timestamptz",
		"timestamp with time zone", "timestamp without time zone", "interval",
		"uuid", "json", "jsonb", "inet", "cidr", "macaddr",
		"bit", "varbit", "oid", "xml",
	},
}
