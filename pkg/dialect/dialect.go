// Package dialect provides SQL dialect configuration for the compiler.
//
// This package contains the public contract for dialect definitions used by
// the expression compiler and database adapters. Concrete dialect
// implementations are registered from pkg/dialects/*/ packages.
package dialect

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pangpang20/gaussdb-django/pkg/core"
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig

	// Database-specific settings
	DefaultSchema string                // Default schema name ("public" for GaussDB)
	Placeholder   core.PlaceholderStyle // How to format query parameters

	// JSON construction and coercion
	jsonArrayFunc   string
	jsonObjectFunc  string
	emptyJSONArray  string
	emptyJSONObject string
	numericCastType string
	textCastType    string

	serialRemaps map[string]string         // serial -> integer, ...
	fieldTypes   map[core.FieldType]string // declared field type -> db type
	dataTypes    map[string]struct{}       // normalized type names accepted by casts
	dataTypeList []string                  // registration order, for display
	reserved     map[string]struct{}       // words that need quoting as identifiers
	features     map[feature]bool
}

type feature int

const (
	featureUnnestInsert feature = iota
	featureReturning
)

// plainIdent matches identifiers that never need quoting once normalized.
var plainIdent = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// Config returns the pure data configuration for this dialect.
func (d *Dialect) Config() *core.DialectConfig {
	reserved := make([]string, 0, len(d.reserved))
	for w := range d.reserved {
		reserved = append(reserved, w)
	}
	sort.Strings(reserved)

	remaps := make(map[string]string, len(d.serialRemaps))
	for k, v := range d.serialRemaps {
		remaps[k] = v
	}
	fieldTypes := make(map[core.FieldType]string, len(d.fieldTypes))
	for k, v := range d.fieldTypes {
		fieldTypes[k] = v
	}

	return &core.DialectConfig{
		Name:                 d.Name,
		Identifiers:          d.Identifiers,
		DefaultSchema:        d.DefaultSchema,
		Placeholder:          d.Placeholder,
		JSONArrayFunc:        d.jsonArrayFunc,
		JSONObjectFunc:       d.jsonObjectFunc,
		EmptyJSONArray:       d.emptyJSONArray,
		EmptyJSONObject:      d.emptyJSONObject,
		NumericCastType:      d.numericCastType,
		TextCastType:         d.textCastType,
		SerialTypeRemaps:     remaps,
		FieldTypes:           fieldTypes,
		SupportsUnnestInsert: d.features[featureUnnestInsert],
		SupportsReturning:    d.features[featureReturning],
		ReservedWords:        reserved,
		DataTypes:            d.DataTypes(),
	}
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// DataTypes returns the registered data types in registration order.
func (d *Dialect) DataTypes() []string {
	return append([]string(nil), d.dataTypeList...)
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reserved[strings.ToLower(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	if d.Identifiers.Quote == `"` && d.Identifiers.QuoteEnd == `"` {
		return pq.QuoteIdentifier(name)
	}
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier if it is a reserved word or
// would not survive normalization unchanged.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) || !plainIdent.MatchString(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// QuoteLiteral renders s as a SQL string literal.
func (d *Dialect) QuoteLiteral(s string) string {
	return strings.TrimSpace(pq.QuoteLiteral(s))
}

// JSONArrayFunc returns the function that builds a JSON array.
func (d *Dialect) JSONArrayFunc() string { return d.jsonArrayFunc }

// JSONObjectFunc returns the function that builds a JSON object.
func (d *Dialect) JSONObjectFunc() string { return d.jsonObjectFunc }

// EmptyJSONArray returns the literal for an empty JSON array.
func (d *Dialect) EmptyJSONArray() string { return d.emptyJSONArray }

// EmptyJSONObject returns the literal for an empty JSON object.
func (d *Dialect) EmptyJSONObject() string { return d.emptyJSONObject }

// NumericCastType returns the type used to coerce extracted JSON text to a number.
func (d *Dialect) NumericCastType() string { return d.numericCastType }

// TextCastType returns the type used to coerce extracted JSON text to a string.
func (d *Dialect) TextCastType() string { return d.textCastType }

// SupportsUnnestInsert reports whether bulk inserts may use UNNEST over arrays.
func (d *Dialect) SupportsUnnestInsert() bool { return d.features[featureUnnestInsert] }

// SupportsReturning reports whether INSERT ... RETURNING is available.
func (d *Dialect) SupportsReturning() bool { return d.features[featureReturning] }

// FieldDBType returns the database type for a declared field.
// An explicit Field.DBType wins over the dialect mapping.
func (d *Dialect) FieldDBType(f *core.Field) (string, bool) {
	if f == nil {
		return "", false
	}
	if f.DBType != "" {
		return f.DBType, true
	}
	t, ok := d.fieldTypes[f.Type]
	return t, ok
}

// RemapCastType rewrites type names that are valid in DDL but not in a cast
// expression (serial -> integer, ...). Other names are returned unchanged.
func (d *Dialect) RemapCastType(name string) string {
	if to, ok := d.serialRemaps[strings.ToLower(strings.TrimSpace(name))]; ok {
		return to
	}
	return name
}

// HasDataType reports whether name is a registered type. Length modifiers
// and array suffixes are ignored: varchar(20)[] matches varchar.
func (d *Dialect) HasDataType(name string) bool {
	_, ok := d.dataTypes[normalizeTypeName(name)]
	return ok
}

func normalizeTypeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for strings.HasSuffix(n, "[]") {
		n = strings.TrimSpace(strings.TrimSuffix(n, "[]"))
	}
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	return strings.Join(strings.Fields(n), " ")
}
