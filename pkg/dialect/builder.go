package dialect

import (
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name and
// PostgreSQL-family defaults.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: core.IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: core.NormLowercase,
			},
			DefaultSchema:   "public",
			Placeholder:     core.PlaceholderDollar,
			jsonArrayFunc:   "json_build_array",
			jsonObjectFunc:  "json_build_object",
			emptyJSONArray:  "'[]'::json",
			emptyJSONObject: "'{}'::json",
			numericCastType: "numeric",
			textCastType:    "text",
			serialRemaps:    make(map[string]string),
			fieldTypes:      make(map[core.FieldType]string),
			dataTypes:       make(map[string]struct{}),
			reserved:        make(map[string]struct{}),
			features:        make(map[feature]bool),
		},
	}
}

// New creates a dialect builder from a DialectConfig.
// Empty config fields keep the NewDialect defaults.
func New(cfg *core.DialectConfig) *Builder {
	b := NewDialect(cfg.Name)
	d := b.dialect
	if cfg.Identifiers.Quote != "" {
		d.Identifiers = cfg.Identifiers
	}
	if cfg.DefaultSchema != "" {
		d.DefaultSchema = cfg.DefaultSchema
	}
	d.Placeholder = cfg.Placeholder
	b.JSONFunctions(cfg.JSONArrayFunc, cfg.JSONObjectFunc)
	b.EmptyJSONLiterals(cfg.EmptyJSONArray, cfg.EmptyJSONObject)
	b.CoercionTypes(cfg.NumericCastType, cfg.TextCastType)
	for from, to := range cfg.SerialTypeRemaps {
		b.SerialRemap(from, to)
	}
	for t, name := range cfg.FieldTypes {
		b.FieldType(t, name)
	}
	d.features[featureUnnestInsert] = cfg.SupportsUnnestInsert
	d.features[featureReturning] = cfg.SupportsReturning
	b.WithReservedWords(cfg.ReservedWords...)
	b.WithDataTypes(cfg.DataTypes...)
	return b
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// JSONFunctions sets the array and object builder functions. Empty names
// keep the current value.
func (b *Builder) JSONFunctions(array, object string) *Builder {
	if array != "" {
		b.dialect.jsonArrayFunc = array
	}
	if object != "" {
		b.dialect.jsonObjectFunc = object
	}
	return b
}

// EmptyJSONLiterals sets the literals used for empty arrays and objects.
func (b *Builder) EmptyJSONLiterals(array, object string) *Builder {
	if array != "" {
		b.dialect.emptyJSONArray = array
	}
	if object != "" {
		b.dialect.emptyJSONObject = object
	}
	return b
}

// CoercionTypes sets the numeric and text types used when coercing
// extracted JSON values.
func (b *Builder) CoercionTypes(numeric, text string) *Builder {
	if numeric != "" {
		b.dialect.numericCastType = numeric
	}
	if text != "" {
		b.dialect.textCastType = text
	}
	return b
}

// SerialRemap registers a type that must be rewritten inside casts.
func (b *Builder) SerialRemap(from, to string) *Builder {
	b.dialect.serialRemaps[strings.ToLower(from)] = to
	return b
}

// FieldType maps a declared field type to a database type.
func (b *Builder) FieldType(t core.FieldType, dbType string) *Builder {
	b.dialect.fieldTypes[t] = dbType
	return b
}

// WithUnnestInsert enables UNNEST-based bulk inserts.
func (b *Builder) WithUnnestInsert() *Builder {
	b.dialect.features[featureUnnestInsert] = true
	return b
}

// WithReturning enables INSERT ... RETURNING.
func (b *Builder) WithReturning() *Builder {
	b.dialect.features[featureReturning] = true
	return b
}

// WithDataTypes registers supported data types.
func (b *Builder) WithDataTypes(types ...string) *Builder {
	for _, t := range types {
		n := normalizeTypeName(t)
		if _, ok := b.dialect.dataTypes[n]; ok {
			continue
		}
		b.dialect.dataTypes[n] = struct{}{}
		b.dialect.dataTypeList = append(b.dialect.dataTypeList, t)
	}
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reserved[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
