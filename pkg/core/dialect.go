package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data; the runtime behavior lives in pkg/dialect.Dialect,
// which is built from this config.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "gaussdb", "postgres")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("public" for GaussDB and Postgres)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// JSON construction
	JSONArrayFunc    string // json_build_array, jsonb_build_array
	JSONObjectFunc   string // json_build_object, jsonb_build_object
	EmptyJSONArray   string // literal used when an array has no elements
	EmptyJSONObject  string // literal used when an object has no members
	NumericCastType  string // type used to coerce JSON text to a number
	TextCastType     string // type used to coerce JSON text to a string
	SerialTypeRemaps map[string]string

	// FieldTypes maps declared field types to database type names.
	FieldTypes map[FieldType]string

	// Feature flags
	SupportsUnnestInsert bool
	SupportsReturning    bool

	// Keywords for quoting and type checks
	ReservedWords []string
	DataTypes     []string
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Oracle compatibility mode).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, TiDB).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL, GaussDB).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `
	QuoteEnd      string                // End quote character (usually same as Quote)
	Escape        string                // Escape sequence: "", ``
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}
