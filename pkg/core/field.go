package core

// FieldType classifies the declared type of a column or expression result.
type FieldType int

// FieldType constants, mirroring the model field kinds a schema declares.
const (
	FieldUnknown FieldType = iota
	FieldText
	FieldChar
	FieldSmallInt
	FieldInteger
	FieldBigInt
	FieldSmallAuto
	FieldAuto
	FieldBigAuto
	FieldFloat
	FieldDecimal
	FieldBoolean
	FieldDate
	FieldTimestamp
	FieldUUID
	FieldJSON
)

var fieldTypeNames = map[FieldType]string{
	FieldUnknown:   "unknown",
	FieldText:      "text",
	FieldChar:      "char",
	FieldSmallInt:  "smallint",
	FieldInteger:   "integer",
	FieldBigInt:    "bigint",
	FieldSmallAuto: "smallauto",
	FieldAuto:      "auto",
	FieldBigAuto:   "bigauto",
	FieldFloat:     "float",
	FieldDecimal:   "decimal",
	FieldBoolean:   "boolean",
	FieldDate:      "date",
	FieldTimestamp: "timestamp",
	FieldUUID:      "uuid",
	FieldJSON:      "json",
}

// String returns the string representation of FieldType.
func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseFieldType maps a name produced by String back to a FieldType.
func ParseFieldType(s string) (FieldType, bool) {
	for t, name := range fieldTypeNames {
		if name == s && t != FieldUnknown {
			return t, true
		}
	}
	return FieldUnknown, false
}

// IsNumeric reports whether values of this type compare numerically.
func (t FieldType) IsNumeric() bool {
	switch t {
	case FieldSmallInt, FieldInteger, FieldBigInt,
		FieldSmallAuto, FieldAuto, FieldBigAuto,
		FieldFloat, FieldDecimal:
		return true
	default:
		return false
	}
}

// IsText reports whether values of this type are character strings.
func (t FieldType) IsText() bool {
	return t == FieldText || t == FieldChar
}

// Field describes a column or an expression's output type.
type Field struct {
	Name string
	Type FieldType
	// DBType overrides the dialect's database type for Type.
	DBType string
}

// NewField returns an unnamed field of the given type.
func NewField(t FieldType) *Field { return &Field{Type: t} }

// IsNumeric reports whether the field is non-nil and numeric.
func (f *Field) IsNumeric() bool { return f != nil && f.Type.IsNumeric() }

// IsText reports whether the field is non-nil and textual.
func (f *Field) IsText() bool { return f != nil && f.Type.IsText() }
