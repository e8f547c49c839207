package postgres

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSONValue decodes json and jsonb column values into Go values.
// Numbers decode as json.Number so wide integers keep their precision.
// Values of other types, and values the driver already decoded, pass
// through unchanged.
func DecodeJSONValue(dbType string, v any) (any, error) {
	if dbType != "JSON" && dbType != "JSONB" {
		return v, nil
	}

	var raw []byte
	switch x := v.(type) {
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return v, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", dbType, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid %s value: trailing data", dbType)
	}
	return out, nil
}
