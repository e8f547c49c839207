package exprdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/mitranim/refut"
	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/shopspring/decimal"
)

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	timeType       = reflect.TypeOf(time.Time{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
	bytesType      = reflect.TypeOf([]byte(nil))
)

// modelColumns collects the columns of a model struct: every field with a
// "db" tag, including fields of embedded structs. The optional "field" tag
// overrides the inferred type, e.g. `db:"id" field:"auto"`.
func modelColumns(rtype reflect.Type) (map[string]*core.Field, error) {
	cols := make(map[string]*core.Field)
	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		name := refut.TagIdent(sfield.Tag.Get("db"))
		if name == "" {
			return nil
		}
		if _, dup := cols[name]; dup {
			return fmt.Errorf("duplicate column %q in %v", name, rtype)
		}
		t, err := fieldTypeOf(sfield)
		if err != nil {
			return err
		}
		cols[name] = &core.Field{Name: name, Type: t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.New("model has no fields with a db tag")
	}
	return cols, nil
}

func fieldTypeOf(sfield reflect.StructField) (core.FieldType, error) {
	if tag := sfield.Tag.Get("field"); tag != "" {
		t, ok := core.ParseFieldType(tag)
		if !ok {
			return core.FieldUnknown, fmt.Errorf("field %s: unknown field type %q", sfield.Name, tag)
		}
		return t, nil
	}

	rtype := sfield.Type
	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}

	switch rtype {
	case decimalType:
		return core.FieldDecimal, nil
	case timeType:
		return core.FieldTimestamp, nil
	case uuidType:
		return core.FieldUUID, nil
	case rawMessageType:
		return core.FieldJSON, nil
	case bytesType:
		return core.FieldUnknown, nil
	}

	switch rtype.Kind() {
	case reflect.String:
		return core.FieldText, nil
	case reflect.Bool:
		return core.FieldBoolean, nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return core.FieldSmallInt, nil
	case reflect.Int32, reflect.Uint16:
		return core.FieldInteger, nil
	case reflect.Int, reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return core.FieldBigInt, nil
	case reflect.Float32, reflect.Float64:
		return core.FieldFloat, nil
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Interface:
		return core.FieldJSON, nil
	default:
		return core.FieldUnknown, nil
	}
}
