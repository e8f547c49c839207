// Package exprdoc decodes expression documents into compiler nodes.
//
// A document is JSON or YAML. Strings are column references or
// "__"-separated JSON lookups (data__address__city), numbers, booleans and
// null are bound literals, mappings build JSON objects, and lists are
// operator calls whose first element names the operator:
//
//	["has_keys", "data", "a", "b"]
//	["=", ["key_text", "data", "address", "city"], ["val", "Paris"]]
//	["order", ["key_numeric", "data", "rank"], "desc"]
package exprdoc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DecodeError reports where in a document decoding failed.
type DecodeError struct {
	Path string // e.g. $[2][1]
	Line int
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid expression at %s (line %d): %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("invalid expression at %s: %s", e.Path, e.Msg)
}

// Decoder turns documents into expressions. The zero value decodes without
// a model: any column name is accepted and no column types are known.
type Decoder struct {
	model   reflect.Type
	columns map[string]*core.Field
}

// Option configures a Decoder.
type Option func(*Decoder) error

// WithModel validates column references against the "db" tags of a struct
// type and attaches the column types to them. model may be a struct value,
// a pointer to one, or a reflect.Type.
func WithModel(model any) Option {
	return func(d *Decoder) error {
		rtype, ok := model.(reflect.Type)
		if !ok {
			rtype = reflect.TypeOf(model)
		}
		for rtype != nil && rtype.Kind() == reflect.Pointer {
			rtype = rtype.Elem()
		}
		if rtype == nil || rtype.Kind() != reflect.Struct {
			return fmt.Errorf("model must be a struct type, got %v", rtype)
		}
		cols, err := modelColumns(rtype)
		if err != nil {
			return fmt.Errorf("failed to read model %v: %w", rtype, err)
		}
		d.model = rtype
		d.columns = cols
		return nil
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...Option) (*Decoder, error) {
	d := &Decoder{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Decode decodes a document without a model.
func Decode(src []byte) (core.Expr, error) {
	return (&Decoder{}).Decode(src)
}

// Decode parses a JSON or YAML document.
func (d *Decoder) Decode(src []byte) (core.Expr, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse expression document: %w", err)
	}
	if doc.Kind == 0 {
		return nil, &DecodeError{Path: "$", Msg: "empty document"}
	}
	return d.DecodeNode(&doc)
}

// DecodeString is Decode for a string.
func (d *Decoder) DecodeString(src string) (core.Expr, error) {
	return d.Decode([]byte(src))
}

// DecodeNode decodes an already parsed YAML node.
func (d *Decoder) DecodeNode(n *yaml.Node) (core.Expr, error) {
	return d.decode(n, "$")
}

func (d *Decoder) decode(n *yaml.Node, path string) (core.Expr, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) != 1 {
			return nil, errAt(n, path, "expected a single expression")
		}
		return d.decode(n.Content[0], path)
	case yaml.AliasNode:
		return d.decode(n.Alias, path)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			e, err := d.ParseLookup(n.Value)
			if err != nil {
				return nil, errAt(n, path, err.Error())
			}
			return e, nil
		}
		v, err := scalarValue(n)
		if err != nil {
			return nil, errAt(n, path, err.Error())
		}
		return core.Val(v), nil
	case yaml.MappingNode:
		return d.mapping(n, path)
	case yaml.SequenceNode:
		return d.call(n, path)
	default:
		return nil, errAt(n, path, "unsupported node")
	}
}

// mapping decodes {k: v, ...} into a JSON object literal. Keys are literal
// strings; values are expressions.
func (d *Decoder) mapping(n *yaml.Node, path string) (core.Expr, error) {
	args := make([]core.Expr, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, errAt(k, path, "object keys must be scalars")
		}
		val, err := d.decode(v, path+"."+k.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, core.Val(k.Value), val)
	}
	return &core.JSONObject{Args: args}, nil
}

// scalarValue converts a non-string scalar to a Go value: int64 when
// integral, decimal.Decimal for other numbers.
func scalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i, nil
		}
		dec, err := decimal.NewFromString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", n.Value)
		}
		return dec, nil
	case "!!float":
		dec, err := decimal.NewFromString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("unsupported number %q", n.Value)
		}
		return dec, nil
	case "!!str":
		return n.Value, nil
	default:
		return nil, fmt.Errorf("unsupported scalar tag %s", n.ShortTag())
	}
}

func errAt(n *yaml.Node, path, msg string) *DecodeError {
	return &DecodeError{Path: path, Line: n.Line, Msg: msg}
}

func itemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// ParseLookup parses a column reference with optional JSON keys:
// "data", "app_model.data", "data__address__city", "data__items__0".
// Segments made only of digits are array indexes.
func (d *Decoder) ParseLookup(s string) (core.Expr, error) {
	parts := strings.Split(s, "__")
	col, err := d.column(parts[0])
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return col, nil
	}
	if col.Field != nil && col.Field.Type != core.FieldJSON {
		return nil, fmt.Errorf("column %q is %s, not json; cannot look up %q", col.Column, col.Field.Type, strings.Join(parts[1:], "__"))
	}
	keys := make([]*core.Key, 0, len(parts)-1)
	for _, p := range parts[1:] {
		k, err := parseKey(p)
		if err != nil {
			return nil, fmt.Errorf("invalid lookup %q: %w", s, err)
		}
		keys = append(keys, k)
	}
	return core.Lookup(col, keys...), nil
}

func parseKey(s string) (*core.Key, error) {
	if s == "" {
		return nil, fmt.Errorf("empty key")
	}
	if isDigits(s) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		return core.IndexKey(i), nil
	}
	return core.NameKey(s), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (d *Decoder) column(ref string) (*core.ColumnRef, error) {
	var table, name string
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		table, name = ref[:i], ref[i+1:]
		if !isIdent(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	} else {
		name = ref
	}
	if !isIdent(name) {
		return nil, fmt.Errorf("invalid column name %q", name)
	}

	col := &core.ColumnRef{Table: table, Column: name}
	if d.columns != nil {
		f, ok := d.columns[name]
		if !ok {
			return nil, fmt.Errorf("no column %q in %v", name, d.model)
		}
		col.Field = f
	}
	return col, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '$'):
		default:
			return false
		}
	}
	return true
}
