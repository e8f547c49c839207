package exprdoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"gopkg.in/yaml.v3"
)

// call is a list form: [op, arg...].
type call struct {
	d    *Decoder
	op   string
	node *yaml.Node
	args []*yaml.Node
	path string
}

type opFunc func(c *call) (core.Expr, error)

var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"array":        opArray,
		"object":       opObject,
		"key":          keyOp(nil, false, false),
		"key_text":     keyOp(core.NewField(core.FieldText), false, false),
		"key_numeric":  keyOp(core.NewField(core.FieldDecimal), false, false),
		"key_present":  keyOp(nil, true, false),
		"key_absent":   keyOp(nil, true, true),
		"cast":         opCast,
		"cast_field":   opCastField,
		"has_key":      opHasKey,
		"has_keys":     opHasKeys,
		"has_any_keys": opHasAnyKeys,
		"val":          opVal,
		"col":          opCol,
		"raw":          opRaw,
		"isnull":       nullOp(false),
		"notnull":      nullOp(true),
		"not":          opNot,
		"order":        opOrder,
		"func":         opCall,
		"and":          foldOp("AND"),
		"or":           foldOp("OR"),
	}
	for _, op := range []string{"=", "<>", "!=", "<", "<=", ">", ">=", "like", "ilike", "||", "+", "*", "/"} {
		ops[op] = binaryOp(strings.ToUpper(op))
	}
	ops["-"] = opMinus
}

// Operators lists the operator names a document may use.
func Operators() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Decoder) call(n *yaml.Node, path string) (core.Expr, error) {
	if len(n.Content) == 0 {
		return nil, errAt(n, path, "empty list; expected [operator, args...]")
	}
	head := n.Content[0]
	if head.Kind != yaml.ScalarNode || head.ShortTag() != "!!str" {
		return nil, errAt(head, itemPath(path, 0), "operator must be a string")
	}
	op := strings.ToLower(head.Value)
	fn, ok := ops[op]
	if !ok {
		return nil, errAt(head, itemPath(path, 0), fmt.Sprintf("unknown operator %q", head.Value))
	}
	return fn(&call{d: d, op: op, node: n, args: n.Content[1:], path: path})
}

func (c *call) errorf(format string, args ...any) error {
	return errAt(c.node, c.path, c.op+": "+fmt.Sprintf(format, args...))
}

func (c *call) argPath(i int) string { return itemPath(c.path, i+1) }

func (c *call) arity(lo, hi int) error {
	n := len(c.args)
	switch {
	case lo == hi && n != lo:
		return c.errorf("expected %d arguments, got %d", lo, n)
	case n < lo:
		return c.errorf("expected at least %d arguments, got %d", lo, n)
	case hi >= 0 && n > hi:
		return c.errorf("expected at most %d arguments, got %d", hi, n)
	}
	return nil
}

func (c *call) expr(i int) (core.Expr, error) {
	return c.d.decode(c.args[i], c.argPath(i))
}

func (c *call) exprs(from int) ([]core.Expr, error) {
	out := make([]core.Expr, 0, len(c.args)-from)
	for i := from; i < len(c.args); i++ {
		e, err := c.expr(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *call) str(i int) (string, error) {
	n := c.args[i]
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", errAt(n, c.argPath(i), c.op+": expected a string")
	}
	return n.Value, nil
}

// literalKey decodes a key argument: strings are literal keys, anything
// else is an expression.
func (c *call) literalKey(i int) (core.Expr, error) {
	n := c.args[i]
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" {
		return core.Val(n.Value), nil
	}
	return c.expr(i)
}

func opArray(c *call) (core.Expr, error) {
	args, err := c.exprs(0)
	if err != nil {
		return nil, err
	}
	return &core.JSONArray{Args: args}, nil
}

func opObject(c *call) (core.Expr, error) {
	if len(c.args)%2 != 0 {
		return nil, c.errorf("expected key, value pairs, got %d arguments", len(c.args))
	}
	args := make([]core.Expr, 0, len(c.args))
	for i := 0; i < len(c.args); i += 2 {
		k, err := c.literalKey(i)
		if err != nil {
			return nil, err
		}
		v, err := c.expr(i + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, k, v)
	}
	return &core.JSONObject{Args: args}, nil
}

// keyOp builds a key-path lookup: [op, base, key...]. Output and the
// truthy flags apply to the last step.
func keyOp(output *core.Field, truthy, negated bool) opFunc {
	return func(c *call) (core.Expr, error) {
		if err := c.arity(2, -1); err != nil {
			return nil, err
		}
		base, err := c.expr(0)
		if err != nil {
			return nil, err
		}
		if col, ok := base.(*core.ColumnRef); ok && col.Field != nil && col.Field.Type != core.FieldJSON {
			return nil, c.errorf("column %q is %s, not json", col.Column, col.Field.Type)
		}

		var kt *core.KeyTransform
		expr := base
		for i := 1; i < len(c.args); i++ {
			k, err := c.key(i)
			if err != nil {
				return nil, err
			}
			kt = &core.KeyTransform{Key: k, LHS: expr}
			expr = kt
		}
		if output != nil {
			f := *output
			kt.Output = &f
		}
		kt.Truthy = truthy
		kt.Negated = negated
		return kt, nil
	}
}

func (c *call) key(i int) (*core.Key, error) {
	n := c.args[i]
	if n.Kind != yaml.ScalarNode {
		return nil, errAt(n, c.argPath(i), c.op+": keys must be strings or integers")
	}
	switch n.ShortTag() {
	case "!!str":
		if n.Value == "" {
			return nil, errAt(n, c.argPath(i), c.op+": empty key")
		}
		return core.NameKey(n.Value), nil
	case "!!int":
		var idx int
		if err := n.Decode(&idx); err != nil {
			return nil, errAt(n, c.argPath(i), c.op+": "+err.Error())
		}
		return core.IndexKey(idx), nil
	default:
		return nil, errAt(n, c.argPath(i), c.op+": keys must be strings or integers")
	}
}

func opCast(c *call) (core.Expr, error) {
	if err := c.arity(2, 2); err != nil {
		return nil, err
	}
	e, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	name, err := c.str(1)
	if err != nil {
		return nil, err
	}
	return &core.Cast{Expr: e, TypeName: name}, nil
}

func opCastField(c *call) (core.Expr, error) {
	if err := c.arity(2, 2); err != nil {
		return nil, err
	}
	e, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	name, err := c.str(1)
	if err != nil {
		return nil, err
	}
	t, ok := core.ParseFieldType(name)
	if !ok {
		return nil, c.errorf("unknown field type %q", name)
	}
	return &core.Cast{Expr: e, Output: core.NewField(t)}, nil
}

func opHasKey(c *call) (core.Expr, error) {
	if err := c.arity(2, 2); err != nil {
		return nil, err
	}
	lhs, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	key, err := c.literalKey(1)
	if err != nil {
		return nil, err
	}
	return &core.HasKey{LHS: lhs, Key: key}, nil
}

func (c *call) keyList() (core.Expr, []core.Expr, error) {
	if err := c.arity(2, -1); err != nil {
		return nil, nil, err
	}
	lhs, err := c.expr(0)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]core.Expr, 0, len(c.args)-1)
	for i := 1; i < len(c.args); i++ {
		k, err := c.literalKey(i)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
	}
	return lhs, keys, nil
}

func opHasKeys(c *call) (core.Expr, error) {
	lhs, keys, err := c.keyList()
	if err != nil {
		return nil, err
	}
	return &core.HasKeys{LHS: lhs, Keys: keys}, nil
}

func opHasAnyKeys(c *call) (core.Expr, error) {
	lhs, keys, err := c.keyList()
	if err != nil {
		return nil, err
	}
	return &core.HasAnyKeys{LHS: lhs, Keys: keys}, nil
}

func opVal(c *call) (core.Expr, error) {
	if err := c.arity(1, 1); err != nil {
		return nil, err
	}
	n := c.args[0]
	if n.Kind != yaml.ScalarNode {
		return nil, errAt(n, c.argPath(0), "val: expected a scalar")
	}
	v, err := scalarValue(n)
	if err != nil {
		return nil, errAt(n, c.argPath(0), err.Error())
	}
	return core.Val(v), nil
}

func opCol(c *call) (core.Expr, error) {
	if err := c.arity(1, 1); err != nil {
		return nil, err
	}
	name, err := c.str(0)
	if err != nil {
		return nil, err
	}
	col, err := c.d.column(name)
	if err != nil {
		return nil, errAt(c.args[0], c.argPath(0), err.Error())
	}
	return col, nil
}

// opRaw is ["raw", sql, param...]; params must be scalars.
func opRaw(c *call) (core.Expr, error) {
	if err := c.arity(1, -1); err != nil {
		return nil, err
	}
	sql, err := c.str(0)
	if err != nil {
		return nil, err
	}
	var params []any
	for i := 1; i < len(c.args); i++ {
		n := c.args[i]
		if n.Kind != yaml.ScalarNode {
			return nil, errAt(n, c.argPath(i), "raw: params must be scalars")
		}
		v, err := scalarValue(n)
		if err != nil {
			return nil, errAt(n, c.argPath(i), err.Error())
		}
		params = append(params, v)
	}
	return &core.Raw{SQL: sql, Params: params}, nil
}

func nullOp(not bool) opFunc {
	return func(c *call) (core.Expr, error) {
		if err := c.arity(1, 1); err != nil {
			return nil, err
		}
		e, err := c.expr(0)
		if err != nil {
			return nil, err
		}
		return &core.IsNullExpr{Expr: e, Not: not}, nil
	}
}

func opNot(c *call) (core.Expr, error) {
	if err := c.arity(1, 1); err != nil {
		return nil, err
	}
	e, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	return &core.UnaryExpr{Op: "NOT", Expr: e}, nil
}

// opOrder is ["order", expr, modifier...] with modifiers asc, desc,
// nulls_first and nulls_last.
func opOrder(c *call) (core.Expr, error) {
	if err := c.arity(1, 3); err != nil {
		return nil, err
	}
	e, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	ob := &core.OrderBy{Expr: e}
	for i := 1; i < len(c.args); i++ {
		mod, err := c.str(i)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(mod) {
		case "asc":
			ob.Desc = false
		case "desc":
			ob.Desc = true
		case "nulls_first":
			ob.Nulls = core.NullsFirst
		case "nulls_last":
			ob.Nulls = core.NullsLast
		default:
			return nil, errAt(c.args[i], c.argPath(i), fmt.Sprintf("order: unknown modifier %q", mod))
		}
	}
	return ob, nil
}

func opCall(c *call) (core.Expr, error) {
	if err := c.arity(1, -1); err != nil {
		return nil, err
	}
	name, err := c.str(0)
	if err != nil {
		return nil, err
	}
	if !isIdent(name) {
		return nil, c.errorf("invalid function name %q", name)
	}
	args, err := c.exprs(1)
	if err != nil {
		return nil, err
	}
	return &core.FuncCall{Name: name, Args: args}, nil
}

func binaryOp(sqlOp string) opFunc {
	return func(c *call) (core.Expr, error) {
		if err := c.arity(2, 2); err != nil {
			return nil, err
		}
		args, err := c.exprs(0)
		if err != nil {
			return nil, err
		}
		return &core.BinaryExpr{Left: args[0], Op: sqlOp, Right: args[1]}, nil
	}
}

// opMinus is negation with one argument and subtraction with two.
func opMinus(c *call) (core.Expr, error) {
	if err := c.arity(1, 2); err != nil {
		return nil, err
	}
	args, err := c.exprs(0)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return &core.UnaryExpr{Op: "-", Expr: args[0]}, nil
	}
	return &core.BinaryExpr{Left: args[0], Op: "-", Right: args[1]}, nil
}

// foldOp joins two or more operands left to right.
func foldOp(sqlOp string) opFunc {
	return func(c *call) (core.Expr, error) {
		if err := c.arity(2, -1); err != nil {
			return nil, err
		}
		args, err := c.exprs(0)
		if err != nil {
			return nil, err
		}
		e := args[0]
		for _, rhs := range args[1:] {
			e = &core.BinaryExpr{Left: e, Op: sqlOp, Right: rhs}
		}
		return e, nil
	}
}
