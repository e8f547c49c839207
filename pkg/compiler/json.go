package compiler

import (
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/shopspring/decimal"
)

func (p *pass) compileJSONArray(a *core.JSONArray) (string, error) {
	d := p.c.dialect
	if len(a.Args) == 0 {
		return d.EmptyJSONArray(), nil
	}
	args := make([]string, 0, len(a.Args))
	for _, arg := range a.Args {
		sql, err := p.jsonValue(arg)
		if err != nil {
			return "", err
		}
		args = append(args, sql)
	}
	return d.JSONArrayFunc() + "(" + strings.Join(args, ", ") + ")", nil
}

func (p *pass) compileJSONObject(o *core.JSONObject) (string, error) {
	d := p.c.dialect
	if len(o.Args)%2 != 0 {
		return "", &ShapeError{Kind: o.Kind(), Reason: "expects an even number of arguments (key, value pairs)"}
	}
	if len(o.Args) == 0 {
		return d.EmptyJSONObject(), nil
	}
	args := make([]string, 0, len(o.Args))
	for i := 0; i < len(o.Args); i += 2 {
		key, err := p.Compile(o.Args[i], Context{})
		if err != nil {
			return "", err
		}
		val, err := p.jsonValue(o.Args[i+1])
		if err != nil {
			return "", err
		}
		args = append(args, "("+key+")::"+d.TextCastType(), val)
	}
	return d.JSONObjectFunc() + "(" + strings.Join(args, ", ") + ")", nil
}

// jsonValue compiles a JSON builder argument. Bound literals carry an
// explicit type: the builders take "any" arguments, so the server cannot
// infer a parameter type on its own.
func (p *pass) jsonValue(e core.Expr) (string, error) {
	lit, ok := e.(*core.Literal)
	if !ok || lit.Value == nil {
		return p.Compile(e, Context{})
	}
	ph := p.Bind(lit.Value)
	if t := paramType(lit.Value); t != "" {
		return ph + "::" + t, nil
	}
	return ph, nil
}

func paramType(v any) string {
	switch v.(type) {
	case string:
		return "text"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return "bigint"
	case float32, float64:
		return "double precision"
	case decimal.Decimal, *decimal.Decimal:
		return "numeric"
	default:
		return ""
	}
}
