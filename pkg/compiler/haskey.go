package compiler

import (
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

func (p *pass) compileHasKey(h *core.HasKey) (string, error) {
	if h.Key == nil {
		return "", &ShapeError{Kind: h.Kind(), Reason: "missing key"}
	}
	lhs, err := p.jsonOperand(h.LHS)
	if err != nil {
		return "", err
	}
	key, err := p.keyOperand(h.Key)
	if err != nil {
		return "", err
	}
	return lhs + " ? " + key, nil
}

func (p *pass) compileKeyArray(n core.Expr, lhsExpr core.Expr, keys []core.Expr, op string) (string, error) {
	if len(keys) == 0 {
		return "", &ShapeError{Kind: n.Kind(), Reason: "requires at least one key"}
	}
	lhs, err := p.jsonOperand(lhsExpr)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == nil {
			return "", &ShapeError{Kind: n.Kind(), Reason: "nil key"}
		}
		sql, err := p.keyOperand(k)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return lhs + " " + op + " ARRAY[" + strings.Join(parts, ", ") + "]", nil
}

// jsonOperand compiles the tested JSON value without any text or numeric
// coercion.
func (p *pass) jsonOperand(e core.Expr) (string, error) {
	sql, err := p.Compile(e, Context{rawJSON: true})
	if err != nil {
		return "", err
	}
	switch e.(type) {
	case *core.ColumnRef, *core.FuncCall, *core.JSONObject, *core.JSONArray:
		return sql, nil
	default:
		return "(" + sql + ")", nil
	}
}

// keyOperand binds string literal keys and coerces any other key
// expression to text.
func (p *pass) keyOperand(k core.Expr) (string, error) {
	if lit, ok := k.(*core.Literal); ok {
		if s, ok := lit.StringValue(); ok {
			return p.Bind(s), nil
		}
	}
	sql, err := p.Compile(k, Context{})
	if err != nil {
		return "", err
	}
	return "(" + sql + ")::" + p.c.dialect.TextCastType(), nil
}
