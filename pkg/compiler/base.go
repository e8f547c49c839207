package compiler

import (
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
)

// Walker is the view of a compilation pass given to a Delegate.
type Walker interface {
	// Compile compiles a child node, dispatching special kinds back to the
	// translator.
	Compile(e core.Expr, ctx Context) (string, error)
	// Bind appends a parameter and returns its placeholder.
	Bind(v any) string
	// Dialect returns the target dialect.
	Dialect() *dialect.Dialect
}

// Delegate compiles the node kinds the translator does not rewrite.
type Delegate interface {
	CompileNode(w Walker, e core.Expr, ctx Context) (string, error)
}

// Standard is the default Delegate.
type Standard struct{}

// CompileNode implements Delegate.
func (s Standard) CompileNode(w Walker, e core.Expr, ctx Context) (string, error) {
	switch expr := e.(type) {
	case *core.ColumnRef:
		return s.columnRef(w.Dialect(), expr), nil
	case *core.Literal:
		if expr.Value == nil {
			return "NULL", nil
		}
		return w.Bind(expr.Value), nil
	case *core.Raw:
		return s.raw(w, expr)
	case *core.FuncCall:
		return s.funcCall(w, expr)
	case *core.BinaryExpr:
		return s.binary(w, expr)
	case *core.UnaryExpr:
		return s.unary(w, expr)
	case *core.IsNullExpr:
		inner, err := s.operand(w, expr.Expr)
		if err != nil {
			return "", err
		}
		if expr.Not {
			return inner + " IS NOT NULL", nil
		}
		return inner + " IS NULL", nil
	case *core.Cast:
		return s.cast(w, expr)
	default:
		return "", &UnsupportedNodeError{Kind: e.Kind()}
	}
}

func (Standard) columnRef(d *dialect.Dialect, c *core.ColumnRef) string {
	col := d.QuoteIdentifierIfNeeded(c.Column)
	if c.Table == "" {
		return col
	}
	return d.QuoteIdentifierIfNeeded(c.Table) + "." + col
}

// raw substitutes each "?" with the next bound parameter. "??" is a literal
// question mark, so JSON operators can be written in raw SQL.
func (Standard) raw(w Walker, r *core.Raw) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(r.SQL); i++ {
		ch := r.SQL[i]
		if ch != '?' {
			b.WriteByte(ch)
			continue
		}
		if i+1 < len(r.SQL) && r.SQL[i+1] == '?' {
			b.WriteByte('?')
			i++
			continue
		}
		if next >= len(r.Params) {
			return "", &ShapeError{Kind: r.Kind(), Reason: "more placeholders than parameters"}
		}
		b.WriteString(w.Bind(r.Params[next]))
		next++
	}
	if next != len(r.Params) {
		return "", &ShapeError{Kind: r.Kind(), Reason: "more parameters than placeholders"}
	}
	return b.String(), nil
}

func (Standard) funcCall(w Walker, f *core.FuncCall) (string, error) {
	if f.Name == "" {
		return "", &ShapeError{Kind: f.Kind(), Reason: "missing function name"}
	}
	args := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		sql, err := w.Compile(a, Context{})
		if err != nil {
			return "", err
		}
		args = append(args, sql)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")", nil
}

func (s Standard) binary(w Walker, b *core.BinaryExpr) (string, error) {
	if b.Op == "" {
		return "", &ShapeError{Kind: b.Kind(), Reason: "missing operator"}
	}
	left, err := s.operand(w, b.Left)
	if err != nil {
		return "", err
	}
	right, err := s.operand(w, b.Right)
	if err != nil {
		return "", err
	}
	return left + " " + b.Op + " " + right, nil
}

func (s Standard) unary(w Walker, u *core.UnaryExpr) (string, error) {
	inner, err := s.operand(w, u.Expr)
	if err != nil {
		return "", err
	}
	op := strings.ToUpper(u.Op)
	if op == "-" || op == "+" {
		return op + inner, nil
	}
	return op + " " + inner, nil
}

// cast is the fallback rendering used when the translator cannot resolve a
// cast's target type. With no type at all the inner expression is returned.
func (Standard) cast(w Walker, c *core.Cast) (string, error) {
	inner, err := w.Compile(c.Expr, Context{})
	if err != nil {
		return "", err
	}
	name := c.TypeName
	if name == "" {
		name, _ = w.Dialect().FieldDBType(c.Output)
	}
	if name == "" {
		return inner, nil
	}
	return "CAST(" + inner + " AS " + name + ")", nil
}

func (Standard) operand(w Walker, e core.Expr) (string, error) {
	sql, err := w.Compile(e, Context{})
	if err != nil {
		return "", err
	}
	if needsParens(e) {
		return "(" + sql + ")", nil
	}
	return sql, nil
}
