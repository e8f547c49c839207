// Package compiler translates expression trees into SQL text and an ordered
// parameter list for a dialect.
//
// The compiler rewrites the JSON, cast, key-test and ordering node kinds
// itself and hands every other node kind to a Delegate (Standard by
// default). A Compiler is immutable after New and safe for concurrent use;
// each call owns its own parameter list.
package compiler

import (
	"log/slog"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
)

// Fragment is compiled SQL with its positional parameters in placeholder order.
type Fragment struct {
	SQL    string
	Params []any
}

// Compiler compiles expressions for a single dialect.
type Compiler struct {
	dialect  *dialect.Dialect
	logger   *slog.Logger
	coercion OrderingCoercion
	delegate Delegate
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOrderingCoercion sets the ordering coercion policy.
func WithOrderingCoercion(policy OrderingCoercion) Option {
	return func(c *Compiler) {
		c.coercion = policy
	}
}

// WithDelegate replaces the default compiler for non-special node kinds.
func WithDelegate(d Delegate) Option {
	return func(c *Compiler) {
		if d != nil {
			c.delegate = d
		}
	}
}

// New creates a compiler for d.
func New(d *dialect.Dialect, opts ...Option) (*Compiler, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	c := &Compiler{
		dialect:  d,
		logger:   slog.New(slog.DiscardHandler),
		coercion: NumericFirst,
		delegate: Standard{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() *dialect.Dialect {
	return c.dialect
}

// OrderingCoercion returns the configured ordering coercion policy.
func (c *Compiler) OrderingCoercion() OrderingCoercion {
	return c.coercion
}

// Compile compiles e. forceText requests a text-typed result.
func (c *Compiler) Compile(e core.Expr, forceText bool) (Fragment, error) {
	return c.CompileContext(e, Context{ForceText: forceText})
}

// CompileContext compiles e with an explicit context.
func (c *Compiler) CompileContext(e core.Expr, ctx Context) (Fragment, error) {
	p := c.newPass()
	sql, err := p.Compile(e, ctx)
	if err != nil {
		return Fragment{}, err
	}
	return p.fragment(sql), nil
}

// pass is the state of one compilation: the parameters bound so far.
type pass struct {
	c      *Compiler
	params []any
}

func (c *Compiler) newPass() *pass {
	return &pass{c: c}
}

func (p *pass) fragment(sql string) Fragment {
	return Fragment{SQL: sql, Params: p.params}
}

// Dialect implements Walker.
func (p *pass) Dialect() *dialect.Dialect {
	return p.c.dialect
}

// Bind implements Walker.
func (p *pass) Bind(v any) string {
	p.params = append(p.params, v)
	return p.c.dialect.FormatPlaceholder(len(p.params))
}

// mark and rollback bracket an attempt whose bound parameters may need to
// be discarded.
func (p *pass) mark() int { return len(p.params) }

func (p *pass) rollback(mark int) {
	clear(p.params[mark:])
	p.params = p.params[:mark]
}

// Compile implements Walker.
func (p *pass) Compile(e core.Expr, ctx Context) (string, error) {
	if e == nil {
		return "", &ShapeError{Kind: "expression", Reason: "missing operand"}
	}

	switch expr := e.(type) {
	case *core.JSONArray:
		return p.compileJSONArray(expr)
	case *core.JSONObject:
		return p.compileJSONObject(expr)
	case *core.KeyTransform:
		return p.compileKeyTransform(expr, ctx)
	case *core.Cast:
		return p.compileCast(expr, ctx)
	case *core.HasKey:
		return p.compileHasKey(expr)
	case *core.HasKeys:
		return p.compileKeyArray(expr, expr.LHS, expr.Keys, "?&")
	case *core.HasAnyKeys:
		return p.compileKeyArray(expr, expr.LHS, expr.Keys, "?|")
	case *core.OrderBy:
		return p.compileOrderBy(expr, ctx)
	default:
		return p.c.delegate.CompileNode(p, e, ctx)
	}
}

func needsParens(e core.Expr) bool {
	switch expr := e.(type) {
	case *core.ColumnRef, *core.Literal, *core.FuncCall,
		*core.JSONArray, *core.JSONObject, *core.Cast:
		return false
	case *core.KeyTransform:
		return isBoolean(expr)
	default:
		return true
	}
}
