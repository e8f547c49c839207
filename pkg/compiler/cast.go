package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

func (p *pass) compileCast(c *core.Cast, ctx Context) (string, error) {
	mark := p.mark()
	sql, err := p.castSQL(c)
	if err == nil {
		return sql, nil
	}
	if !errors.Is(err, ErrNoTypeDescriptor) && !errors.Is(err, ErrUnknownType) {
		return "", err
	}

	p.rollback(mark)
	p.c.logger.Debug("cast falls back to default compilation",
		slog.String("dialect", p.c.dialect.Name),
		slog.String("reason", err.Error()))
	return p.c.delegate.CompileNode(p, c, ctx)
}

func (p *pass) castSQL(c *core.Cast) (string, error) {
	inner, err := p.Compile(c.Expr, Context{})
	if err != nil {
		return "", err
	}
	typeName, err := p.castType(c)
	if err != nil {
		return "", err
	}
	return "(" + inner + ")::" + typeName, nil
}

// castType resolves the cast target to a registered type name and rewrites
// serial pseudo-types to their plain integer types.
func (p *pass) castType(c *core.Cast) (string, error) {
	d := p.c.dialect
	name := c.TypeName
	if name == "" {
		if c.Output == nil {
			return "", ErrNoTypeDescriptor
		}
		var ok bool
		name, ok = d.FieldDBType(c.Output)
		if !ok {
			return "", fmt.Errorf("%w: field type %s", ErrNoTypeDescriptor, c.Output.Type)
		}
	}
	if !d.HasDataType(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return d.RemapCastType(name), nil
}
