package compiler

import (
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

func (p *pass) compileOrderBy(o *core.OrderBy, ctx Context) (string, error) {
	sql, err := p.Compile(o.Expr, Context{Ordering: true, ForceText: ctx.ForceText})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(sql)
	if o.Desc {
		b.WriteString(" DESC")
	} else {
		b.WriteString(" ASC")
	}
	switch o.Nulls {
	case core.NullsFirst:
		b.WriteString(" NULLS FIRST")
	case core.NullsLast:
		b.WriteString(" NULLS LAST")
	}
	return b.String(), nil
}

// CompileOrderBy compiles an ORDER BY clause. No items yield an empty fragment.
func (c *Compiler) CompileOrderBy(items ...*core.OrderBy) (Fragment, error) {
	p := c.newPass()
	sql, err := p.orderByClause(items)
	if err != nil {
		return Fragment{}, err
	}
	return p.fragment(sql), nil
}

func (p *pass) orderByClause(items []*core.OrderBy) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			return "", &ShapeError{Kind: "order by", Reason: "nil ordering term"}
		}
		sql, err := p.Compile(item, Context{})
		if err != nil {
			return "", err
		}
		terms = append(terms, sql)
	}
	return "ORDER BY " + strings.Join(terms, ", "), nil
}
