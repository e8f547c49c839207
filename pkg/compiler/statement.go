package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

// CompileSelect compiles a single-table SELECT. Every clause shares one
// parameter list, so placeholders number across the whole statement.
func (c *Compiler) CompileSelect(s *core.Select) (Fragment, error) {
	if s == nil || s.Table == "" {
		return Fragment{}, &ShapeError{Kind: "select", Reason: "missing table"}
	}
	p := c.newPass()

	cols := "*"
	if len(s.Columns) > 0 {
		parts := make([]string, 0, len(s.Columns))
		for _, col := range s.Columns {
			sql, err := p.Compile(col, Context{})
			if err != nil {
				return Fragment{}, fmt.Errorf("failed to compile select column: %w", err)
			}
			parts = append(parts, sql)
		}
		cols = strings.Join(parts, ", ")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(c.tableName(s.Table))

	if s.Where != nil {
		where, err := p.Compile(s.Where, Context{})
		if err != nil {
			return Fragment{}, fmt.Errorf("failed to compile where clause: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	order, err := p.orderByClause(s.OrderBy)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to compile order by: %w", err)
	}
	if order != "" {
		b.WriteString(" ")
		b.WriteString(order)
	}

	if s.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.Limit))
	}
	return p.fragment(b.String()), nil
}

// CompileInsert compiles a multi-row INSERT. Dialects that support it get a
// single UNNEST over one typed array per column when every value is a
// literal; otherwise rows are written as a VALUES list.
func (c *Compiler) CompileInsert(ins *core.Insert) (Fragment, error) {
	if ins == nil || ins.Table == "" {
		return Fragment{}, &ShapeError{Kind: "insert", Reason: "missing table"}
	}
	if len(ins.Fields) == 0 {
		return Fragment{}, &ShapeError{Kind: ins.Kind(), Reason: "no target columns"}
	}
	if len(ins.Rows) == 0 {
		return Fragment{}, &ShapeError{Kind: ins.Kind(), Reason: "no rows"}
	}
	for i, row := range ins.Rows {
		if len(row) != len(ins.Fields) {
			return Fragment{}, &ShapeError{
				Kind:   ins.Kind(),
				Reason: fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(ins.Fields)),
			}
		}
	}
	if len(ins.Returning) > 0 && !c.dialect.SupportsReturning() {
		return Fragment{}, fmt.Errorf("dialect %s does not support RETURNING", c.dialect.Name)
	}

	cols := make([]string, 0, len(ins.Fields))
	for _, f := range ins.Fields {
		if f == nil || f.Name == "" {
			return Fragment{}, &ShapeError{Kind: ins.Kind(), Reason: "target column without a name"}
		}
		cols = append(cols, c.dialect.QuoteIdentifierIfNeeded(f.Name))
	}

	p := c.newPass()
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(c.tableName(ins.Table))
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") ")

	if types, ok := c.unnestTypes(ins); ok {
		arrays := make([]string, len(ins.Fields))
		for col := range ins.Fields {
			values := make([]any, len(ins.Rows))
			for r, row := range ins.Rows {
				values[r] = row[col].(*core.Literal).Value
			}
			arrays[col] = p.Bind(values) + "::" + types[col] + "[]"
		}
		b.WriteString("SELECT * FROM UNNEST(")
		b.WriteString(strings.Join(arrays, ", "))
		b.WriteString(")")
	} else {
		rows := make([]string, 0, len(ins.Rows))
		for _, row := range ins.Rows {
			vals := make([]string, 0, len(row))
			for _, v := range row {
				sql, err := p.Compile(v, Context{})
				if err != nil {
					return Fragment{}, fmt.Errorf("failed to compile insert value: %w", err)
				}
				vals = append(vals, sql)
			}
			rows = append(rows, "("+strings.Join(vals, ", ")+")")
		}
		b.WriteString("VALUES ")
		b.WriteString(strings.Join(rows, ", "))
	}

	if len(ins.Returning) > 0 {
		ret := make([]string, 0, len(ins.Returning))
		for _, r := range ins.Returning {
			ret = append(ret, c.dialect.QuoteIdentifierIfNeeded(r))
		}
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(ret, ", "))
	}
	return p.fragment(b.String()), nil
}

// unnestTypes returns the array element type of each column when the
// UNNEST strategy applies.
func (c *Compiler) unnestTypes(ins *core.Insert) ([]string, bool) {
	if !c.dialect.SupportsUnnestInsert() || len(ins.Rows) < 2 {
		return nil, false
	}
	for _, row := range ins.Rows {
		for _, v := range row {
			if _, ok := v.(*core.Literal); !ok {
				return nil, false
			}
		}
	}
	types := make([]string, len(ins.Fields))
	for i, f := range ins.Fields {
		t, ok := c.dialect.FieldDBType(f)
		if !ok {
			return nil, false
		}
		types[i] = c.dialect.RemapCastType(t)
	}
	return types, true
}

// tableName quotes each part of a possibly schema-qualified table name.
func (c *Compiler) tableName(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = c.dialect.QuoteIdentifierIfNeeded(part)
	}
	return strings.Join(parts, ".")
}
