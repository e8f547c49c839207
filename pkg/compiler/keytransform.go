package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/core"
)

type coercion int

const (
	coerceNone coercion = iota
	coerceText
	coerceNumeric
)

func (p *pass) compileKeyTransform(kt *core.KeyTransform, ctx Context) (string, error) {
	base, keys, err := keyPath(kt)
	if err != nil {
		return "", err
	}

	baseSQL, err := p.Compile(base, Context{})
	if err != nil {
		return "", err
	}
	if needsParens(base) {
		baseSQL = "(" + baseSQL + ")"
	}

	d := p.c.dialect
	mode := p.coercionFor(kt, ctx)

	var b strings.Builder
	b.WriteString(baseSQL)
	for i, k := range keys {
		if i == len(keys)-1 && mode != coerceNone {
			b.WriteString("->>")
		} else {
			b.WriteString("->")
		}
		if k.IsIndex {
			b.WriteString(strconv.Itoa(k.Index))
		} else {
			b.WriteString(d.QuoteLiteral(k.Name))
		}
	}
	sql := b.String()

	switch mode {
	case coerceText:
		return "(" + sql + ")::" + d.TextCastType(), nil
	case coerceNumeric:
		return "(" + sql + ")::" + d.NumericCastType(), nil
	}

	if isBoolean(kt) && !ctx.rawJSON {
		if kt.Negated {
			return "(" + sql + ") IS NULL", nil
		}
		return "(" + sql + ") IS NOT NULL", nil
	}
	return sql, nil
}

// keyPath walks a lookup chain from the outermost step inward and returns
// the base expression and the keys in access order (base-nearest first).
func keyPath(kt *core.KeyTransform) (core.Expr, []*core.Key, error) {
	var keys []*core.Key
	node := kt
	for {
		if node.LHS == nil {
			return nil, nil, &ShapeError{Kind: node.Kind(), Reason: "missing left-hand side"}
		}

		switch lhs := node.LHS.(type) {
		case *core.JSONObject:
			if node.Key == nil {
				k, err := objectKey(lhs)
				if err != nil {
					return nil, nil, err
				}
				keys = append(keys, k)
			} else {
				keys = append(keys, node.Key)
			}
			slices.Reverse(keys)
			return lhs, keys, nil

		case *core.KeyTransform:
			if node.Key != nil {
				keys = append(keys, node.Key)
			}
			node = lhs

		default:
			// A keyless step over a plain base names the base itself.
			if node.Key != nil {
				keys = append(keys, node.Key)
			}
			slices.Reverse(keys)
			return lhs, keys, nil
		}
	}
}

func isBoolean(kt *core.KeyTransform) bool {
	return kt.Truthy || kt.Negated
}

// objectKey derives a lookup key from a JSON object literal's first argument.
func objectKey(o *core.JSONObject) (*core.Key, error) {
	if len(o.Args) == 0 {
		return nil, &ShapeError{Kind: o.Kind(), Reason: "no key to look up in an empty object"}
	}
	lit, ok := o.Args[0].(*core.Literal)
	if !ok {
		return nil, &ShapeError{Kind: o.Kind(), Reason: "first key must be a string literal, got " + o.Args[0].Kind()}
	}
	name, ok := lit.StringValue()
	if !ok {
		return nil, &ShapeError{Kind: o.Kind(), Reason: "first key must be a string literal"}
	}
	return core.NameKey(name), nil
}

// coercionFor decides how the final lookup step is typed. An explicit text
// request always wins; the ordering policy settles ordering against a
// numeric declared output.
func (p *pass) coercionFor(kt *core.KeyTransform, ctx Context) coercion {
	if ctx.rawJSON || isBoolean(kt) {
		return coerceNone
	}
	if ctx.ForceText {
		return coerceText
	}

	numeric := kt.Output.IsNumeric()
	switch p.c.coercion {
	case OrderingText:
		if ctx.Ordering {
			return coerceText
		}
		if numeric {
			return coerceNumeric
		}
	default: // NumericFirst
		if numeric {
			return coerceNumeric
		}
		if ctx.Ordering {
			return coerceText
		}
	}

	if kt.Output.IsText() {
		return coerceText
	}
	return coerceNone
}
