package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileKeyTransform(t *testing.T) {
	data := core.Col("data")

	tests := []struct {
		name       string
		expr       core.Expr
		forceText  bool
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "single key uncoerced",
			expr:    core.Lookup(data, core.NameKey("a")),
			wantSQL: "data->'a'",
		},
		{
			name:    "chain uncoerced",
			expr:    core.Lookup(data, core.NameKey("address"), core.NameKey("city")),
			wantSQL: "data->'address'->'city'",
		},
		{
			name:    "text output",
			expr:    cityLookup(),
			wantSQL: "(data->'address'->>'city')::text",
		},
		{
			name: "numeric output",
			expr: &core.KeyTransform{
				Key: core.NameKey("n"), LHS: core.Lookup(data, core.NameKey("a")),
				Output: core.NewField(core.FieldDecimal),
			},
			wantSQL: "(data->'a'->>'n')::numeric",
		},
		{
			name: "force text beats numeric",
			expr: &core.KeyTransform{
				Key: core.NameKey("n"), LHS: data, Output: core.NewField(core.FieldInteger),
			},
			forceText: true,
			wantSQL:   "(data->>'n')::text",
		},
		{
			name:      "force text without output",
			expr:      core.Lookup(data, core.NameKey("a")),
			forceText: true,
			wantSQL:   "(data->>'a')::text",
		},
		{
			name:    "index keys",
			expr:    core.Lookup(data, core.NameKey("items"), core.IndexKey(0), core.NameKey("name")),
			wantSQL: "data->'items'->0->'name'",
		},
		{
			name:    "quoted key",
			expr:    core.Lookup(data, core.NameKey("o'brien")),
			wantSQL: "data->'o''brien'",
		},
		{
			name:    "qualified column",
			expr:    core.Lookup(&core.ColumnRef{Table: "app_model", Column: "data"}, core.NameKey("a")),
			wantSQL: "app_model.data->'a'",
		},
		{
			name:    "reserved column",
			expr:    core.Lookup(core.Col("user"), core.NameKey("a")),
			wantSQL: `"user"->'a'`,
		},
		{
			name:    "truthy",
			expr:    &core.KeyTransform{Key: core.NameKey("a"), LHS: data, Truthy: true},
			wantSQL: "(data->'a') IS NOT NULL",
		},
		{
			name:    "truthy negated",
			expr:    &core.KeyTransform{Key: core.NameKey("a"), LHS: data, Truthy: true, Negated: true},
			wantSQL: "(data->'a') IS NULL",
		},
		{
			name:    "negated implies truthy",
			expr:    &core.KeyTransform{Key: core.NameKey("a"), LHS: data, Negated: true},
			wantSQL: "(data->'a') IS NULL",
		},
		{
			name:    "keyless over column",
			expr:    &core.KeyTransform{LHS: data},
			wantSQL: "data",
		},
		{
			name:      "keyless over column as text",
			expr:      &core.KeyTransform{LHS: data},
			forceText: true,
			wantSQL:   "(data)::text",
		},
		{
			name:    "keyless step over keyless column",
			expr:    &core.KeyTransform{Key: core.NameKey("a"), LHS: &core.KeyTransform{LHS: data}},
			wantSQL: "data->'a'",
		},
		{
			name: "truthy ignores output",
			expr: &core.KeyTransform{
				Key: core.NameKey("a"), LHS: data, Truthy: true, Output: core.NewField(core.FieldText),
			},
			forceText: true,
			wantSQL:   "(data->'a') IS NOT NULL",
		},
		{
			name: "key from object literal",
			expr: &core.KeyTransform{LHS: &core.JSONObject{Args: []core.Expr{core.Val("a"), core.Val(1)}}},
			wantSQL:    "json_build_object(($1)::text, $2::bigint)->'a'",
			wantParams: []any{"a", 1},
		},
		{
			name: "object literal base with own key",
			expr: &core.KeyTransform{
				Key: core.NameKey("b"),
				LHS: &core.JSONObject{Args: []core.Expr{core.Val("b"), core.Col("x")}},
			},
			wantSQL:    "json_build_object(($1)::text, x)->'b'",
			wantParams: []any{"b"},
		},
		{
			name: "keyless step over lookup",
			expr: &core.KeyTransform{
				LHS:    core.Lookup(data, core.NameKey("a")),
				Output: core.NewField(core.FieldText),
			},
			wantSQL: "(data->>'a')::text",
		},
		{
			name: "cast base",
			expr: core.Lookup(&core.Cast{Expr: core.Col("payload"), TypeName: "jsonb"}, core.NameKey("a")),
			wantSQL: "(payload)::jsonb->'a'",
		},
		{
			name: "binary base is parenthesized",
			expr: core.Lookup(&core.BinaryExpr{Left: core.Col("a"), Op: "||", Right: core.Col("b")}, core.NameKey("k")),
			wantSQL: "(a || b)->'k'",
		},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := c.Compile(tt.expr, tt.forceText)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, frag.SQL)
			if tt.wantParams == nil {
				assert.Empty(t, frag.Params)
			} else {
				assert.Equal(t, tt.wantParams, frag.Params)
			}
		})
	}
}

func TestCompileKeyTransform_Depth(t *testing.T) {
	c := newTestCompiler(t)

	for depth := 1; depth <= 6; depth++ {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			keys := make([]*core.Key, depth)
			want := make([]string, depth)
			for i := range keys {
				keys[i] = core.NameKey(fmt.Sprintf("k%d", i+1))
				want[i] = fmt.Sprintf("'k%d'", i+1)
			}

			frag, err := c.Compile(core.Lookup(core.Col("data"), keys...), false)
			require.NoError(t, err)
			assert.Equal(t, "data->"+strings.Join(want, "->"), frag.SQL)

			frag, err = c.Compile(core.Lookup(core.Col("data"), keys...), true)
			require.NoError(t, err)
			last := len(want) - 1
			prefix := "data"
			for _, k := range want[:last] {
				prefix += "->" + k
			}
			assert.Equal(t, "("+prefix+"->>"+want[last]+")::text", frag.SQL)
		})
	}
}

func TestCompileKeyTransform_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		expr core.Expr
	}{
		{"missing lhs", &core.KeyTransform{Key: core.NameKey("a")}},
		{"keyless over empty object", &core.KeyTransform{LHS: &core.JSONObject{}}},
		{"keyless over non literal key", &core.KeyTransform{LHS: &core.JSONObject{Args: []core.Expr{core.Col("k"), core.Col("v")}}}},
		{"keyless over numeric key", &core.KeyTransform{LHS: &core.JSONObject{Args: []core.Expr{core.Val(1), core.Col("v")}}}},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.expr, false)
			require.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestOrderingCoercion(t *testing.T) {
	lookup := func(out *core.Field) *core.KeyTransform {
		return &core.KeyTransform{Key: core.NameKey("a"), LHS: core.Col("data"), Output: out}
	}
	numeric := core.NewField(core.FieldInteger)
	text := core.NewField(core.FieldText)

	tests := []struct {
		name     string
		policy   OrderingCoercion
		output   *core.Field
		ordering bool
		want     string
	}{
		{"numeric first: json", NumericFirst, nil, false, "data->'a'"},
		{"numeric first: json ordered", NumericFirst, nil, true, "(data->>'a')::text"},
		{"numeric first: text", NumericFirst, text, false, "(data->>'a')::text"},
		{"numeric first: text ordered", NumericFirst, text, true, "(data->>'a')::text"},
		{"numeric first: numeric", NumericFirst, numeric, false, "(data->>'a')::numeric"},
		{"numeric first: numeric ordered", NumericFirst, numeric, true, "(data->>'a')::numeric"},
		{"ordering text: json ordered", OrderingText, nil, true, "(data->>'a')::text"},
		{"ordering text: numeric", OrderingText, numeric, false, "(data->>'a')::numeric"},
		{"ordering text: numeric ordered", OrderingText, numeric, true, "(data->>'a')::text"},
		{"ordering text: text", OrderingText, text, false, "(data->>'a')::text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(t, WithOrderingCoercion(tt.policy))

			frag, err := c.CompileContext(lookup(tt.output), Context{Ordering: tt.ordering})
			require.NoError(t, err)
			assert.Equal(t, tt.want, frag.SQL)

			if tt.ordering {
				// Same result through an ORDER BY term.
				frag, err = c.Compile(core.Asc(lookup(tt.output)), false)
				require.NoError(t, err)
				assert.Equal(t, tt.want+" ASC", frag.SQL)
			}
		})
	}
}

func TestOrderingContextDoesNotLeak(t *testing.T) {
	c := newTestCompiler(t)
	lookup := core.Lookup(core.Col("data"), core.NameKey("a"))

	frag, err := c.Compile(core.Desc(lookup), false)
	require.NoError(t, err)
	assert.Equal(t, "(data->>'a')::text DESC", frag.SQL)

	frag, err = c.Compile(lookup, false)
	require.NoError(t, err)
	assert.Equal(t, "data->'a'", frag.SQL)

	// A lookup nested inside an ordered expression is not itself ordered.
	frag, err = c.Compile(core.Asc(&core.FuncCall{Name: "lower", Args: []core.Expr{lookup}}), false)
	require.NoError(t, err)
	assert.Equal(t, "lower(data->'a') ASC", frag.SQL)
}
