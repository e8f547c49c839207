package compiler

import (
	"testing"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileKeyTests(t *testing.T) {
	data := core.Col("data")

	tests := []struct {
		name       string
		expr       core.Expr
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "has key",
			expr:       &core.HasKey{LHS: data, Key: core.Val("a")},
			wantSQL:    "data ? $1",
			wantParams: []any{"a"},
		},
		{
			name:       "has keys",
			expr:       &core.HasKeys{LHS: data, Keys: []core.Expr{core.Val("a"), core.Val("b")}},
			wantSQL:    "data ?& ARRAY[$1, $2]",
			wantParams: []any{"a", "b"},
		},
		{
			name:       "has any keys",
			expr:       &core.HasAnyKeys{LHS: data, Keys: []core.Expr{core.Val("a"), core.Val("b"), core.Val("c")}},
			wantSQL:    "data ?| ARRAY[$1, $2, $3]",
			wantParams: []any{"a", "b", "c"},
		},
		{
			name:    "column key",
			expr:    &core.HasKey{LHS: data, Key: core.Col("k")},
			wantSQL: "data ? (k)::text",
		},
		{
			name:    "function key",
			expr:    &core.HasKey{LHS: data, Key: &core.FuncCall{Name: "lower", Args: []core.Expr{core.Col("k")}}},
			wantSQL: "data ? (lower(k))::text",
		},
		{
			name:       "numeric literal key",
			expr:       &core.HasKey{LHS: data, Key: core.Val(1)},
			wantSQL:    "data ? ($1)::text",
			wantParams: []any{1},
		},
		{
			name:       "mixed keys",
			expr:       &core.HasAnyKeys{LHS: data, Keys: []core.Expr{core.Val("a"), core.Col("k")}},
			wantSQL:    "data ?| ARRAY[$1, (k)::text]",
			wantParams: []any{"a"},
		},
		{
			name: "lookup lhs stays json",
			expr: &core.HasKey{
				LHS: &core.KeyTransform{Key: core.NameKey("address"), LHS: data, Output: core.NewField(core.FieldText)},
				Key: core.Val("city"),
			},
			wantSQL:    "(data->'address') ? $1",
			wantParams: []any{"city"},
		},
		{
			name:       "object literal lhs",
			expr:       &core.HasKey{LHS: &core.JSONObject{Args: []core.Expr{core.Val("a"), core.Val(1)}}, Key: core.Val("a")},
			wantSQL:    "json_build_object(($1)::text, $2::bigint) ? $3",
			wantParams: []any{"a", 1, "a"},
		},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := c.Compile(tt.expr, false)
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

func TestCompileKeyTests_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		kind string
		expr core.Expr
	}{
		{"missing key", "has key", &core.HasKey{LHS: core.Col("data")}},
		{"empty all-of", "has keys", &core.HasKeys{LHS: core.Col("data")}},
		{"empty any-of", "has any keys", &core.HasAnyKeys{LHS: core.Col("data"), Keys: []core.Expr{}}},
		{"nil key in list", "has keys", &core.HasKeys{LHS: core.Col("data"), Keys: []core.Expr{nil}}},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.expr, false)
			var shape *ShapeError
			require.ErrorAs(t, err, &shape)
			assert.Equal(t, tt.kind, shape.Kind)
		})
	}
}
