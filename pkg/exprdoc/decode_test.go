package exprdoc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/dialects/gaussdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	ID int64 `db:"id" field:"bigauto"`
}

type appModel struct {
	Base
	Name    string          `db:"name"`
	Data    json.RawMessage `db:"data"`
	Tags    []string        `db:"tags"`
	Price   decimal.Decimal `db:"price"`
	Created time.Time       `db:"created"`
	Token   *uuid.UUID      `db:"token"`
	Ignored string
}

func compileDoc(t *testing.T, d *Decoder, src string) compiler.Fragment {
	t.Helper()
	e, err := d.DecodeString(src)
	require.NoError(t, err)
	c, err := compiler.New(gaussdb.GaussDB)
	require.NoError(t, err)
	frag, err := c.Compile(e, false)
	require.NoError(t, err)
	return frag
}

func TestDecode_Compiles(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "key text",
			src:     `["key_text", "data", "address", "city"]`,
			wantSQL: "(data->'address'->>'city')::text",
		},
		{
			name:    "key text over lookup string",
			src:     `["key_text", "data__address", "city"]`,
			wantSQL: "(data->'address'->>'city')::text",
		},
		{
			name:    "bare lookup string",
			src:     `"data__items__0__name"`,
			wantSQL: "data->'items'->0->'name'",
		},
		{
			name:    "explicit index key",
			src:     `["key_numeric", "data", "items", 2]`,
			wantSQL: "(data->'items'->>2)::numeric",
		},
		{
			name:    "key present",
			src:     `["key_present", "data", "a"]`,
			wantSQL: "(data->'a') IS NOT NULL",
		},
		{
			name:       "has keys",
			src:        `["has_keys", "data", "a", "b"]`,
			wantSQL:    "data ?& ARRAY[$1, $2]",
			wantParams: []any{"a", "b"},
		},
		{
			name:       "comparison",
			src:        `["=", ["key_text", "data", "city"], ["val", "Paris"]]`,
			wantSQL:    "(data->>'city')::text = $1",
			wantParams: []any{"Paris"},
		},
		{
			name:       "and folds left",
			src:        `["and", ["isnull", "a"], ["notnull", "b"], [">", "n", 3]]`,
			wantSQL:    "((a IS NULL) AND (b IS NOT NULL)) AND (n > $1)",
			wantParams: []any{int64(3)},
		},
		{
			name:    "cast",
			src:     `["cast", "n", "varchar(10)"]`,
			wantSQL: "(n)::varchar(10)",
		},
		{
			name:       "function",
			src:        `["func", "coalesce", "a", ["val", "x"]]`,
			wantSQL:    "coalesce(a, $1)",
			wantParams: []any{"x"},
		},
		{
			name:       "raw",
			src:        `["raw", "lower(?)", "A"]`,
			wantSQL:    "lower($1)",
			wantParams: []any{"A"},
		},
		{
			name:       "yaml mapping",
			src:        "{a: 1, b: [array, true]}",
			wantSQL:    "json_build_object(($1)::text, $2::bigint, ($3)::text, json_build_array($4::boolean))",
			wantParams: []any{"a", int64(1), "b", true},
		},
	}

	d, err := NewDecoder()
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag := compileDoc(t, d, tt.src)
			assert.Equal(t, tt.wantSQL, frag.SQL)
			if tt.wantParams == nil {
				assert.Empty(t, frag.Params)
			} else {
				assert.Equal(t, tt.wantParams, frag.Params)
			}
		})
	}
}

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`["val", 42]`, int64(42)},
		{`["val", 0x10]`, int64(16)},
		{`["val", 1.25]`, decimal.RequireFromString("1.25")},
		{`["val", 123456789012345678901234567890]`, decimal.RequireFromString("123456789012345678901234567890")},
		{`["val", false]`, false},
		{`["val", null]`, nil},
		{`["val", "data__a"]`, "data__a"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Decode([]byte(tt.src))
			require.NoError(t, err)
			lit, ok := e.(*core.Literal)
			require.True(t, ok, "got %T", e)
			if want, ok := tt.want.(decimal.Decimal); ok {
				got, ok := lit.Value.(decimal.Decimal)
				require.True(t, ok, "got %T", lit.Value)
				assert.True(t, want.Equal(got), "got %s", got)
				return
			}
			assert.Equal(t, tt.want, lit.Value)
		})
	}
}

func TestDecode_Order(t *testing.T) {
	e, err := Decode([]byte(`["order", ["key_numeric", "data", "rank"], "desc", "nulls_last"]`))
	require.NoError(t, err)

	ob, ok := e.(*core.OrderBy)
	require.True(t, ok)
	assert.True(t, ob.Desc)
	assert.Equal(t, core.NullsLast, ob.Nulls)

	c, err := compiler.New(gaussdb.GaussDB)
	require.NoError(t, err)
	frag, err := c.CompileOrderBy(ob)
	require.NoError(t, err)
	assert.Equal(t, "ORDER BY (data->>'rank')::numeric DESC NULLS LAST", frag.SQL)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantPath string
	}{
		{"empty list", `[]`, "$"},
		{"unknown operator", `["frobnicate", "a"]`, "$[0]"},
		{"operator not a string", `[1, 2]`, "$[0]"},
		{"bad column", `"1abc"`, "$"},
		{"empty key segment", `"data____a"`, "$"},
		{"key arity", `["key_text", "data"]`, "$"},
		{"bad key type", `["key", "data", [1]]`, "$[2]"},
		{"nested error path", `["and", "a", ["has_key", "data"]]`, "$[2]"},
		{"odd object", `["object", "a"]`, "$"},
		{"unknown field type", `["cast_field", "a", "blob"]`, "$"},
		{"unknown order modifier", `["order", "a", "sideways"]`, "$[2]"},
		{"val of list", `["val", [1]]`, "$[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.wantPath, de.Path)
		})
	}

	_, err := Decode([]byte(`[unclosed`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse expression document")
}

func TestDecoder_WithModel(t *testing.T) {
	d, err := NewDecoder(WithModel(&appModel{}))
	require.NoError(t, err)

	t.Run("columns carry types", func(t *testing.T) {
		want := map[string]core.FieldType{
			"id":      core.FieldBigAuto,
			"name":    core.FieldText,
			"data":    core.FieldJSON,
			"tags":    core.FieldJSON,
			"price":   core.FieldDecimal,
			"created": core.FieldTimestamp,
			"token":   core.FieldUUID,
		}
		for name, ft := range want {
			e, err := d.ParseLookup(name)
			require.NoError(t, err, name)
			col := e.(*core.ColumnRef)
			require.NotNil(t, col.Field, name)
			assert.Equal(t, ft, col.Field.Type, name)
		}
	})

	t.Run("json lookup", func(t *testing.T) {
		frag := compileDoc(t, d, `["key_text", "data", "address", "city"]`)
		assert.Equal(t, "(data->'address'->>'city')::text", frag.SQL)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := d.ParseLookup("Ignored")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no column "Ignored"`)
	})

	t.Run("lookup on non-json column", func(t *testing.T) {
		_, err := d.ParseLookup("name__first")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not json")

		_, err = d.DecodeString(`["key_text", "price", "x"]`)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
	})
}

func TestWithModel_Rejects(t *testing.T) {
	type noTags struct{ A int }
	type dup struct {
		A int `db:"a"`
		B int `db:"a"`
	}
	type badField struct {
		A int `db:"a" field:"blob"`
	}

	for _, model := range []any{42, noTags{}, dup{}, badField{}} {
		_, err := NewDecoder(WithModel(model))
		require.Error(t, err, "%T", model)
	}
}

func TestOperators(t *testing.T) {
	names := Operators()
	assert.Contains(t, names, "key_text")
	assert.Contains(t, names, "has_any_keys")
	assert.IsIncreasing(t, names)
}
