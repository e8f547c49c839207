package commands

import (
	"bytes"
	"testing"

	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/dialects/gaussdb"
	"github.com/pangpang20/gaussdb-django/pkg/exprdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	comp, err := compiler.New(gaussdb.GaussDB)
	require.NoError(t, err)
	dec, err := exprdoc.NewDecoder()
	require.NoError(t, err)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	return &replSession{comp: comp, dec: dec, out: out, errOut: errOut}, out, errOut
}

func TestREPLSession_Compiles(t *testing.T) {
	s, out, errOut := newTestSession(t)

	assert.False(t, s.feed(`["key_text", "data", "city"]`))
	assert.Equal(t, "(data->>'city')::text\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestREPLSession_MultiLine(t *testing.T) {
	s, out, _ := newTestSession(t)

	s.feed(`["has_any_keys",`)
	assert.Empty(t, out.String())
	assert.Positive(t, s.buf.Len())

	s.feed(`  "data", "a", "b"]`)
	assert.Zero(t, s.buf.Len())
	assert.Contains(t, out.String(), "data ?| ARRAY[$1, $2]")
}

func TestREPLSession_DotCommands(t *testing.T) {
	s, out, errOut := newTestSession(t)

	s.feed(".text")
	s.feed(`"data__a"`)
	assert.Contains(t, out.String(), "(data->>'a')::text")

	out.Reset()
	s.feed(".text")
	s.feed(".order")
	s.feed(`["key_numeric", "data", "rank"]`)
	assert.Contains(t, out.String(), "ORDER BY (data->>'rank')::numeric ASC")

	out.Reset()
	s.feed(".ops")
	assert.Contains(t, out.String(), "has_any_keys")

	s.feed(".json")
	assert.Equal(t, formatJSON, s.format)

	s.feed(".bogus")
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")

	assert.True(t, s.feed(".quit"))
}

func TestREPLSession_ReportsErrors(t *testing.T) {
	s, _, errOut := newTestSession(t)

	assert.False(t, s.feed(`["key_text"]`))
	assert.Contains(t, errOut.String(), "Error:")
	assert.Zero(t, s.buf.Len())
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`"data__a"`, true},
		{`["a", ["b"]]`, true},
		{`["a", ["b"]`, false},
		{`{"k": "]"}`, true},
		{`["a\"]"`, false},
		{`- key_text`, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, balanced(tt.src))
		})
	}
}
