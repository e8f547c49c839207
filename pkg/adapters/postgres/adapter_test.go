package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pangpang20/gaussdb-django/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb user=user password=pass sslmode=disable",
		},
		{
			name: "with custom sslmode",
			config: adapter.Config{
				Host:     "prod.example.com",
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require", "application_name": "gaussql"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb user=admin application_name=gaussql sslmode=require",
		},
		{
			name:     "defaults",
			config:   adapter.Config{},
			expected: "host=localhost port=5432 sslmode=disable",
		},
		{
			name: "quoted password and schema",
			config: adapter.Config{
				Host:     "db",
				Password: `it's a secret`,
				Schema:   "app",
			},
			expected: `host=db port=5432 password='it\'s a secret' search_path=app sslmode=disable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.config, DefaultPort))
		})
	}
}

func TestDecodeJSONValue(t *testing.T) {
	tests := []struct {
		name   string
		dbType string
		in     any
		want   any
	}{
		{"jsonb bytes", "JSONB", []byte(`{"a": [1, "x"]}`), map[string]any{"a": []any{json.Number("1"), "x"}}},
		{"json string", "JSON", `"city"`, "city"},
		{"wide integer keeps precision", "JSONB", `12345678901234567890`, json.Number("12345678901234567890")},
		{"json null", "JSON", `null`, nil},
		{"already decoded", "JSONB", map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"sql null", "JSONB", nil, nil},
		{"other type", "TEXT", `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJSONValue(tt.dbType, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeJSONValue("JSONB", `{"a":`)
	require.Error(t, err)
	_, err = DecodeJSONValue("JSON", `1 2`)
	require.Error(t, err)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := New(nil)
	a.DB = sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery(`WHERE table_schema = \$1 AND table_name = \$2`).
		WithArgs("public", "app_model").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("data", "jsonb", "YES", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public\.app_model`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	meta, err := a.GetTableMetadata(context.Background(), "app_model")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.RowCount)
	assert.Equal(t, "data", meta.Columns[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistration(t *testing.T) {
	a, err := adapter.NewAdapter(adapter.Config{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", a.Dialect().Name)
	assert.True(t, a.Dialect().SupportsUnnestInsert())
}
