// Package adapter defines the database adapter contract used to run
// compiled statements against a live database.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves by name from init().
package adapter

import (
	"context"

	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
)

// Aliases for the connection and metadata types defined in pkg/core.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Result is a fully read query result. Each row maps column name to a
// decoded value; Columns keeps the select-list order.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows. The caller closes them.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// QueryMaps executes a statement and reads every row into memory,
	// decoding JSON columns.
	QueryMaps(ctx context.Context, sql string, args ...any) (*Result, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// Dialect returns the SQL dialect statements must be compiled for.
	Dialect() *dialect.Dialect
}
