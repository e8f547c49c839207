package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
)

// ErrNotConnected is returned by operations on an adapter before Connect.
var ErrNotConnected = errors.New("database connection not established")

// ValueDecoder converts a scanned value given its database type name
// (e.g. "JSONB"). It returns v unchanged for types it does not handle.
type ValueDecoder func(dbType string, v any) (any, error)

// BaseSQLAdapter provides common sqlx functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and QueryMaps implementations.
type BaseSQLAdapter struct {
	DB     *sqlx.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
	Decode ValueDecoder
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}
	b.logger().Debug("exec", slog.String("sql", sqlStr), slog.Int("params", len(args)))
	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // drivers without row counts still succeeded
	}
	return n, nil
}

// Query executes a statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.Rows, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	b.logger().Debug("query", slog.String("sql", sqlStr), slog.Int("params", len(args)))
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// QueryMaps executes a statement and reads all rows. Values pass through
// the adapter's ValueDecoder when one is set.
func (b *BaseSQLAdapter) QueryMaps(ctx context.Context, sqlStr string, args ...any) (*Result, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	b.logger().Debug("query", slog.String("sql", sqlStr), slog.Int("params", len(args)))

	rows, err := b.DB.QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	dbTypes := make([]string, len(cols))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
		}
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if b.Decode != nil {
			for i, col := range cols {
				v, err := b.Decode(dbTypes[i], row[col])
				if err != nil {
					return nil, fmt.Errorf("failed to decode column %s: %w", col, err)
				}
				row[col] = v
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return res, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *dialect.Dialect) (schema, name string) {
	if s, n, ok := strings.Cut(table, "."); ok {
		return s, n
	}
	return d.DefaultSchema, table
}

type columnRow struct {
	Name     string `db:"column_name"`
	Type     string `db:"data_type"`
	Nullable string `db:"is_nullable"`
	Position int    `db:"ordinal_position"`
}

// GetTableMetadataCommon reads column metadata from information_schema.
// Concrete adapters call it with their dialect.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table string, d *dialect.Dialect) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, d)

	//nolint:gosec // placeholders come from dialect.FormatPlaceholder
	query := fmt.Sprintf(`SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	var rows []columnRow
	if err := b.DB.SelectContext(ctx, &rows, query, schema, tableName); err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	columns := make([]core.Column, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, core.Column{
			Name:     r.Name,
			Type:     r.Type,
			Nullable: r.Nullable == "YES",
			Position: r.Position,
		})
	}

	countQuery := "SELECT COUNT(*) FROM " + d.QuoteIdentifierIfNeeded(schema) + "." + d.QuoteIdentifierIfNeeded(tableName)
	var rowCount int64
	if err := b.DB.GetContext(ctx, &rowCount, countQuery); err != nil {
		b.logger().Debug("row count unavailable", slog.String("table", table), slog.String("error", err.Error()))
		rowCount = 0
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}
