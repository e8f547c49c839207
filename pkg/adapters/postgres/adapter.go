// Package postgres provides a database adapter for PostgreSQL and servers
// speaking its wire protocol, built on pgx's database/sql driver.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/pangpang20/gaussdb-django/pkg/adapter"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
	pgdialect "github.com/pangpang20/gaussdb-django/pkg/dialects/postgres"
)

// DefaultPort is the PostgreSQL server port used when none is configured.
const DefaultPort = 5432

// Adapter implements the adapter.Adapter interface over pgx.
type Adapter struct {
	adapter.BaseSQLAdapter

	name        string
	defaultPort int
	dialect     *dialect.Dialect
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return NewFor("postgres", DefaultPort, pgdialect.Postgres, logger)
}

// NewFor creates an adapter for a PostgreSQL-compatible server with its own
// name, default port and dialect.
func NewFor(name string, defaultPort int, d *dialect.Dialect, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger: logger.With(slog.String("adapter", name)),
			Decode: DecodeJSONValue,
		},
		name:        name,
		defaultPort: defaultPort,
		dialect:     d,
	}
}

// Name returns the registry name of the adapter.
func (a *Adapter) Name() string { return a.name }

// Dialect returns the SQL dialect for this adapter.
func (a *Adapter) Dialect() *dialect.Dialect { return a.dialect }

// Connect opens the connection pool and pings the server.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := BuildDSN(cfg, a.defaultPort)

	a.Logger.Debug("connecting", slog.String("host", cfg.Host), slog.Int("port", cfg.Port), slog.String("database", cfg.Database))

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", a.name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", a.name, err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.dialect)
}

// BuildDSN constructs a libpq key=value connection string. Options are
// appended as extra keys; sslmode defaults to disable.
func BuildDSN(cfg adapter.Config, defaultPort int) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	opts := map[string]string{"sslmode": "disable"}
	for k, v := range cfg.Options {
		opts[k] = v
	}

	parts := []string{
		"host=" + dsnValue(host),
		"port=" + strconv.Itoa(port),
	}
	if cfg.Database != "" {
		parts = append(parts, "dbname="+dsnValue(cfg.Database))
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+dsnValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+dsnValue(cfg.Password))
	}
	if cfg.Schema != "" {
		if _, ok := opts["search_path"]; !ok {
			opts["search_path"] = cfg.Schema
		}
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+dsnValue(opts[k]))
	}
	return strings.Join(parts, " ")
}

// dsnValue quotes a connection string value when it is empty or contains
// spaces, quotes or backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

var _ adapter.Adapter = (*Adapter)(nil)
