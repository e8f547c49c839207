// Package gaussdb provides the GaussDB (openGauss) database adapter. GaussDB
// speaks the PostgreSQL wire protocol, so the adapter reuses the pgx-based
// PostgreSQL adapter with GaussDB's default port and dialect.
package gaussdb

import (
	"log/slog"

	"github.com/pangpang20/gaussdb-django/pkg/adapter"
	"github.com/pangpang20/gaussdb-django/pkg/adapters/postgres"
	gaussdialect "github.com/pangpang20/gaussdb-django/pkg/dialects/gaussdb"
)

// DefaultPort is the GaussDB listener port used when none is configured.
const DefaultPort = 8000

// Adapter implements adapter.Adapter for GaussDB.
type Adapter struct {
	*postgres.Adapter
}

// New creates a new GaussDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{Adapter: postgres.NewFor("gaussdb", DefaultPort, gaussdialect.GaussDB, logger)}
}

func init() {
	adapter.Register("gaussdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

var _ adapter.Adapter = (*Adapter)(nil)
