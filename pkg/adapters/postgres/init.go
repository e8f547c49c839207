package postgres

import (
	"log/slog"

	"github.com/pangpang20/gaussdb-django/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
