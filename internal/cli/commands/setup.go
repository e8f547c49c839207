package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pangpang20/gaussdb-django/internal/cli/config"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
	"github.com/spf13/cobra"

	// Dialects and adapters register themselves on import.
	_ "github.com/pangpang20/gaussdb-django/pkg/adapters/gaussdb"
	_ "github.com/pangpang20/gaussdb-django/pkg/adapters/postgres"
	_ "github.com/pangpang20/gaussdb-django/pkg/dialects/gaussdb"
	_ "github.com/pangpang20/gaussdb-django/pkg/dialects/postgres"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

// NewCommandContext collects the loaded settings and logger for cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}, nil
}

// getConfig returns the settings loaded by the root command, loading them
// from the command's flags when the command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.Load(config.Options{Flags: cmd.Flags()})
}

// DialectName returns the dialect to compile for: the compiler.dialect
// setting, else the engine of the named database.
func (c *CommandContext) DialectName(alias string) (string, error) {
	if c.Cfg.Compiler.Dialect != "" {
		return c.Cfg.Compiler.Dialect, nil
	}
	db, err := c.Cfg.Database(alias)
	if err != nil {
		return "", err
	}
	return db.Engine, nil
}

// Compiler builds a compiler for the named database's dialect.
func (c *CommandContext) Compiler(alias string) (*compiler.Compiler, error) {
	name, err := c.DialectName(alias)
	if err != nil {
		return nil, err
	}
	d, ok := dialect.Get(name)
	if !ok {
		return nil, fmt.Errorf("no SQL dialect %q (available: %s)", name, strings.Join(dialect.List(), ", "))
	}
	policy, err := c.Cfg.OrderingCoercion()
	if err != nil {
		return nil, err
	}
	return compiler.New(d,
		compiler.WithLogger(c.Logger),
		compiler.WithOrderingCoercion(policy),
	)
}

// ExitCodeError carries a non-zero process exit code without an error
// message, e.g. the test suite's own exit status.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
