package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pangpang20/gaussdb-django/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadTestConfig loads settings from an empty directory and the given
// environment, so commands see them through config.GetCurrentConfig.
func loadTestConfig(t *testing.T, environ ...string) *config.Config {
	t.Helper()
	t.Cleanup(config.ResetConfig)
	if environ == nil {
		environ = []string{}
	}
	cfg, err := config.Load(config.Options{Dir: t.TempDir(), Environ: environ})
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with args and returns its stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewCompileCommand(), "compile [EXPR]", []string{"file", "text", "order", "format", "database", "dialect", "ordering-coercion"}},
		{NewREPLCommand(), "repl", []string{"database", "dialect", "ordering-coercion"}},
		{NewQueryCommand(), "query", []string{"table", "where", "order", "columns", "limit", "database", "dry-run"}},
		{NewSettingsCommand(), "settings", []string{"format"}},
		{NewWorkerCommand(), "worker", []string{"apps-file", "script", "shards"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestCommandContext_Compiler(t *testing.T) {
	t.Run("engine of the database", func(t *testing.T) {
		loadTestConfig(t)
		cc, err := NewCommandContext(NewCompileCommand())
		require.NoError(t, err)

		c, err := cc.Compiler("")
		require.NoError(t, err)
		assert.Equal(t, "gaussdb", c.Dialect().Name)
	})

	t.Run("dialect setting wins", func(t *testing.T) {
		loadTestConfig(t, "GAUSSDB_COMPILER__DIALECT=postgres")
		cc, err := NewCommandContext(NewCompileCommand())
		require.NoError(t, err)

		c, err := cc.Compiler("other")
		require.NoError(t, err)
		assert.Equal(t, "postgres", c.Dialect().Name)
	})

	t.Run("engine without a dialect", func(t *testing.T) {
		loadTestConfig(t, "GAUSSQL_PROFILE=tidb")
		cc, err := NewCommandContext(NewCompileCommand())
		require.NoError(t, err)

		_, err = cc.Compiler("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no SQL dialect "tidb"`)
	})

	t.Run("unknown database", func(t *testing.T) {
		loadTestConfig(t)
		cc, err := NewCommandContext(NewCompileCommand())
		require.NoError(t, err)

		_, err = cc.Compiler("reporting")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown database")
	})
}

func TestExitCodeError(t *testing.T) {
	err := &ExitCodeError{Code: 3}
	assert.Equal(t, "exit status 3", err.Error())
}
