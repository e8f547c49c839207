package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pangpang20/gaussdb-django/pkg/adapter"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/exprdoc"
	"github.com/spf13/cobra"
)

// openAdapter connects to a database. Replaced in tests.
var openAdapter = adapter.Open

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Table    string
	Where    string
	Order    []string
	Columns  []string
	Limit    int
	Database string
	DryRun   bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compile a SELECT and run it against a configured database",
		Long: `Build a single-table SELECT from expression documents, compile it for
the database's dialect and run it. Columns may be plain names or "__" lookups
into JSON columns.`,
		Example: `  # Rows whose JSON city is Paris, newest rank first
  gaussql query --table app_model \
    --where '["=", ["key_text", "data", "address", "city"], ["val", "Paris"]]' \
    --order '["order", ["key_numeric", "data", "rank"], "desc"]'

  # Only print the compiled statement
  gaussql query --table app_model --columns id,data__name --dry-run

  # Query the second database as CSV
  gaussql query --table app_model --database other -o csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Table to select from")
	cmd.Flags().StringVar(&opts.Where, "where", "", "Filter expression document")
	cmd.Flags().StringArrayVar(&opts.Order, "order", nil, "Ordering expression document (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns or lookups to select (default *)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum rows (0 for no limit)")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database alias from settings (default \"default\")")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the compiled SQL without running it")
	cmd.Flags().String("ordering-coercion", "", "Ordering policy: numeric_first, ordering_text")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	comp, err := cc.Compiler(opts.Database)
	if err != nil {
		return err
	}
	dec, err := exprdoc.NewDecoder()
	if err != nil {
		return err
	}
	sel, err := buildSelect(dec, opts)
	if err != nil {
		return err
	}
	frag, err := comp.CompileSelect(sel)
	if err != nil {
		return err
	}

	format := resolveFormat(cc.Cfg.Output, cc.Out)
	if opts.DryRun {
		if format != formatJSON {
			format = formatTable
		}
		return renderFragment(cc.Out, frag, format)
	}

	acfg, err := cc.Cfg.AdapterConfig(opts.Database)
	if err != nil {
		return err
	}
	res, err := executeQuery(cmd.Context(), acfg, frag, cc.Logger)
	if err != nil {
		return err
	}
	return renderResult(cc.Out, res, format)
}

func executeQuery(ctx context.Context, acfg adapter.Config, frag compiler.Fragment, logger *slog.Logger) (*adapter.Result, error) {
	a, err := openAdapter(ctx, acfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	logger.Debug("running query", slog.String("sql", frag.SQL), slog.Int("params", len(frag.Params)))
	res, err := a.QueryMaps(ctx, frag.SQL, frag.Params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return res, nil
}

// buildSelect decodes the query options into a SELECT statement.
func buildSelect(dec *exprdoc.Decoder, opts *QueryOptions) (*core.Select, error) {
	if opts.Table == "" {
		return nil, fmt.Errorf("--table is required")
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("--limit must not be negative")
	}
	sel := &core.Select{Table: opts.Table, Limit: opts.Limit}

	for _, col := range opts.Columns {
		e, err := dec.ParseLookup(col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		sel.Columns = append(sel.Columns, e)
	}

	if opts.Where != "" {
		e, err := dec.DecodeString(opts.Where)
		if err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
		sel.Where = e
	}

	for i, src := range opts.Order {
		e, err := dec.DecodeString(src)
		if err != nil {
			return nil, fmt.Errorf("--order %d: %w", i+1, err)
		}
		ob, ok := e.(*core.OrderBy)
		if !ok {
			ob = core.Asc(e)
		}
		sel.OrderBy = append(sel.OrderBy, ob)
	}
	return sel, nil
}
