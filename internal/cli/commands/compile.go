package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/core"
	"github.com/pangpang20/gaussdb-django/pkg/exprdoc"
	"github.com/spf13/cobra"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	File     string
	Text     bool
	Order    bool
	Format   string
	Database string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [EXPR]",
		Short: "Compile an expression document to SQL",
		Long: `Compile a JSON or YAML expression document into SQL text and its
positional parameters.

The document comes from the argument, --file, or standard input.`,
		Example: `  # Text lookup of a nested JSON key
  gaussql compile '["key_text", "data", "address", "city"]'

  # Key existence test
  gaussql compile '["has_any_keys", "data", "a", "b"]' --format json

  # Ordering term under the text ordering policy
  gaussql compile '["key_numeric", "data", "rank"]' --order --ordering-coercion ordering_text`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the document from a file")
	cmd.Flags().BoolVar(&opts.Text, "text", false, "Force a text-typed result")
	cmd.Flags().BoolVar(&opts.Order, "order", false, "Compile as an ORDER BY term")
	cmd.Flags().StringVar(&opts.Format, "format", formatTable, "Output format: table, json")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database whose engine selects the dialect")
	cmd.Flags().String("dialect", "", "SQL dialect (overrides the database engine)")
	cmd.Flags().String("ordering-coercion", "", "Ordering policy: numeric_first, ordering_text")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	src, err := readDocument(cmd.InOrStdin(), args, opts.File)
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

	frag, err := compileDocument(comp, dec, src, opts.Text, opts.Order)
	if err != nil {
		return err
	}
	return renderFragment(cc.Out, frag, opts.Format)
}

// readDocument returns the document from args, a file, or piped input.
func readDocument(in io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case file != "":
		content, err := os.ReadFile(file) //nolint:gosec // user-supplied path
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case in != nil && !isTerminal(in):
		content, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return "", fmt.Errorf("empty expression document")
		}
		return string(content), nil
	}
	return "", fmt.Errorf("no expression given (pass EXPR, --file or pipe a document)")
}

// compileDocument decodes src and compiles it. With order set, the result
// is an ORDER BY clause; a document that is already an order term keeps its
// direction.
func compileDocument(comp *compiler.Compiler, dec *exprdoc.Decoder, src string, forceText, order bool) (compiler.Fragment, error) {
	e, err := dec.DecodeString(src)
	if err != nil {
		return compiler.Fragment{}, err
	}
	if order {
		ob, ok := e.(*core.OrderBy)
		if !ok {
			ob = core.Asc(e)
		}
		return comp.CompileOrderBy(ob)
	}
	return comp.Compile(e, forceText)
}
