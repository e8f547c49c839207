package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/exprdoc"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "gaussql> "
	replContPrompt = "   ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Compile expression documents interactively",
		Long: `Start an interactive loop that compiles one expression document per
entry. A document may span lines; it is compiled once its brackets balance.

Type .help for commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, database)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Database whose engine selects the dialect")
	cmd.Flags().String("dialect", "", "SQL dialect (overrides the database engine)")
	cmd.Flags().String("ordering-coercion", "", "Ordering policy: numeric_first, ordering_text")
	return cmd
}

func runREPL(cmd *cobra.Command, database string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	comp, err := cc.Compiler(database)
	if err != nil {
		return err
	}
	dec, err := exprdoc.NewDecoder()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newOperatorCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := &replSession{comp: comp, dec: dec, out: cc.Out, errOut: cc.ErrOut}
	_, _ = fmt.Fprintf(cc.Out, "gaussql REPL (dialect: %s, ordering: %s)\n", comp.Dialect().Name, comp.OrderingCoercion())
	_, _ = fmt.Fprintln(cc.Out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cc.Out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit := s.feed(line)
		if quit {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gaussql_history")
}

// replSession holds the REPL state that outlives a single line.
type replSession struct {
	comp   *compiler.Compiler
	dec    *exprdoc.Decoder
	out    io.Writer
	errOut io.Writer

	forceText bool
	order     bool
	format    string
	buf       strings.Builder
}

// feed handles one input line and reports whether the session should end.
func (s *replSession) feed(line string) bool {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return s.dotCommand(trimmed)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	src := s.buf.String()
	if !balanced(src) {
		return false
	}
	s.buf.Reset()

	frag, err := compileDocument(s.comp, s.dec, src, s.forceText, s.order)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	if err := renderFragment(s.out, frag, s.format); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.out)
	case ".text":
		s.forceText = !s.forceText
		_, _ = fmt.Fprintf(s.out, "force text: %v\n", s.forceText)
	case ".order":
		s.order = !s.order
		_, _ = fmt.Fprintf(s.out, "order by: %v\n", s.order)
	case ".json":
		if s.format == formatJSON {
			s.format = formatTable
		} else {
			s.format = formatJSON
		}
		_, _ = fmt.Fprintf(s.out, "json output: %v\n", s.format == formatJSON)
	case ".ops":
		_, _ = fmt.Fprintln(s.out, strings.Join(exprdoc.Operators(), " "))
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

// balanced reports whether every bracket and brace opened outside a string
// has been closed.
func balanced(src string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range src {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		}
	}
	return depth <= 0 && quote == 0
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .text           Toggle forcing a text-typed result
  .order          Toggle compiling entries as ORDER BY terms
  .json           Toggle JSON output
  .ops            List document operators
  .quit / .exit   Exit the REPL

Tips:
  - Enter a JSON or YAML document, e.g. ["key_text", "data", "city"]
  - A document continues over lines until its brackets balance
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func newOperatorCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".text"),
		readline.PcItem(".order"),
		readline.PcItem(".json"),
		readline.PcItem(".ops"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, op := range exprdoc.Operators() {
		items = append(items, readline.PcItem(`["`+op+`", `))
	}
	return readline.NewPrefixCompleter(items...)
}
