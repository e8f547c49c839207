package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pangpang20/gaussdb-django/pkg/adapter"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"golang.org/x/term"
)

// Output formats.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
)

// resolveFormat maps the configured output format to a concrete one.
// auto renders a table on a terminal and markdown otherwise.
func resolveFormat(format string, w io.Writer) string {
	switch format {
	case "", "auto":
		if isTerminal(w) {
			return formatTable
		}
		return formatMarkdown
	case "md":
		return formatMarkdown
	}
	return format
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderResult(w io.Writer, res *adapter.Result, format string) error {
	if format == formatJSON {
		rows := res.Rows
		if rows == nil {
			rows = []map[string]any{}
		}
		return writeJSON(w, rows)
	}

	if len(res.Rows) == 0 && format != formatCSV {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = formatValue(r[col])
		}
		t.AppendRow(row)
	}

	switch format {
	case formatCSV:
		t.RenderCSV()
	case formatMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	}
	return nil
}

// fragmentOutput is the JSON shape of a compiled fragment.
type fragmentOutput struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

func renderFragment(w io.Writer, frag compiler.Fragment, format string) error {
	if format == formatJSON {
		params := frag.Params
		if params == nil {
			params = []any{}
		}
		return writeJSON(w, fragmentOutput{SQL: frag.SQL, Params: params})
	}

	_, _ = fmt.Fprintln(w, frag.SQL)
	if len(frag.Params) == 0 {
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Value", "Type"})
	for i, p := range frag.Params {
		t.AppendRow(table.Row{fmt.Sprintf("$%d", i+1), formatValue(p), fmt.Sprintf("%T", p)})
	}
	t.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
