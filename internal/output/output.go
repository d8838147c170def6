// Package output renders command results for the terminal. Listings become
// tables, single records become detail views, and either can be emitted as
// JSON for scripts and IDE integrations.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// Field is one labelled line of a detail view
type Field struct {
	Name  string
	Value string
}

// Printer writes results in the selected format
type Printer struct {
	w      io.Writer
	format string
}

// New creates a printer; format is "table" or "json", empty means table
func New(w io.Writer, format string) (*Printer, error) {
	switch format {
	case "":
		format = consts.OutputFormatTable
	case consts.OutputFormatTable, consts.OutputFormatJSON:
	default:
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown output format %q (want %s or %s)", format, consts.OutputFormatTable, consts.OutputFormatJSON))
	}
	return &Printer{w: w, format: format}, nil
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

// IsJSON reports whether results are emitted as JSON
func (p *Printer) IsJSON() bool {
	return p.format == consts.OutputFormatJSON
}

// JSON writes v as indented JSON
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// Table writes rows under headers, or data as JSON
func (p *Printer) Table(headers []string, rows [][]string, data any) error {
	if p.IsJSON() {
		return p.JSON(data)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.w, color.New(color.Faint).Sprint("No results"))
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

// Detail writes a titled record with its fields and an optional body, or
// data as JSON
func (p *Printer) Detail(title string, fields []Field, body string, data any) error {
	if p.IsJSON() {
		return p.JSON(data)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		b.WriteString(labelStyle.Render(f.Name + ":"))
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteByte('\n')
		b.WriteString(body)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Success prints a confirmation line. It is suppressed in JSON mode so the
// output stays parseable.
func (p *Printer) Success(format string, args ...any) {
	if p.IsJSON() {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// YesNo renders a flag for tables
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
