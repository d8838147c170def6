package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

// Status of one check step
type Status string

const (
	StatusOK      Status = "ok"
	StatusCreated Status = "created"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Report collects the outcome of every step of a check run
type Report struct {
	FileResults       []FileCheckResult
	ValidationResults []ValidationResult
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{}
}

// AddFileResult records the configuration file step
func (r *Report) AddFileResult(result FileCheckResult) {
	r.FileResults = append(r.FileResults, result)
}

// AddValidationResult records a validation step
func (r *Report) AddValidationResult(result ValidationResult) {
	r.ValidationResults = append(r.ValidationResults, result)
}

func (f FileCheckResult) status() Status {
	switch {
	case f.Error != nil:
		return StatusFailed
	case f.Created:
		return StatusCreated
	case f.Exists:
		return StatusOK
	default:
		return StatusWarning
	}
}

func (v ValidationResult) status() Status {
	switch {
	case !v.Valid:
		return StatusFailed
	case len(v.Warnings) > 0:
		return StatusWarning
	default:
		return StatusOK
	}
}

// ReportSummary counts steps by status
type ReportSummary struct {
	OK       int
	Created  int
	Warnings int
	Failed   int
}

// Summary counts the recorded steps by status
func (r *Report) Summary() ReportSummary {
	var s ReportSummary
	count := func(st Status) {
		switch st {
		case StatusOK:
			s.OK++
		case StatusCreated:
			s.Created++
		case StatusWarning:
			s.Warnings++
		case StatusFailed:
			s.Failed++
		}
	}
	for _, f := range r.FileResults {
		count(f.status())
	}
	for _, v := range r.ValidationResults {
		count(v.status())
	}
	return s
}

// rows returns one table row per step
func (r *Report) rows() [][]string {
	rows := make([][]string, 0, len(r.FileResults)+len(r.ValidationResults))
	for _, f := range r.FileResults {
		detail := f.Description
		switch {
		case f.Error != nil:
			detail = f.Error.Error()
		case !f.Exists:
			detail = "missing, defaults apply"
		}
		rows = append(rows, []string{f.Path, string(f.status()), detail})
	}
	for _, v := range r.ValidationResults {
		detail := v.Detail
		switch {
		case v.Error != nil:
			detail = v.Error.Error()
		case len(v.Warnings) > 0:
			detail = strings.Join(v.Warnings, "; ")
		}
		rows = append(rows, []string{v.Path, string(v.status()), detail})
	}
	return rows
}

// Print writes the step table and a one-line verdict to w
func (r *Report) Print(w io.Writer) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("CHECK", "STATUS", "DETAIL").
		Rows(r.rows()...)
	fmt.Fprintln(w, t.Render())

	s := r.Summary()
	var details []string
	if s.Created > 0 {
		details = append(details, fmt.Sprintf("%d created", s.Created))
	}
	if s.Warnings > 0 {
		details = append(details, fmt.Sprintf("%d warning(s)", s.Warnings))
	}
	if s.Failed > 0 {
		details = append(details, fmt.Sprintf("%d failed", s.Failed))
	}

	switch {
	case s.Failed > 0:
		fmt.Fprint(w, color.New(color.FgRed, color.Bold).Sprint("✗ Check failed"))
	case s.Warnings > 0:
		fmt.Fprint(w, color.New(color.FgYellow, color.Bold).Sprint("⚠ Check completed"))
	default:
		fmt.Fprint(w, color.New(color.FgGreen, color.Bold).Sprint("✓ Check completed"))
	}
	if len(details) == 0 {
		fmt.Fprintln(w, " - all checks passed")
		return
	}
	fmt.Fprintf(w, " (%s)\n", strings.Join(details, ", "))
}
