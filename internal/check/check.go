// Package check provides interactive environment checking and initialization.
// It helps users set up their local GiteeBridge configuration properly.
package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/gitee"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// TokenVerifier checks the configured token against the server and returns
// the login it belongs to.
type TokenVerifier func(ctx context.Context, cfg *config.Config) (string, error)

// Checker handles environment checking and initialization
type Checker struct {
	configPath string
	out        io.Writer
	report     *Report
	theme      *huh.Theme
	confirm    func(prompt string) (bool, error)
	verify     TokenVerifier
	lookPath   func(file string) (string, error)
}

// NewChecker creates a new environment checker for the config file at path
func NewChecker(path string) *Checker {
	if path == "" {
		path = config.DefaultConfigPath
	}
	c := &Checker{
		configPath: path,
		out:        os.Stdout,
		report:     NewReport(),
		theme:      huh.ThemeCharm(),
		verify:     verifyToken,
		lookPath:   exec.LookPath,
	}
	c.confirm = c.confirmCreate
	return c
}

// WithOutput directs progress and the report to w
func (c *Checker) WithOutput(w io.Writer) *Checker {
	c.out = w
	return c
}

// ConfigPath returns the path to the configuration file
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// Run executes the full environment check: the configuration file, its
// values, the access token and the git binary.
func (c *Checker) Run(ctx context.Context) error {
	c.heading("🔍 " + consts.ProjectName + " Environment Check")

	c.section("Checking configuration file")
	if err := c.checkFiles(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	c.section("Validating configuration")
	cfg, result := c.validateConfig()
	c.record(result)
	if !result.Valid {
		c.report.Print(c.out)
		return fmt.Errorf("config validation failed: %w", result.Error)
	}

	c.section("Checking access")
	c.record(c.checkToken(ctx, cfg))
	c.record(c.checkGitBinary())

	fmt.Fprintln(c.out)
	c.report.Print(c.out)
	return nil
}

func (c *Checker) record(result ValidationResult) {
	c.report.AddValidationResult(result)
	printValidationResult(c.out, result)
}

func (c *Checker) heading(title string) {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fmt.Fprintln(c.out, style.Render(title))
}

func (c *Checker) section(title string) {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, style.Render(title+"..."))
}

// confirmCreate asks user to confirm file creation
func (c *Checker) confirmCreate(prompt string) (bool, error) {
	var confirm bool
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm)
	err := huh.NewForm(huh.NewGroup(field)).WithTheme(c.theme).Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// verifyToken asks the server who owns the configured token
func verifyToken(ctx context.Context, cfg *config.Config) (string, error) {
	opts, err := cfg.Gitee.ProviderOptions()
	if err != nil {
		return "", err
	}
	user, err := gitee.NewFromOptions(opts).CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates the parent directory of path if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt, create files or contact the
// server. A missing configuration file is a warning since defaults apply.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	if !fileExists(c.configPath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Configuration not found: %s (using defaults)", c.configPath))
		result.Suggestions = append(result.Suggestions,
			"Run 'giteebridge init' to create a configuration file")
	}

	cfg, validation := c.validateConfig()
	if !validation.Valid {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid %s: %v", c.configPath, validation.Error))
		return result
	}

	if cfg.Gitee.RequireToken() != nil {
		result.Warnings = append(result.Warnings, "No access token configured; only public data is available")
		result.Suggestions = append(result.Suggestions,
			"Run 'giteebridge login' and export the printed token as GITEE_TOKEN")
	}
	return result
}

// PrintCheckResult writes the errors, warnings and suggestions of a
// non-interactive check to w
func PrintCheckResult(w io.Writer, result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if len(result.Errors) > 0 {
		red.Fprintln(w, "\n[ERROR] Environment check failed")
		for _, err := range result.Errors {
			red.Fprintf(w, "  ✗ %s\n", err)
		}
	}
	if len(result.Warnings) > 0 {
		yellow.Fprintln(w, "\n[WARNING] Configuration warnings:")
		for _, warn := range result.Warnings {
			yellow.Fprintf(w, "  ⚠ %s\n", warn)
		}
	}
	if len(result.Suggestions) > 0 {
		color.New(color.FgCyan).Fprintln(w, "\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(w, "  → %s\n", suggestion)
		}
	}
}
