package check

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/rest"
)

// ValidationResult represents the result of one validation step
type ValidationResult struct {
	Path     string
	Valid    bool
	Detail   string
	Error    error
	Warnings []string
}

// validateConfig loads the configuration file, or the defaults when it is
// missing, and reports whether it is usable.
func (c *Checker) validateConfig() (*config.Config, ValidationResult) {
	result := ValidationResult{Path: c.configPath}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("format error: %v", err)
		return nil, result
	}

	result.Valid = true
	if !fileExists(c.configPath) {
		result.Warnings = append(result.Warnings, "file missing, defaults apply")
	}
	if cfg.Gitee.InsecureSkipVerify {
		result.Warnings = append(result.Warnings, "TLS verification is disabled for "+cfg.Gitee.Host)
	}
	result.Detail = "server " + cfg.Gitee.Host
	return cfg, result
}

// checkToken verifies the configured token. A missing or rejected token is
// a warning: anonymous access still works for public data.
func (c *Checker) checkToken(ctx context.Context, cfg *config.Config) ValidationResult {
	result := ValidationResult{Path: "access token", Valid: true}

	if cfg.Gitee.RequireToken() != nil {
		result.Warnings = append(result.Warnings,
			"no token configured; run 'giteebridge login' and export GITEE_TOKEN")
		return result
	}

	login, err := c.verify(ctx, cfg)
	if err != nil {
		if rest.IsCancelled(err) {
			result.Valid = false
			result.Error = err
			return result
		}
		result.Warnings = append(result.Warnings, "token rejected: "+rest.ToAppError(err).Message)
		return result
	}
	result.Detail = "authenticated as " + login
	return result
}

// checkGitBinary looks for git, which invokes the credential helper
func (c *Checker) checkGitBinary() ValidationResult {
	result := ValidationResult{Path: "git", Valid: true}
	path, err := c.lookPath("git")
	if err != nil {
		result.Warnings = append(result.Warnings,
			"git not found in PATH; clones still work, the credential helper needs git")
		return result
	}
	result.Detail = path
	return result
}

// printValidationResult writes one validation step and its warnings
func printValidationResult(w io.Writer, result ValidationResult) {
	switch result.status() {
	case StatusFailed:
		color.New(color.FgRed).Fprintf(w, "  ✗ %s: %v\n", result.Path, result.Error)
	case StatusWarning:
		color.New(color.FgYellow).Fprintf(w, "  ⚠ %s\n", result.Path)
	default:
		if result.Detail != "" {
			color.New(color.FgGreen).Fprintf(w, "  ✓ %s (%s)\n", result.Path, result.Detail)
		} else {
			color.New(color.FgGreen).Fprintf(w, "  ✓ %s\n", result.Path)
		}
	}
	for _, warning := range result.Warnings {
		color.New(color.FgYellow).Fprintf(w, "    └─ %s\n", warning)
	}
}
