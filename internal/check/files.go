package check

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/verustcode/giteebridge/internal/config"
)

// FileCheckResult represents the result of a file check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// checkFiles checks the configuration file and offers to create it
func (c *Checker) checkFiles() error {
	result := c.checkConfigFile()
	c.report.AddFileResult(result)
	c.printFileStatus(result)
	return result.Error
}

// checkConfigFile prompts for creation of a missing configuration file
func (c *Checker) checkConfigFile() FileCheckResult {
	result := FileCheckResult{
		Path:        c.configPath,
		Description: "Configuration file (gitee, server, logging, telemetry)",
	}

	if fileExists(c.configPath) {
		result.Exists = true
		return result
	}

	color.New(color.FgYellow).Fprintf(c.out, "  ⚠ %s does not exist\n", c.configPath)
	confirm, err := c.confirm(fmt.Sprintf("Create %s with default settings?", c.configPath))
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result
	}
	if !confirm {
		return result
	}

	if err := ensureDir(c.configPath); err != nil {
		result.Error = err
		return result
	}
	if err := config.CreateDefault(c.configPath); err != nil {
		result.Error = fmt.Errorf("failed to create file %s: %w", c.configPath, err)
		return result
	}

	result.Exists = true
	result.Created = true
	return result
}

func (c *Checker) printFileStatus(result FileCheckResult) {
	switch result.status() {
	case StatusCreated:
		color.New(color.FgGreen).Fprintf(c.out, "  ✓ Created %s\n", result.Path)
	case StatusOK:
		color.New(color.FgGreen).Fprintf(c.out, "  ✓ %s\n", result.Path)
	case StatusFailed:
		color.New(color.FgRed).Fprintf(c.out, "  ✗ %s: %v\n", result.Path, result.Error)
	default:
		color.New(color.FgYellow).Fprintf(c.out, "  ⚠ %s does not exist\n", result.Path)
	}
}
