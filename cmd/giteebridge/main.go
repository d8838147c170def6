// Package main is the entry point for the GiteeBridge command line tool.
// GiteeBridge connects local git workspaces and IDEs to a Gitee (GitOSC)
// server: repository listings, issues, pull requests, gists, clone and a
// git credential helper.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/errors"

	// Import git provider implementations to register them
	_ "github.com/verustcode/giteebridge/internal/git/providers"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	output     string
	debug      bool
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "giteebridge",
		Short: "GiteeBridge - work with Gitee repositories from the terminal and your IDE",
		Long: `GiteeBridge talks to a Gitee (GitOSC) server, public or self-hosted.

It lists your repositories, manages issues, pull requests and gists, clones
repositories, acts as a git credential helper and serves a local HTTP bridge
for IDE integrations.

Run 'giteebridge init' once to create the configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default: "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", consts.OutputFormatTable, "output format: table or json")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(opts),
		newLoginCmd(opts),
		newReposCmd(opts),
		newCloneCmd(opts),
		newIssueCmd(opts),
		newPRCmd(opts),
		newGistCmd(opts),
		newURLCmd(opts),
		newCredentialCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

// newVersionCmd prints build information
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", consts.ProjectName, consts.Version)
			fmt.Fprintf(out, "  Build Time: %s\n", consts.BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", consts.GitCommit)
		},
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

// execute runs the command line and returns the process exit code
func execute(ctx context.Context, args []string) int {
	ctx, stop := signalContext(ctx)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	code := exitCode(err)
	if code != errors.ExitCodeCancelled {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return code
}

// exitCode maps an error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch rest.ToAppError(err).Code {
	case errors.ErrCodeCancelled:
		return errors.ExitCodeCancelled
	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigParse, errors.ErrCodeConfigNotFound, errors.ErrCodeTokenMissing:
		return errors.ExitCodeConfigValidation
	default:
		return 1
	}
}
