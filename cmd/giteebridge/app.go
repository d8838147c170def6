package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/prurl"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/internal/git/workspace"
	"github.com/verustcode/giteebridge/internal/output"
	"github.com/verustcode/giteebridge/internal/shared"
	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// app is what a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	out     *output.Printer
	svc     *shared.Services
	errOut  io.Writer
	workDir string
}

// loadApp loads configuration, initializes logging and builds the client.
// Commands log at warn level unless --debug is set; serve keeps the
// configured level.
func loadApp(cmd *cobra.Command, opts *rootOptions, quiet bool) (*app, error) {
	out, err := output.New(cmd.OutOrStdout(), opts.output)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath(opts))
	if err != nil {
		return nil, err
	}
	switch {
	case opts.debug:
		cfg.Logging.Level = "debug"
	case quiet && cfg.Logging.Level == "info":
		cfg.Logging.Level = "warn"
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to initialize logger", err)
	}

	svc, err := shared.InitProvider(&cfg.Gitee)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, out: out, svc: svc, errOut: cmd.ErrOrStderr(), workDir: "."}, nil
}

// configPath returns the --config value or the default path
func configPath(opts *rootOptions) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	return config.DefaultConfigPath
}

// server is the configured hosting server
func (a *app) server() remoteurl.ServerPath {
	return a.svc.Options.Server
}

// requireToken fails commands that need an authenticated client
func (a *app) requireToken() error {
	return a.cfg.Gitee.RequireToken()
}

// resolveRepo turns a repository argument into a location. The argument may
// be a browser URL, a git remote or owner/repo; empty means the repository
// of the current directory.
func (a *app) resolveRepo(arg string) (remoteurl.RemoteLocation, error) {
	if arg == "" {
		loc, err := workspace.DetectRemote(a.workDir, a.server())
		if err != nil {
			return remoteurl.RemoteLocation{}, errors.Wrap(errors.ErrCodeGitNotFound,
				"no repository given and none detected in the current directory; pass --repo owner/repo", err)
		}
		logger.Debug("Detected repository", zap.String("repo", loc.FullName()))
		return loc, nil
	}
	if info, err := prurl.NewParser(a.server().HostPort()).Parse(arg); err == nil {
		return info.Location(), nil
	}
	if loc, ok := remoteurl.ParseRepositoryArg(arg, a.server()); ok {
		return loc, nil
	}
	return remoteurl.RemoteLocation{}, errors.New(errors.ErrCodeRemoteURL, "not a repository: "+arg)
}

// warn prints a warning to stderr
func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.errOut, "%s %s\n", color.YellowString("[WARNING]"), fmt.Sprintf(format, args...))
}

func userLogin(u *gitee.User) string {
	if u == nil {
		return "-"
	}
	return u.Login
}

// formatTime renders a timestamp in local time, or "-" when unset
func formatTime(ts *github.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// signalContext cancels ctx on the first interrupt
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// printError prints a failed command's error with a hint where one helps
func printError(w io.Writer, err error) {
	appErr := rest.ToAppError(err)
	fmt.Fprintf(w, "%s %s\n", color.RedString("Error:"), appErr.Message)
	if appErr.Err != nil && appErr.Err.Error() != appErr.Message {
		fmt.Fprintf(w, "  %s\n", appErr.Err)
	}
	if appErr.Details != nil {
		fmt.Fprintf(w, "  details: %v\n", appErr.Details)
	}

	switch appErr.Code {
	case errors.ErrCodeTokenMissing, errors.ErrCodeGitAuth:
		fmt.Fprintln(w, "Run 'giteebridge login' to create an access token, then set gitee.token or GITEE_TOKEN.")
	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigParse:
		fmt.Fprintln(w, "Run 'giteebridge init' to check the configuration.")
	}
}
