package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/api/handler"
	"github.com/verustcode/giteebridge/internal/check"
	"github.com/verustcode/giteebridge/internal/server"
	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// newInitCmd runs the interactive environment check
func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Check the environment and create the configuration file",
		Long: `Check the local environment: the configuration file, its values, the
access token and the git binary. A missing configuration file is created
with default values after confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := check.NewChecker(configPath(opts)).WithOutput(cmd.OutOrStdout()).Run(cmd.Context()); err != nil {
				return errors.Wrap(errors.ErrCodeConfigInvalid, "environment check failed", err)
			}
			return nil
		},
	}
}

// newServeCmd starts the local HTTP bridge
func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local HTTP bridge for IDE integrations",
		Long: `Start an HTTP server exposing repositories, issues, pull requests and
gists of the configured server as JSON under /api/v1.

Requests may carry their own access token in the Authorization header;
otherwise the configured token is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := check.NewChecker(configPath(opts)).RunNonInteractive()
			if !result.Success {
				check.PrintCheckResult(cmd.ErrOrStderr(), result)
				return errors.New(errors.ErrCodeConfigInvalid, "environment check failed")
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "[WARNING] %s\n", w)
			}

			a, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			if opts.debug {
				a.cfg.Server.Debug = true
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "server port (overrides config)")
	return cmd
}

// runServe blocks until ctx is cancelled or the process is signalled
func runServe(ctx context.Context, a *app) error {
	consts.SetStartedAt(time.Now())

	logger.Info("Starting GiteeBridge",
		zap.String("version", consts.Version),
		zap.String("server", a.server().String()),
	)

	tel, err := telemetry.New(a.cfg.Telemetry)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	srv := server.New(a.cfg, a.svc.Provider, handler.NewClients(a.svc.Options, a.svc.Client))
	srv.SetupRoutes()
	if err := srv.Start(); err != nil {
		return err
	}

	logger.Info("GiteeBridge server is running", zap.String("address", srv.Addr()))
	srv.WaitForShutdown(ctx)
	logger.Info("GiteeBridge stopped")
	return nil
}
