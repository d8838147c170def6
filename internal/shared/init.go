// Package shared builds the hosting service objects from configuration.
// The CLI commands and the bridge server both start here so they talk to the
// same server with the same options.
package shared

import (
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/credential"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/workspace"
	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// Services are the objects built from the gitee configuration section
type Services struct {
	Options  *provider.ProviderOptions
	Provider *gitee.Provider
	Client   *gitee.Client
}

// InitProvider creates the hosting service provider from configuration
func InitProvider(cfg *config.GiteeConfig) (*Services, error) {
	opts, err := cfg.ProviderOptions()
	if err != nil {
		return nil, err
	}

	p, err := provider.Create(consts.ProviderName, opts)
	if err != nil {
		return nil, errors.ErrInternal("failed to create provider", err)
	}
	gp, ok := p.(*gitee.Provider)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "unexpected provider type for "+consts.ProviderName)
	}

	logger.Info("Initialized hosting service provider",
		zap.String("provider", gp.Name()),
		zap.String("server", opts.Server.String()),
		zap.Bool("enabled", gp.IsEnabled()),
		zap.Bool("insecure_skip_verify", opts.InsecureSkipVerify),
	)
	if !gp.IsEnabled() {
		logger.Warn("No access token configured; API commands will fail until one is set")
	}

	return &Services{Options: opts, Provider: gp, Client: gp.Client()}, nil
}

// CredentialSource returns the git HTTP credentials of the configuration
func CredentialSource(cfg *config.GiteeConfig) credential.Source {
	return credential.StaticSource{Username: cfg.Login, Token: cfg.Token}
}

// NewWorkspace creates a clone manager for the configured server
func NewWorkspace(cfg *config.GiteeConfig) (*workspace.Manager, error) {
	server, err := cfg.ServerPath()
	if err != nil {
		return nil, err
	}
	return workspace.NewManager(server, CredentialSource(cfg), cfg.InsecureSkipVerify), nil
}
