package gitee

import (
	"context"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

func init() {
	provider.Register(consts.ProviderName, NewProvider)
}

// Provider adapts Client to provider.Provider
type Provider struct {
	client         *Client
	includeWatched bool
	enabled        atomic.Bool
	hasToken       bool
}

// NewProvider creates a Gitee provider instance. It starts enabled when a
// token is configured; Enable verifies the token against the server.
func NewProvider(opts *provider.ProviderOptions) (provider.Provider, error) {
	return NewProviderWithClient(NewFromOptions(opts), opts.Token != "", opts.IncludeWatched), nil
}

// NewProviderWithClient wraps an existing client.
func NewProviderWithClient(client *Client, hasToken, includeWatched bool) *Provider {
	p := &Provider{
		client:         client,
		includeWatched: includeWatched,
		hasToken:       hasToken,
	}
	p.enabled.Store(hasToken)
	return p
}

// Client returns the underlying API client
func (p *Provider) Client() *Client {
	return p.client
}

// Name returns the provider name
func (p *Provider) Name() string {
	return consts.ProviderName
}

// DisplayName returns the provider display name
func (p *Provider) DisplayName() string {
	return consts.ProviderDisplayName
}

// Server returns the configured server
func (p *Provider) Server() remoteurl.ServerPath {
	return p.client.Server()
}

// IsEnabled reports whether the provider has usable credentials
func (p *Provider) IsEnabled() bool {
	return p.enabled.Load()
}

// Enable checks the configured token by fetching the current user.
func (p *Provider) Enable(ctx context.Context) error {
	if !p.hasToken {
		return apperrors.New(apperrors.ErrCodeTokenMissing, "no access token configured for "+p.Server().String())
	}
	user, err := p.client.CurrentUser(ctx)
	if err != nil {
		p.enabled.Store(false)
		return &provider.ProviderError{
			Provider: consts.ProviderName,
			Message:  "token verification failed",
			Err:      err,
		}
	}
	p.enabled.Store(true)
	logger.Info("Provider enabled",
		zap.String("provider", consts.ProviderName),
		zap.String("server", p.Server().String()),
		zap.String("login", user.Login),
	)
	return nil
}

// ListRepositories lists associated repositories and, when configured,
// watched ones.
func (p *Provider) ListRepositories(ctx context.Context) ([]provider.Repository, error) {
	if !p.IsEnabled() {
		return nil, apperrors.New(apperrors.ErrCodeProviderDisabled, consts.ProviderDisplayName+" provider is disabled")
	}
	available, err := p.client.ListAvailableRepositories(ctx, p.includeWatched)
	if err != nil {
		return nil, err
	}

	server := p.Server()
	toSummary := func(source string) func(Repository, int) provider.Repository {
		return func(r Repository, _ int) provider.Repository {
			return Summary(server, r, source)
		}
	}
	return append(
		lo.Map(available.Associated, toSummary(provider.SourceAssociated)),
		lo.Map(available.Watched, toSummary(provider.SourceWatched))...,
	), nil
}

// MatchesURL reports whether url points at the configured host
func (p *Provider) MatchesURL(url string) bool {
	return p.Server().Matches(url)
}

// CloneURL returns the HTTP clone URL of owner/repo
func (p *Provider) CloneURL(owner, repo string) string {
	return remoteurl.BuildCloneURL(p.Server(), owner, repo)
}

// Summary converts a repository record into the host-agnostic summary.
// Clone and web URLs are derived from the server when the record lacks them.
func Summary(server remoteurl.ServerPath, r Repository, source string) provider.Repository {
	owner, name := "", r.Name
	if loc, ok := remoteurl.ParseFullName(r.FullName, server); ok {
		owner, name = loc.Owner, loc.Repository
	} else if r.Owner != nil {
		owner = r.Owner.Login
	}

	cloneURL := r.CloneURL
	if cloneURL == "" {
		cloneURL = remoteurl.BuildCloneURL(server, owner, name)
	}
	sshURL := r.SSHURL
	if sshURL == "" {
		sshURL = remoteurl.SSHCloneURL(server, owner, name)
	}
	webURL := r.HTMLURL
	if webURL == "" {
		webURL = remoteurl.WebURL(server, owner, name)
	}

	return provider.Repository{
		Owner:         owner,
		Name:          name,
		FullName:      r.FullName,
		Description:   r.Description,
		CloneURL:      cloneURL,
		SSHURL:        sshURL,
		WebURL:        webURL,
		Private:       r.Private,
		Fork:          r.Fork,
		DefaultBranch: r.DefaultBranch,
		Source:        source,
	}
}
