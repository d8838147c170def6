package workspace

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/credential"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// Manager clones and updates local workspaces of hosted repositories
type Manager struct {
	server   remoteurl.ServerPath
	source   credential.Source
	insecure bool
	metrics  *telemetry.Metrics
}

// NewManager creates a manager for server. source may be nil for
// anonymous access.
func NewManager(server remoteurl.ServerPath, source credential.Source, insecureSkipVerify bool) *Manager {
	return &Manager{
		server:   server,
		source:   source,
		insecure: insecureSkipVerify,
		metrics:  telemetry.GetMetrics(),
	}
}

// CloneOptions holds options for cloning a repository
type CloneOptions struct {
	// URL overrides the clone URL derived from the server
	URL string
	// Branch to check out; empty means the remote HEAD
	Branch string
	// Depth of a shallow clone; 0 for a full clone
	Depth int
	// Progress receives the server's progress messages
	Progress io.Writer
}

// CloneURL returns the HTTP clone URL of a repository on the server
func (m *Manager) CloneURL(loc remoteurl.RemoteLocation) string {
	return remoteurl.BuildCloneURL(m.server, loc.Owner, loc.Repository) + ".git"
}

// auth returns basic auth for URLs of the hosting server, or nil.
func (m *Manager) auth(ctx context.Context, rawURL string) (transport.AuthMethod, error) {
	if m.source == nil || !m.server.Matches(rawURL) {
		return nil, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, nil
	}
	creds, ok, err := m.source.Lookup(ctx, &credential.Request{Protocol: u.Scheme, Host: u.Host})
	if err != nil || !ok {
		return nil, err
	}
	return &githttp.BasicAuth{Username: creds.Username, Password: creds.Password}, nil
}

// Clone clones loc into dest
func (m *Manager) Clone(ctx context.Context, loc remoteurl.RemoteLocation, dest string, opts *CloneOptions) (*git.Repository, error) {
	if opts == nil {
		opts = &CloneOptions{}
	}
	cloneURL := opts.URL
	if cloneURL == "" {
		cloneURL = m.CloneURL(loc)
	}

	ctx, span := telemetry.StartSpan(ctx, "git clone",
		telemetry.WithRepoAttributes(m.server.Host, loc.Owner, loc.Repository))
	defer span.End()

	auth, err := m.auth(ctx, cloneURL)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:             cloneURL,
		RemoteName:      DefaultRemote,
		Auth:            auth,
		Depth:           opts.Depth,
		Progress:        opts.Progress,
		InsecureSkipTLS: m.insecure,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	logger.Info("Cloning repository",
		zap.String("repo", loc.FullName()),
		zap.String("url", cloneURL),
		zap.String("dest", dest),
		zap.Bool("authenticated", auth != nil),
	)

	cloneCtx, cancel := context.WithTimeout(ctx, GitOperationTimeout)
	defer cancel()

	start := time.Now()
	repo, err := git.PlainCloneContext(cloneCtx, dest, false, cloneOpts)
	m.metrics.RecordGitClone(ctx, consts.ProviderName, err == nil, time.Since(start).Seconds())
	if err != nil {
		logger.Error("Failed to clone repository",
			zap.String("repo", loc.FullName()),
			zap.String("dest", dest),
			zap.Error(err),
		)
		err = mapGitError(err, "clone "+loc.FullName())
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanOK(span)
	return repo, nil
}

// CheckoutPullRequest fetches the head of pull request number into the
// local branch pr-<number> and checks it out. It returns the head commit.
func (m *Manager) CheckoutPullRequest(ctx context.Context, repoPath string, number int) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", mapGitError(err, "open repository")
	}
	remote, err := repo.Remote(DefaultRemote)
	if err != nil {
		return "", mapGitError(err, "find remote "+DefaultRemote)
	}

	var auth transport.AuthMethod
	if urls := remote.Config().URLs; len(urls) > 0 {
		if auth, err = m.auth(ctx, urls[0]); err != nil {
			return "", err
		}
	}

	branch := PullRequestBranch(number)
	logger.Debug("Fetching pull request",
		zap.String("path", repoPath),
		zap.Int("number", number),
		zap.String("branch", branch),
	)
	if err := fetchRef(ctx, repo, PullRequestRef(number), branch, auth, m.insecure); err != nil {
		return "", err
	}
	if err := CheckoutBranch(repoPath, branch); err != nil {
		return "", err
	}
	return HeadSHA(repoPath)
}
