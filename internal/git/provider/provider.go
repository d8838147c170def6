// Package provider defines the interface for Git hosting providers.
// A hosting service (Gitee, or a self-hosted GitOSC server) implements it so
// the CLI, the credential helper and the bridge server stay host-agnostic.
package provider

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
)

// Repository is the host-agnostic summary of a hosted repository
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	CloneURL      string `json:"clone_url"`
	SSHURL        string `json:"ssh_url,omitempty"`
	WebURL        string `json:"web_url,omitempty"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	DefaultBranch string `json:"default_branch,omitempty"`
	// Source is "owned" for associated repositories and "watched" otherwise
	Source string `json:"source"`
}

// Repository sources
const (
	SourceAssociated = "owned"
	SourceWatched    = "watched"
)

// Provider defines the interface for Git hosting providers
type Provider interface {
	// Name returns the registry name (gitee)
	Name() string

	// DisplayName returns the human readable name
	DisplayName() string

	// Server returns the configured server
	Server() remoteurl.ServerPath

	// IsEnabled reports whether the provider has usable credentials
	IsEnabled() bool

	// Enable verifies the configured credentials against the server and
	// marks the provider enabled on success
	Enable(ctx context.Context) error

	// ListRepositories lists the repositories available to the user.
	// It fails with ErrCodeProviderDisabled while the provider is disabled.
	ListRepositories(ctx context.Context) ([]Repository, error)

	// MatchesURL reports whether a remote URL points at this provider's host
	MatchesURL(url string) bool

	// CloneURL returns the HTTP clone URL for owner/repo
	CloneURL(owner, repo string) string
}

// ProviderOptions holds options for creating a provider
type ProviderOptions struct {
	Server             remoteurl.ServerPath // hosting server; zero means the default host
	Token              string               // access token
	Login              string               // account name used for git HTTP credentials
	InsecureSkipVerify bool                 // skip SSL certificate verification
	Timeout            time.Duration        // per request timeout
	PerPage            int                  // page size for listings
	MaxRetries         int                  // retries of transient failures; negative disables
	IncludeWatched     bool                 // merge watched repositories into listings
}

// ServerOrDefault returns Server, or the default server when unset.
func (o *ProviderOptions) ServerOrDefault() remoteurl.ServerPath {
	if o == nil || o.Server.Host == "" {
		return remoteurl.DefaultServerPath()
	}
	return o.Server
}

// ProviderFactory creates a provider instance
type ProviderFactory func(opts *ProviderOptions) (Provider, error)

var (
	registryMu sync.RWMutex
	// Registry holds registered provider factories
	Registry = make(map[string]ProviderFactory)
)

// Register registers a provider factory
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	Registry[name] = factory
}

// Create creates a provider by name
func Create(name string, opts *ProviderOptions) (Provider, error) {
	registryMu.RLock()
	factory, ok := Registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &ProviderError{
			Provider: name,
			Message:  "provider not registered",
		}
	}
	if opts == nil {
		opts = &ProviderOptions{}
	}
	return factory(opts)
}

// Names returns the registered provider names in sorted order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := lo.Keys(Registry)
	sort.Strings(names)
	return names
}

// FindByURL returns the first provider whose host matches url.
func FindByURL(providers []Provider, url string) (Provider, bool) {
	return lo.Find(providers, func(p Provider) bool {
		return p.MatchesURL(url)
	})
}

// ProviderError represents a provider-related error
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "[" + e.Provider + "] " + e.Message + ": " + e.Err.Error()
	}
	return "[" + e.Provider + "] " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
