package gitee

import (
	"context"
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/paging"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/logger"
)

func (c *Client) userReposRequest() paging.PageRequest[Repository] {
	return listRequest[Repository](c.endpoint("user", "repos"), false)
}

// ListUserRepositories lists the repositories the user owns, collaborates on
// or belongs to through an organization.
func (c *Client) ListUserRepositories(ctx context.Context) ([]Repository, error) {
	return paging.LoadAll(ctx, c.fetcher, c.userReposRequest())
}

// IterateUserRepositories walks the user's repositories lazily, one page at
// a time.
func (c *Client) IterateUserRepositories(ctx context.Context) *paging.Iterator[Repository] {
	return paging.Iterate(ctx, c.fetcher, c.userReposRequest())
}

// ListWatchedRepositories lists the repositories the user watches
func (c *Client) ListWatchedRepositories(ctx context.Context) ([]Repository, error) {
	return paging.LoadAll(ctx, c.fetcher, listRequest[Repository](c.endpoint("user", "subscriptions"), false))
}

// AvailableRepositories is the merged result of ListAvailableRepositories
type AvailableRepositories struct {
	// Associated repositories in server order
	Associated []Repository
	// Watched repositories that are not also associated
	Watched []Repository
	// WatchedErr is the failure of the watched listing when it was skipped
	WatchedErr error
}

// All returns associated repositories followed by watched ones.
func (a *AvailableRepositories) All() []Repository {
	all := make([]Repository, 0, len(a.Associated)+len(a.Watched))
	all = append(all, a.Associated...)
	return append(all, a.Watched...)
}

// Degraded reports whether the watched listing failed
func (a *AvailableRepositories) Degraded() bool {
	return a.WatchedErr != nil
}

func fullName(r Repository) string { return r.FullName }

// ListAvailableRepositories lists associated and, when includeWatched is
// set, watched repositories, each full name once. A failure of the watched
// listing is logged and the associated list is returned alone; a failure of
// the associated listing or a cancellation fails the whole call.
func (c *Client) ListAvailableRepositories(ctx context.Context, includeWatched bool) (*AvailableRepositories, error) {
	associated, err := c.ListUserRepositories(ctx)
	if err != nil {
		return nil, err
	}
	result := &AvailableRepositories{Associated: lo.UniqBy(associated, fullName), Watched: []Repository{}}
	if !includeWatched {
		return result, nil
	}

	watched, err := c.ListWatchedRepositories(ctx)
	if err != nil {
		if rest.IsCancelled(err) {
			return nil, err
		}
		logger.Warn("Watched repositories unavailable, listing associated repositories only",
			zap.String("server", c.server.String()),
			zap.Error(err),
		)
		result.WatchedErr = err
		return result, nil
	}

	seen := lo.SliceToMap(result.Associated, func(r Repository) (string, struct{}) {
		return r.FullName, struct{}{}
	})
	result.Watched = lo.UniqBy(lo.Filter(watched, func(r Repository, _ int) bool {
		_, ok := seen[r.FullName]
		return !ok
	}), fullName)
	return result, nil
}

// GetRepository fetches one repository
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	return getOne[Repository](ctx, c.exec, c.endpoint("repos", owner, repo))
}

// ListBranches lists the branches of a repository
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]Branch, error) {
	return paging.LoadAll(ctx, c.fetcher, listRequest[Branch](c.endpoint("repos", owner, repo, "branches"), false))
}

// ListForks lists the forks of a repository
func (c *Client) ListForks(ctx context.Context, owner, repo string) ([]Repository, error) {
	return paging.LoadAll(ctx, c.fetcher, listRequest[Repository](c.endpoint("repos", owner, repo, "forks"), true))
}

// CreateFork forks a repository into the user's namespace
func (c *Client) CreateFork(ctx context.Context, owner, repo string) (*Repository, error) {
	fork, err := send[Repository](ctx, c.exec, http.MethodPost, c.endpoint("repos", owner, repo, "forks"), nil)
	if err != nil {
		logger.Error("Failed to fork repository",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err),
		)
		return nil, err
	}
	return fork, nil
}
