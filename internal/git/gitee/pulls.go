package gitee

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/paging"
	"github.com/verustcode/giteebridge/pkg/logger"
)

func (c *Client) pullEndpoint(owner, repo string, number int, extra ...string) string {
	segments := append([]string{"repos", owner, repo, "pulls", strconv.Itoa(number)}, extra...)
	return c.endpoint(segments...)
}

// ListPullRequests lists the pull requests of a repository with the given
// state (open, closed, merged, all; empty means open).
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string) ([]PullRequest, error) {
	q, err := stateQuery(state)
	if err != nil {
		return nil, err
	}
	return paging.LoadAll(ctx, c.fetcher,
		listRequest[PullRequest](withQuery(c.endpoint("repos", owner, repo, "pulls"), q), false))
}

// GetPullRequest fetches one pull request
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	return getOne[PullRequest](ctx, c.exec, c.pullEndpoint(owner, repo, number))
}

// CreatePullRequest opens a pull request
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, req *CreatePullRequestRequest) (*PullRequest, error) {
	pr, err := send[PullRequest](ctx, c.exec, http.MethodPost, c.endpoint("repos", owner, repo, "pulls"), req)
	if err != nil {
		logger.Error("Failed to create pull request",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("Pull request created",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("number", pr.Number),
	)
	return pr, nil
}

// MergePullRequest merges a pull request. A nil req uses the server's
// default merge method.
func (c *Client) MergePullRequest(ctx context.Context, owner, repo string, number int, req *MergePullRequestRequest) (*MergeResult, error) {
	if req == nil {
		req = &MergePullRequestRequest{}
	}
	return send[MergeResult](ctx, c.exec, http.MethodPut, c.pullEndpoint(owner, repo, number, "merge"), req)
}

// ListPullRequestCommits lists the commits of a pull request
func (c *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]Commit, error) {
	return paging.LoadAll(ctx, c.fetcher, listRequest[Commit](c.pullEndpoint(owner, repo, number, "commits"), false))
}
