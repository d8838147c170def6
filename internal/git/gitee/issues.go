package gitee

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/paging"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// stateFilter is the state filter of issue and pull request listings
type stateFilter struct {
	State string `json:"state" validate:"omitempty,oneof=open closed all merged"`
}

// stateQuery builds the listing query. An empty state leaves the server
// default (open).
func stateQuery(state string) (url.Values, error) {
	if err := validateRequest(&stateFilter{State: state}); err != nil {
		return nil, err
	}
	if state == "" {
		return nil, nil
	}
	return url.Values{"state": {state}}, nil
}

func (c *Client) issuesRequest(owner, repo, state string) (paging.PageRequest[Issue], error) {
	q, err := stateQuery(state)
	if err != nil {
		return paging.PageRequest[Issue]{}, err
	}
	return listRequest[Issue](withQuery(c.endpoint("repos", owner, repo, "issues"), q), false), nil
}

// ListIssues lists the issues of a repository with the given state
// (open, closed, all; empty means open).
func (c *Client) ListIssues(ctx context.Context, owner, repo, state string) ([]Issue, error) {
	req, err := c.issuesRequest(owner, repo, state)
	if err != nil {
		return nil, err
	}
	return paging.LoadAll(ctx, c.fetcher, req)
}

// IterateIssues walks issues lazily so a caller showing the first N issues
// fetches only the pages it needs.
func (c *Client) IterateIssues(ctx context.Context, owner, repo, state string) (*paging.Iterator[Issue], error) {
	req, err := c.issuesRequest(owner, repo, state)
	if err != nil {
		return nil, err
	}
	return paging.Iterate(ctx, c.fetcher, req), nil
}

// GetIssue fetches one issue
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number IssueNumber) (*Issue, error) {
	return getOne[Issue](ctx, c.exec, c.endpoint("repos", owner, repo, "issues", number.String()))
}

// CreateIssue opens an issue
func (c *Client) CreateIssue(ctx context.Context, owner, repo string, req *CreateIssueRequest) (*Issue, error) {
	issue, err := send[Issue](ctx, c.exec, http.MethodPost, c.endpoint("repos", owner, repo, "issues"), req)
	if err != nil {
		logger.Error("Failed to create issue",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("Issue created",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.String("number", issue.Number.String()),
	)
	return issue, nil
}

// SetIssueState closes or reopens an issue
func (c *Client) SetIssueState(ctx context.Context, owner, repo string, number IssueNumber, state string) (*Issue, error) {
	return send[Issue](ctx, c.exec, http.MethodPatch,
		c.endpoint("repos", owner, repo, "issues", number.String()),
		&UpdateIssueRequest{State: state})
}

// ListIssueComments lists the comments of an issue
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number IssueNumber) ([]IssueComment, error) {
	return paging.LoadAll(ctx, c.fetcher,
		listRequest[IssueComment](c.endpoint("repos", owner, repo, "issues", number.String(), "comments"), false))
}

// CreateIssueComment comments on an issue
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number IssueNumber, req *CreateCommentRequest) (*IssueComment, error) {
	return send[IssueComment](ctx, c.exec, http.MethodPost,
		c.endpoint("repos", owner, repo, "issues", number.String(), "comments"), req)
}
