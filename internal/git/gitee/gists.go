package gitee

import (
	"context"
	"net/http"

	"github.com/verustcode/giteebridge/internal/git/paging"
)

// CreateGist creates a gist
func (c *Client) CreateGist(ctx context.Context, req *CreateGistRequest) (*Gist, error) {
	return send[Gist](ctx, c.exec, http.MethodPost, c.endpoint("gists"), req)
}

// ListGists lists the user's gists
func (c *Client) ListGists(ctx context.Context) ([]Gist, error) {
	return paging.LoadAll(ctx, c.fetcher, listRequest[Gist](c.endpoint("gists"), false))
}
