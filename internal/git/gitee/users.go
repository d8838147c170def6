package gitee

import (
	"context"
)

// CurrentUser returns the authenticated user. It doubles as the credential
// check used when enabling the provider.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return getOne[User](ctx, c.exec, c.endpoint("user"))
}
