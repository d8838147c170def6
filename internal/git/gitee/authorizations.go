package gitee

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/pkg/logger"
)

// CreateAuthorization exchanges login and password for a new access token.
// The request goes through the anonymous executor with basic auth, so a
// configured token is never sent alongside the password.
func (c *Client) CreateAuthorization(ctx context.Context, login, password string, req *CreateAuthorizationRequest) (*Authorization, error) {
	httpReq, err := newBodyRequest(http.MethodPost, c.endpoint("authorizations"), req)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(login, password)

	auth, err := doRecord[Authorization](ctx, c.anon, httpReq)
	if err != nil {
		logger.Warn("Token exchange failed",
			zap.String("login", login),
			zap.String("server", c.server.String()),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("Access token issued",
		zap.String("login", login),
		zap.Int64("authorization_id", auth.ID),
	)
	return auth, nil
}
