package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/credential"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

func TestInitProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Gitee.Host = "https://git.example.com:8443/"
	cfg.Gitee.Token = "test-token"
	cfg.Gitee.PerPage = 50

	svc, err := InitProvider(&cfg.Gitee)
	require.NoError(t, err)
	assert.True(t, svc.Provider.IsEnabled())
	assert.Equal(t, "https://git.example.com:8443/api/v3", svc.Client.APIBase())
	assert.Equal(t, 50, svc.Options.PerPage)
	assert.Same(t, svc.Provider.Client(), svc.Client)
}

func TestInitProvider_NoToken(t *testing.T) {
	cfg := config.Default()

	svc, err := InitProvider(&cfg.Gitee)
	require.NoError(t, err)
	assert.False(t, svc.Provider.IsEnabled())
	assert.Equal(t, "git.oschina.net", svc.Options.Server.Host)
}

func TestInitProvider_InvalidHost(t *testing.T) {
	cfg := config.Default()
	cfg.Gitee.Host = "ftp://git.example.com"

	_, err := InitProvider(&cfg.Gitee)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))

	_, err = NewWorkspace(&cfg.Gitee)
	assert.Error(t, err)
}

func TestCredentialSource(t *testing.T) {
	cfg := config.Default()
	cfg.Gitee.Login = "alice"
	cfg.Gitee.Token = "secret"

	creds, ok, err := CredentialSource(&cfg.Gitee).Lookup(context.Background(), &credential.Request{Host: "git.oschina.net"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, credential.Credentials{Username: "alice", Password: "secret"}, creds)
}
