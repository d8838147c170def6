package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
)

// ====================
// Tests for ProviderError
// ====================

func TestProviderError(t *testing.T) {
	t.Run("error without wrapped error", func(t *testing.T) {
		err := &ProviderError{
			Provider: "gitee",
			Message:  "test error",
		}
		assert.Equal(t, "[gitee] test error", err.Error())
	})

	t.Run("error with wrapped error", func(t *testing.T) {
		wrappedErr := errors.New("wrapped error")
		err := &ProviderError{
			Provider: "gitee",
			Message:  "test error",
			Err:      wrappedErr,
		}
		assert.Equal(t, "[gitee] test error: wrapped error", err.Error())
		assert.ErrorIs(t, err, wrappedErr)
	})
}

// ====================
// Tests for Register and Create
// ====================

func withCleanRegistry(t *testing.T) {
	t.Helper()
	original := make(map[string]ProviderFactory)
	for k, v := range Registry {
		original[k] = v
	}
	Registry = make(map[string]ProviderFactory)
	t.Cleanup(func() { Registry = original })
}

func TestRegisterAndCreate(t *testing.T) {
	withCleanRegistry(t)

	t.Run("register and create provider", func(t *testing.T) {
		Register("test-provider", func(opts *ProviderOptions) (Provider, error) {
			return &mockProvider{name: "test", server: opts.ServerOrDefault()}, nil
		})

		p, err := Create("test-provider", nil)
		require.NoError(t, err)
		assert.Equal(t, "test", p.Name())
		assert.Equal(t, remoteurl.DefaultServerPath(), p.Server())
	})

	t.Run("create non-existent provider", func(t *testing.T) {
		_, err := Create("nonexistent", &ProviderOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider not registered")

		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "nonexistent", perr.Provider)
	})

	t.Run("factory returns error", func(t *testing.T) {
		Register("error-provider", func(opts *ProviderOptions) (Provider, error) {
			return nil, errors.New("factory error")
		})

		_, err := Create("error-provider", &ProviderOptions{})
		assert.EqualError(t, err, "factory error")
	})

	t.Run("names are sorted", func(t *testing.T) {
		assert.Equal(t, []string{"error-provider", "test-provider"}, Names())
	})
}

func TestServerOrDefault(t *testing.T) {
	var nilOpts *ProviderOptions
	assert.Equal(t, remoteurl.DefaultServerPath(), nilOpts.ServerOrDefault())

	custom := remoteurl.MustParseServerPath("http://git.example.com:8080")
	opts := &ProviderOptions{Server: custom}
	assert.Equal(t, custom, opts.ServerOrDefault())
}

func TestFindByURL(t *testing.T) {
	providers := []Provider{
		&mockProvider{name: "a", server: remoteurl.MustParseServerPath("https://git.example.com")},
		&mockProvider{name: "b", server: remoteurl.DefaultServerPath()},
	}

	p, ok := FindByURL(providers, "git@git.oschina.net:alice/demo.git")
	require.True(t, ok)
	assert.Equal(t, "b", p.Name())

	_, ok = FindByURL(providers, "https://github.com/alice/demo")
	assert.False(t, ok)
}

// ====================
// Mock Provider for testing
// ====================

type mockProvider struct {
	name   string
	server remoteurl.ServerPath
}

func (m *mockProvider) Name() string                     { return m.name }
func (m *mockProvider) DisplayName() string              { return m.name }
func (m *mockProvider) Server() remoteurl.ServerPath     { return m.server }
func (m *mockProvider) IsEnabled() bool                  { return true }
func (m *mockProvider) Enable(ctx context.Context) error { return nil }
func (m *mockProvider) MatchesURL(url string) bool       { return m.server.Matches(url) }

func (m *mockProvider) ListRepositories(ctx context.Context) ([]Repository, error) {
	return nil, nil
}

func (m *mockProvider) CloneURL(owner, repo string) string {
	return remoteurl.BuildCloneURL(m.server, owner, repo)
}
