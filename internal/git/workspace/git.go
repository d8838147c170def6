// Package workspace clones hosted repositories and manages their local
// checkouts through go-git, authenticating over HTTP with the credential
// source.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"

	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

const (
	// GitOperationTimeout bounds a clone or fetch
	GitOperationTimeout = 5 * time.Minute

	// DefaultRemote is the remote name used for clones
	DefaultRemote = "origin"
)

// MaskToken masks a token for safe logging, showing first 4 and last 4 characters
// Returns "****" for tokens <= 8 characters, or "xxxx...xxxx" format for longer tokens
func MaskToken(token string) string {
	return logger.MaskSecret(token)
}

// PullRequestRef returns the server ref of a pull request head
func PullRequestRef(number int) plumbing.ReferenceName {
	return plumbing.ReferenceName(fmt.Sprintf("refs/pull/%d/head", number))
}

// PullRequestBranch is the local branch a pull request is checked out into
func PullRequestBranch(number int) string {
	return fmt.Sprintf("pr-%d", number)
}

// HeadSHA returns the commit HEAD points at
func HeadSHA(repoPath string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", mapGitError(err, "open repository")
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CheckoutBranch checks out an existing local branch
func CheckoutBranch(repoPath, branch string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return mapGitError(err, "open repository")
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}); err != nil {
		logger.Warn("Failed to checkout branch",
			zap.String("path", repoPath),
			zap.String("branch", branch),
			zap.Error(err),
		)
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// fetchRef force-fetches remoteRef into the local branch, so a rebased or
// force-pushed pull request replaces the previous checkout.
func fetchRef(ctx context.Context, repo *git.Repository, remoteRef plumbing.ReferenceName, localBranch string, auth transport.AuthMethod, insecure bool) error {
	ctx, cancel := context.WithTimeout(ctx, GitOperationTimeout)
	defer cancel()

	refSpec := config.RefSpec(fmt.Sprintf("+%s:%s", remoteRef, plumbing.NewBranchReferenceName(localBranch)))
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName:      DefaultRemote,
		RefSpecs:        []config.RefSpec{refSpec},
		Auth:            auth,
		InsecureSkipTLS: insecure,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return mapGitError(err, "fetch "+remoteRef.String())
	}
	return nil
}

// mapGitError classifies go-git failures into application errors.
func mapGitError(err error, action string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeCancelled, action+" cancelled", err)
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return apperrors.Wrap(apperrors.ErrCodeGitAuth, action+": authentication failed", err)
	case errors.Is(err, transport.ErrRepositoryNotFound), errors.Is(err, git.ErrRepositoryNotExists):
		return apperrors.Wrap(apperrors.ErrCodeGitNotFound, action+": repository not found", err)
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		return apperrors.Wrap(apperrors.ErrCodeConflict, action+": destination already holds a repository", err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeGitClone, action+" failed", err)
	}
}
