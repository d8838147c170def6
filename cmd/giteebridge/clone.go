package main

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/git/workspace"
	"github.com/verustcode/giteebridge/internal/shared"
	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
)

type cloneOptions struct {
	branch   string
	depth    int
	all      bool
	protocol string
}

// newCloneCmd clones one repository, or all available ones with --all
func newCloneCmd(opts *rootOptions) *cobra.Command {
	co := &cloneOptions{}

	cmd := &cobra.Command{
		Use:   "clone [owner/repo | url] [directory]",
		Short: "Clone a repository",
		Long: `Clone a repository of the configured server.

The repository may be given as owner/repo, a browser URL or a git remote.
With --all every available repository is cloned below gitee.workspace;
repositories that already exist there are skipped.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			if co.protocol == "" {
				co.protocol = a.cfg.Gitee.CloneProtocol
			}
			manager, err := shared.NewWorkspace(&a.cfg.Gitee)
			if err != nil {
				return err
			}

			if co.all {
				if len(args) > 0 {
					return errors.ErrValidation("--all does not take a repository argument")
				}
				return cloneAll(cmd, a, manager, co)
			}
			if len(args) == 0 {
				return errors.ErrValidation("repository required: giteebridge clone owner/repo")
			}

			loc, err := a.resolveRepo(args[0])
			if err != nil {
				return err
			}
			dest := loc.Repository
			if len(args) > 1 {
				dest = args[1]
			}

			var progress io.Writer = a.errOut
			if a.out.IsJSON() {
				progress = nil
			}
			if _, err := manager.Clone(cmd.Context(), loc, dest, &workspace.CloneOptions{
				URL:      cloneURL(a.server(), loc, co.protocol),
				Branch:   co.branch,
				Depth:    co.depth,
				Progress: progress,
			}); err != nil {
				return err
			}
			a.out.Success("Cloned %s into %s", loc.FullName(), dest)
			if a.out.IsJSON() {
				return a.out.JSON(map[string]string{"repository": loc.FullName(), "path": dest})
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&co.branch, "branch", "b", "", "branch to check out")
	cmd.Flags().IntVar(&co.depth, "depth", 0, "create a shallow clone with this many commits")
	cmd.Flags().BoolVar(&co.all, "all", false, "clone every available repository into gitee.workspace")
	cmd.Flags().StringVar(&co.protocol, "protocol", "", "clone protocol: https or ssh (default from gitee.clone_protocol)")
	return cmd
}

// cloneURL picks the remote for protocol; empty means the manager's default
func cloneURL(server remoteurl.ServerPath, loc remoteurl.RemoteLocation, protocol string) string {
	if protocol == config.CloneProtocolSSH {
		return remoteurl.SSHCloneURL(server, loc.Owner, loc.Repository)
	}
	return ""
}

// cloneResult is the JSON summary of clone --all
type cloneResult struct {
	Cloned  []string          `json:"cloned"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed,omitempty"`
}

func cloneAll(cmd *cobra.Command, a *app, manager *workspace.Manager, co *cloneOptions) error {
	if err := a.requireToken(); err != nil {
		return err
	}
	ctx := cmd.Context()

	available, err := a.svc.Client.ListAvailableRepositories(ctx, a.cfg.Gitee.IncludeWatched)
	if err != nil {
		return err
	}
	if available.Degraded() {
		a.warn("watched repositories unavailable: %v", available.WatchedErr)
	}
	repos := available.All()

	bar := pb.Full.New(len(repos)).SetWriter(a.errOut)
	bar.Start()

	result := cloneResult{Cloned: []string{}, Skipped: []string{}}
	for _, r := range repos {
		if ctx.Err() != nil {
			bar.Finish()
			return errors.Wrap(errors.ErrCodeCancelled, "clone cancelled", ctx.Err())
		}
		loc := remoteurl.RemoteLocation{Host: a.server().HostPort(), Owner: ownerOf(r), Repository: r.Name}
		dest := filepath.Join(a.cfg.Gitee.Workspace, loc.Owner, loc.Repository)

		_, err := manager.Clone(ctx, loc, dest, &workspace.CloneOptions{
			URL:    cloneURL(a.server(), loc, co.protocol),
			Branch: co.branch,
			Depth:  co.depth,
		})
		switch {
		case err == nil:
			result.Cloned = append(result.Cloned, loc.FullName())
		case errors.HasCode(err, errors.ErrCodeConflict):
			result.Skipped = append(result.Skipped, loc.FullName())
		case errors.HasCode(err, errors.ErrCodeCancelled):
			bar.Finish()
			return err
		default:
			if result.Failed == nil {
				result.Failed = map[string]string{}
			}
			result.Failed[loc.FullName()] = err.Error()
			logger.Warn("Clone failed", zap.String("repo", loc.FullName()), zap.Error(err))
		}
		bar.Increment()
	}
	bar.Finish()

	if a.out.IsJSON() {
		return a.out.JSON(result)
	}
	a.out.Success("Cloned %d, skipped %d existing, %d failed", len(result.Cloned), len(result.Skipped), len(result.Failed))
	failed := lo.Keys(result.Failed)
	sort.Strings(failed)
	for _, name := range failed {
		a.warn("%s: %s", name, result.Failed[name])
	}
	if len(result.Failed) > 0 {
		return errors.New(errors.ErrCodeGitClone, "some repositories could not be cloned")
	}
	return nil
}

// ownerOf returns the owner login, falling back to the full name prefix
func ownerOf(r gitee.Repository) string {
	if r.Owner != nil && r.Owner.Login != "" {
		return r.Owner.Login
	}
	if loc, ok := remoteurl.ParseFullName(r.FullName, remoteurl.ServerPath{}); ok {
		return loc.Owner
	}
	return ""
}
