package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/prurl"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/output"
	"github.com/verustcode/giteebridge/internal/shared"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// newPRCmd groups the pull request commands
func newPRCmd(opts *rootOptions) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:     "pr",
		Aliases: []string{"pull"},
		Short:   "Work with pull requests",
		Long: `List, view, create, merge and check out pull requests.

The repository comes from --repo, or from the git remotes of the current
directory. A pull request may also be given by its browser URL.`,
	}
	cmd.PersistentFlags().StringVarP(&repo, "repo", "R", "", "repository as owner/repo or URL")

	cmd.AddCommand(
		newPRListCmd(opts, &repo),
		newPRViewCmd(opts, &repo),
		newPRCreateCmd(opts, &repo),
		newPRMergeCmd(opts, &repo),
		newPRCheckoutCmd(opts, &repo),
	)
	return cmd
}

// pullTarget resolves "12", "!12" or a pull request URL
func pullTarget(a *app, repo, arg string) (remoteurl.RemoteLocation, int, error) {
	if info, err := prurl.NewParser(a.server().HostPort()).Parse(arg); err == nil {
		if info.Kind != prurl.KindPullRequest {
			return remoteurl.RemoteLocation{}, 0, errors.ErrValidation("not a pull request URL: " + arg)
		}
		return info.Location(), info.Number, nil
	}
	number, err := strconv.Atoi(strings.TrimLeft(strings.TrimSpace(arg), "!#"))
	if err != nil || number <= 0 {
		return remoteurl.RemoteLocation{}, 0, errors.ErrValidation("invalid pull request number: " + arg)
	}
	loc, err := a.resolveRepo(repo)
	return loc, number, err
}

func newPRListCmd(opts *rootOptions, repo *string) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pull requests of a repository",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, err := a.resolveRepo(*repo)
			if err != nil {
				return err
			}
			prs, err := a.svc.Client.ListPullRequests(cmd.Context(), loc.Owner, loc.Repository, state)
			if err != nil {
				return err
			}
			rows := lo.Map(prs, func(p gitee.PullRequest, _ int) []string {
				return []string{"!" + strconv.Itoa(p.Number), p.State, output.Truncate(p.Title, 50), p.Head.Ref + " -> " + p.Base.Ref, userLogin(p.User)}
			})
			return a.out.Table([]string{"NUMBER", "STATE", "TITLE", "BRANCHES", "AUTHOR"}, rows, prs)
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "", "filter by state: open, closed, merged or all (default open)")
	return cmd
}

func newPRViewCmd(opts *rootOptions, repo *string) *cobra.Command {
	var commits bool

	cmd := &cobra.Command{
		Use:   "view <number | url>",
		Short: "Show a pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, number, err := pullTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pr, err := a.svc.Client.GetPullRequest(ctx, loc.Owner, loc.Repository, number)
			if err != nil {
				return err
			}

			var list []gitee.Commit
			if commits {
				if list, err = a.svc.Client.ListPullRequestCommits(ctx, loc.Owner, loc.Repository, number); err != nil {
					return err
				}
			}
			if a.out.IsJSON() {
				return a.out.JSON(struct {
					*gitee.PullRequest
					Commits []gitee.Commit `json:"commits,omitempty"`
				}{pr, list})
			}

			mergeable := "unknown"
			if pr.Mergeable != nil {
				mergeable = output.YesNo(*pr.Mergeable)
			}
			body := pr.Body
			if len(list) > 0 {
				lines := lo.Map(list, func(c gitee.Commit, _ int) string {
					return fmt.Sprintf("%.7s %s", c.SHA, c.Summary())
				})
				body += "\n\nCommits:\n" + strings.Join(lines, "\n")
			}
			return a.out.Detail(fmt.Sprintf("%s!%d %s", loc.FullName(), pr.Number, pr.Title), []output.Field{
				{Name: "State", Value: pr.State},
				{Name: "Author", Value: userLogin(pr.User)},
				{Name: "Head", Value: pr.Head.Ref},
				{Name: "Base", Value: pr.Base.Ref},
				{Name: "Mergeable", Value: mergeable},
				{Name: "Merged", Value: output.YesNo(pr.Merged)},
				{Name: "Created", Value: formatTime(pr.CreatedAt)},
				{Name: "URL", Value: pr.HTMLURL},
			}, body, pr)
		},
	}
	cmd.Flags().BoolVar(&commits, "commits", false, "include commits")
	return cmd
}

func newPRCreateCmd(opts *rootOptions, repo *string) *cobra.Command {
	req := &gitee.CreatePullRequestRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, err := a.resolveRepo(*repo)
			if err != nil {
				return err
			}
			pr, err := a.svc.Client.CreatePullRequest(cmd.Context(), loc.Owner, loc.Repository, req)
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(pr)
			}
			a.out.Success("Created pull request %s!%d", loc.FullName(), pr.Number)
			if pr.HTMLURL != "" {
				fmt.Fprintln(a.out.Writer(), pr.HTMLURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "pull request title")
	cmd.Flags().StringVarP(&req.Body, "body", "b", "", "pull request description")
	cmd.Flags().StringVarP(&req.Head, "head", "H", "", "source branch, or owner:branch for a fork")
	cmd.Flags().StringVarP(&req.Base, "base", "B", "master", "target branch")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("head")
	return cmd
}

func newPRMergeCmd(opts *rootOptions, repo *string) *cobra.Command {
	req := &gitee.MergePullRequestRequest{}

	cmd := &cobra.Command{
		Use:   "merge <number | url>",
		Short: "Merge a pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, number, err := pullTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			result, err := a.svc.Client.MergePullRequest(cmd.Context(), loc.Owner, loc.Repository, number, req)
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(result)
			}
			if !result.Merged {
				return errors.New(errors.ErrCodeConflict, "pull request was not merged: "+result.Message)
			}
			a.out.Success("Merged %s!%d", loc.FullName(), number)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.MergeMethod, "method", "m", "", "merge method: merge, squash or rebase")
	cmd.Flags().StringVar(&req.CommitTitle, "subject", "", "merge commit title")
	return cmd
}

func newPRCheckoutCmd(opts *rootOptions, repo *string) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "checkout <number | url>",
		Short: "Check out a pull request in the local repository",
		Long: `Fetch the head of a pull request into the local branch pr-<number>
and check it out. The repository at --path must have the server as its
origin remote.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			a.workDir = path
			_, number, err := pullTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			mgr, err := shared.NewWorkspace(&a.cfg.Gitee)
			if err != nil {
				return err
			}
			sha, err := mgr.CheckoutPullRequest(cmd.Context(), path, number)
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(map[string]any{"number": number, "path": path, "head": sha})
			}
			a.out.Success("Checked out pull request !%d at %.7s", number, sha)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", ".", "path of the local repository")
	return cmd
}
