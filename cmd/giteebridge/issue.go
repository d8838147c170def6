package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/prurl"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/output"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// newIssueCmd groups the issue commands
func newIssueCmd(opts *rootOptions) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Work with issues",
		Long: `List, view, create, close, reopen and comment on issues.

The repository comes from --repo, or from the git remotes of the current
directory. An issue may also be given by its browser URL.`,
	}
	cmd.PersistentFlags().StringVarP(&repo, "repo", "R", "", "repository as owner/repo or URL")

	cmd.AddCommand(
		newIssueListCmd(opts, &repo),
		newIssueViewCmd(opts, &repo),
		newIssueCreateCmd(opts, &repo),
		newIssueStateCmd(opts, &repo, "close", gitee.StateClosed),
		newIssueStateCmd(opts, &repo, "reopen", gitee.StateOpen),
		newIssueCommentCmd(opts, &repo),
	)
	return cmd
}

// issueTarget resolves "I1ABCD", "#I1ABCD" or an issue URL
func issueTarget(a *app, repo, arg string) (remoteurl.RemoteLocation, gitee.IssueNumber, error) {
	if info, err := prurl.NewParser(a.server().HostPort()).Parse(arg); err == nil {
		if info.Kind != prurl.KindIssue {
			return remoteurl.RemoteLocation{}, "", errors.ErrValidation("not an issue URL: " + arg)
		}
		return info.Location(), gitee.IssueNumber(info.IssueNumber), nil
	}
	number := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	if number == "" {
		return remoteurl.RemoteLocation{}, "", errors.ErrValidation("issue number required")
	}
	loc, err := a.resolveRepo(repo)
	return loc, gitee.IssueNumber(number), err
}

func loadIssueApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	a, err := loadApp(cmd, opts, true)
	if err != nil {
		return nil, err
	}
	return a, a.requireToken()
}

func newIssueListCmd(opts *rootOptions, repo *string) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List issues of a repository",
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
			issues, err := a.svc.Client.ListIssues(cmd.Context(), loc.Owner, loc.Repository, state)
			if err != nil {
				return err
			}
			rows := lo.Map(issues, func(i gitee.Issue, _ int) []string {
				return []string{"#" + i.Number.String(), i.State, output.Truncate(i.Title, 60), userLogin(i.User), formatTime(i.CreatedAt)}
			})
			return a.out.Table([]string{"NUMBER", "STATE", "TITLE", "AUTHOR", "CREATED"}, rows, issues)
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "", "filter by state: open, closed or all (default open)")
	return cmd
}

func newIssueViewCmd(opts *rootOptions, repo *string) *cobra.Command {
	var comments bool

	cmd := &cobra.Command{
		Use:   "view <number | url>",
		Short: "Show an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, number, err := issueTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			issue, err := a.svc.Client.GetIssue(ctx, loc.Owner, loc.Repository, number)
			if err != nil {
				return err
			}

			var list []gitee.IssueComment
			if comments {
				if list, err = a.svc.Client.ListIssueComments(ctx, loc.Owner, loc.Repository, number); err != nil {
					return err
				}
			}
			if a.out.IsJSON() {
				return a.out.JSON(struct {
					*gitee.Issue
					CommentList []gitee.IssueComment `json:"comment_list,omitempty"`
				}{issue, list})
			}

			body := issue.Body
			for _, c := range list {
				body += fmt.Sprintf("\n\n--- %s commented %s\n%s", userLogin(c.User), formatTime(c.CreatedAt), c.Body)
			}
			return a.out.Detail(fmt.Sprintf("%s#%s %s", loc.FullName(), issue.Number, issue.Title), []output.Field{
				{Name: "State", Value: issue.State},
				{Name: "Author", Value: userLogin(issue.User)},
				{Name: "Assignee", Value: userLogin(issue.Assignee)},
				{Name: "Labels", Value: strings.Join(lo.Map(issue.Labels, func(l gitee.Label, _ int) string { return l.Name }), ", ")},
				{Name: "Comments", Value: fmt.Sprint(issue.Comments)},
				{Name: "Created", Value: formatTime(issue.CreatedAt)},
				{Name: "URL", Value: issue.HTMLURL},
			}, body, issue)
		},
	}
	cmd.Flags().BoolVar(&comments, "comments", false, "include comments")
	return cmd
}

func newIssueCreateCmd(opts *rootOptions, repo *string) *cobra.Command {
	req := &gitee.CreateIssueRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an issue",
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
			issue, err := a.svc.Client.CreateIssue(cmd.Context(), loc.Owner, loc.Repository, req)
			if err != nil {
				return err
			}
			a.out.Success("Created issue %s#%s", loc.FullName(), issue.Number)
			return printIssueRef(a, issue)
		},
	}
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "issue title")
	cmd.Flags().StringVarP(&req.Body, "body", "b", "", "issue body")
	cmd.Flags().StringVarP(&req.Assignee, "assignee", "a", "", "login of the assignee")
	cmd.Flags().StringSliceVarP(&req.Labels, "label", "l", nil, "labels to add")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newIssueStateCmd(opts *rootOptions, repo *string, verb, state string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <number | url>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, number, err := issueTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			issue, err := a.svc.Client.SetIssueState(cmd.Context(), loc.Owner, loc.Repository, number, state)
			if err != nil {
				return err
			}
			a.out.Success("Issue %s#%s is %s", loc.FullName(), issue.Number, issue.State)
			return printIssueRef(a, issue)
		},
	}
}

func newIssueCommentCmd(opts *rootOptions, repo *string) *cobra.Command {
	req := &gitee.CreateCommentRequest{}

	cmd := &cobra.Command{
		Use:   "comment <number | url>",
		Short: "Comment on an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			loc, number, err := issueTarget(a, *repo, args[0])
			if err != nil {
				return err
			}
			comment, err := a.svc.Client.CreateIssueComment(cmd.Context(), loc.Owner, loc.Repository, number, req)
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(comment)
			}
			a.out.Success("Commented on %s#%s", loc.FullName(), number)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Body, "body", "b", "", "comment text")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

// printIssueRef prints the issue as JSON, or its URL
func printIssueRef(a *app, issue *gitee.Issue) error {
	if a.out.IsJSON() {
		return a.out.JSON(issue)
	}
	if issue.HTMLURL != "" {
		fmt.Fprintln(a.out.Writer(), issue.HTMLURL)
	}
	return nil
}
