package main

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/paging"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/output"
)

// newReposCmd lists the repositories available to the user
func newReposCmd(opts *rootOptions) *cobra.Command {
	var (
		limit   int
		watched bool
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List your repositories",
		Long: `List the repositories you own or belong to, followed by the ones you watch.

With --limit only the pages holding the first N owned repositories are
fetched; watched repositories are not merged in that mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			if err := a.requireToken(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("watched") {
				watched = a.cfg.Gitee.IncludeWatched
			}

			repos, err := listRepositories(cmd, a, limit, watched)
			if err != nil {
				return err
			}
			return printRepositories(a.out, repos)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "L", 0, "maximum number of owned repositories to fetch (0 for all)")
	cmd.Flags().BoolVar(&watched, "watched", true, "include watched repositories (default from gitee.include_watched)")
	return cmd
}

func listRepositories(cmd *cobra.Command, a *app, limit int, watched bool) ([]provider.Repository, error) {
	ctx := cmd.Context()
	client := a.svc.Client
	server := client.Server()

	if limit > 0 {
		repos, err := paging.Collect(client.IterateUserRepositories(ctx), limit)
		if err != nil {
			return nil, err
		}
		return lo.Map(repos, func(r gitee.Repository, _ int) provider.Repository {
			return gitee.Summary(server, r, provider.SourceAssociated)
		}), nil
	}

	available, err := client.ListAvailableRepositories(ctx, watched)
	if err != nil {
		return nil, err
	}
	if available.Degraded() {
		a.warn("watched repositories unavailable: %v", available.WatchedErr)
	}
	repos := lo.Map(available.Associated, func(r gitee.Repository, _ int) provider.Repository {
		return gitee.Summary(server, r, provider.SourceAssociated)
	})
	return append(repos, lo.Map(available.Watched, func(r gitee.Repository, _ int) provider.Repository {
		return gitee.Summary(server, r, provider.SourceWatched)
	})...), nil
}

func printRepositories(out *output.Printer, repos []provider.Repository) error {
	rows := lo.Map(repos, func(r provider.Repository, _ int) []string {
		return []string{r.FullName, r.Source, output.YesNo(r.Private), output.Truncate(r.Description, 50)}
	})
	return out.Table([]string{"NAME", "SOURCE", "PRIVATE", "DESCRIPTION"}, rows, repos)
}
