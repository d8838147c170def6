package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/output"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// newURLCmd groups the offline URL helpers
func newURLCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Parse and build repository URLs",
	}
	cmd.AddCommand(newURLParseCmd(opts), newURLCloneCmd(opts), newURLAPICmd(opts))
	return cmd
}

func newURLParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <remote-url>",
		Short: "Split a git remote into host, owner and repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := output.New(cmd.OutOrStdout(), opts.output)
			if err != nil {
				return err
			}
			loc, ok := remoteurl.ParseRemote(args[0])
			if !ok {
				return errors.New(errors.ErrCodeRemoteURL, "not a repository remote: "+args[0])
			}
			return out.Detail(loc.FullName(), []output.Field{
				{Name: "Host", Value: loc.Host},
				{Name: "Owner", Value: loc.Owner},
				{Name: "Repository", Value: loc.Repository},
			}, "", loc)
		},
	}
}

func newURLCloneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <owner/repo | url>",
		Short: "Print the clone and web URLs of a repository on the configured server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			loc, err := a.resolveRepo(args[0])
			if err != nil {
				return err
			}
			server := a.server()
			urls := struct {
				HTTPS string `json:"https"`
				SSH   string `json:"ssh"`
				Web   string `json:"web"`
			}{
				HTTPS: remoteurl.BuildCloneURL(server, loc.Owner, loc.Repository),
				SSH:   remoteurl.SSHCloneURL(server, loc.Owner, loc.Repository),
				Web:   remoteurl.WebURL(server, loc.Owner, loc.Repository),
			}
			return a.out.Detail(loc.FullName(), []output.Field{
				{Name: "HTTPS", Value: urls.HTTPS},
				{Name: "SSH", Value: urls.SSH},
				{Name: "Web", Value: urls.Web},
			}, "", urls)
		},
	}
}

func newURLAPICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "api [host | url]",
		Short: "Print the REST API base URL of a server",
		Long: `Print the REST API base URL of a server. Without an argument the
default host ` + "git.oschina.net" + ` is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := output.New(cmd.OutOrStdout(), opts.output)
			if err != nil {
				return err
			}
			var host string
			if len(args) == 1 {
				host = args[0]
			}
			api := remoteurl.APIURL(host)
			if out.IsJSON() {
				return out.JSON(map[string]string{"api_url": api})
			}
			fmt.Fprintln(out.Writer(), api)
			return nil
		},
	}
}
