package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/output"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// newGistCmd groups the gist commands
func newGistCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gist",
		Short: "Work with code snippets",
	}
	cmd.AddCommand(newGistListCmd(opts), newGistCreateCmd(opts))
	return cmd
}

func newGistListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your gists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			gists, err := a.svc.Client.ListGists(cmd.Context())
			if err != nil {
				return err
			}
			rows := lo.Map(gists, func(g gitee.Gist, _ int) []string {
				files := lo.Keys(g.Files)
				sort.Strings(files)
				return []string{g.ID, output.Truncate(g.Description, 40), strings.Join(files, ", "), output.YesNo(g.Public)}
			})
			return a.out.Table([]string{"ID", "DESCRIPTION", "FILES", "PUBLIC"}, rows, gists)
		},
	}
}

func newGistCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		req      gitee.CreateGistRequest
		filename string
	)

	cmd := &cobra.Command{
		Use:   "create <file>...",
		Short: "Create a gist from files",
		Long: `Create a gist from one or more files. Use "-" to read standard input,
named by --filename.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readGistFiles(cmd.InOrStdin(), args, filename)
			if err != nil {
				return err
			}
			a, err := loadIssueApp(cmd, opts)
			if err != nil {
				return err
			}
			req.Files = files
			gist, err := a.svc.Client.CreateGist(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(gist)
			}
			a.out.Success("Created gist %s", gist.ID)
			if gist.HTMLURL != "" {
				a.out.Success("%s", gist.HTMLURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Description, "desc", "d", "", "gist description")
	cmd.Flags().BoolVarP(&req.Public, "public", "p", false, "make the gist public")
	cmd.Flags().StringVarP(&filename, "filename", "f", "snippet.txt", "file name for standard input")
	return cmd
}

// readGistFiles reads the named files, "-" meaning stdin
func readGistFiles(stdin io.Reader, paths []string, stdinName string) (map[string]gitee.GistFileContent, error) {
	files := make(map[string]gitee.GistFileContent, len(paths))
	for _, p := range paths {
		var (
			name string
			data []byte
			err  error
		)
		if p == "-" {
			name = stdinName
			data, err = io.ReadAll(stdin)
		} else {
			name = filepath.Base(p)
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeValidation, "failed to read "+p, err)
		}
		if _, dup := files[name]; dup {
			return nil, errors.ErrValidation("duplicate file name " + name)
		}
		files[name] = gitee.GistFileContent{Content: string(data)}
	}
	return files, nil
}
