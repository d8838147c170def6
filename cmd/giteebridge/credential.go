package main

import (
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/internal/git/credential"
	"github.com/verustcode/giteebridge/internal/shared"
)

// newCredentialCmd implements the git credential helper protocol.
// Configure git with:
//
//	git config --global credential.helper "!giteebridge credential"
func newCredentialCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "credential <get | store | erase>",
		Short:     "Git credential helper for the configured server",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{credential.OpGet, credential.OpStore, credential.OpErase},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			helper := credential.NewHelper(a.server(), shared.CredentialSource(&a.cfg.Gitee))
			return helper.Run(cmd.Context(), args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
