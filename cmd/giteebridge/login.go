package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/idgen"
)

// newLoginCmd exchanges a login and password for an access token. The token
// is printed, never written to disk.
func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		login         string
		passwordStdin bool
		note          string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create an access token with your login and password",
		Long: `Create a personal access token on the configured server with your login
and password. The token is printed once; export it as GITEE_TOKEN or put it
in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			if login == "" {
				login = a.cfg.Gitee.Login
			}
			if note == "" {
				note = defaultTokenNote()
			}

			var password string
			if passwordStdin {
				if login == "" {
					return errors.ErrValidation("--login is required with --password-stdin")
				}
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			} else if err := promptCredentials(&login, &password, &note); err != nil {
				return err
			}

			auth, err := a.svc.Client.CreateAuthorization(cmd.Context(), login, password, &gitee.CreateAuthorizationRequest{
				Scopes: gitee.DefaultScopes,
				Note:   note,
			})
			if err != nil {
				return err
			}
			if a.out.IsJSON() {
				return a.out.JSON(auth)
			}

			w := a.out.Writer()
			a.out.Success("Logged in to %s as %s", a.server().HostPort(), login)
			fmt.Fprintf(w, "\nAccess token: %s\n\n", color.CyanString(auth.Token))
			fmt.Fprintln(w, "Use it in this shell with:")
			fmt.Fprintf(w, "  export GITEE_TOKEN=%s\n", auth.Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&login, "login", "l", "", "account login (default: gitee.login)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	cmd.Flags().StringVar(&note, "note", "", "label of the new token")
	return cmd
}

// defaultTokenNote names the token after the machine; the service rejects
// duplicate notes, so a unique suffix is added
func defaultTokenNote() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return idgen.NewAuthorizationNote(consts.ServiceName + "@" + host)
}

// readPassword reads the first line of r
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return "", errors.Wrap(errors.ErrCodeValidation, "failed to read password", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.ErrValidation("empty password")
	}
	return password, nil
}

// promptCredentials asks for the login and password interactively
func promptCredentials(login, password, note *string) error {
	notEmpty := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", what)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Login").Value(login).Validate(notEmpty("login")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(notEmpty("password")),
			huh.NewInput().Title("Token note").Value(note),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return errors.Wrap(errors.ErrCodeCancelled, "login cancelled", err)
		}
		return errors.Wrap(errors.ErrCodeValidation, "failed to read credentials", err)
	}
	return nil
}
