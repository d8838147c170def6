package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/internal/shared"
	"github.com/verustcode/giteebridge/pkg/errors"
)

const testConfig = `gitee:
  host: https://git.example.com
  login: alice
  token: secret-token
logging:
  level: info
  output: stderr
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// run executes the command line and returns stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GITEE_HOST", "")
	t.Setenv("GITEE_TOKEN", "")
	t.Setenv("GITEE_LOGIN", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testApp(t *testing.T) *app {
	server := remoteurl.MustParseServerPath("https://git.example.com")
	return &app{
		svc:     &shared.Services{Options: &provider.ProviderOptions{Server: server}},
		workDir: t.TempDir(),
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled", errors.New(errors.ErrCodeCancelled, "interrupted"), errors.ExitCodeCancelled},
		{"context cancelled", context.Canceled, errors.ExitCodeCancelled},
		{"config invalid", errors.New(errors.ErrCodeConfigInvalid, "bad"), errors.ExitCodeConfigValidation},
		{"token missing", errors.New(errors.ErrCodeTokenMissing, "no token"), errors.ExitCodeConfigValidation},
		{"remote status", &rest.StatusError{Method: "GET", URL: "https://x/api/v3/user", StatusCode: 500}, 1},
		{"plain error", fmt.Errorf("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, consts.ProjectName+" "+consts.Version)
	assert.Contains(t, out, "Git Commit:")
}

func TestURLAPI(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "https://git.oschina.net/api/v3"},
		{[]string{"Gitee.com"}, "https://gitee.com/api/v3"},
		{[]string{"http://git.example.com:8080/"}, "http://git.example.com:8080/api/v3"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, "", append([]string{"url", "api"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestURLParse(t *testing.T) {
	out, err := run(t, "", "url", "parse", "git@git.oschina.net:owner/repo.git", "-o", "json")
	require.NoError(t, err)

	var loc remoteurl.RemoteLocation
	require.NoError(t, json.Unmarshal([]byte(out), &loc))
	assert.Equal(t, remoteurl.RemoteLocation{Host: "git.oschina.net", Owner: "owner", Repository: "repo"}, loc)

	_, err = run(t, "", "url", "parse", "https://git.oschina.net/owner")
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteURL))
	assert.Equal(t, 1, exitCode(err))

	_, err = run(t, "", "url", "parse", "x", "-o", "yaml")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestURLClone(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, err := run(t, "", "url", "clone", "alice/a", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "https://git.example.com/alice/a")
	assert.Contains(t, out, "git@git.example.com:alice/a.git")

	out, err = run(t, "", "url", "clone", "https://git.example.com/bob/b/pulls/3", "-c", cfg, "-o", "json")
	require.NoError(t, err)
	var urls map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &urls))
	assert.Equal(t, "https://git.example.com/bob/b", urls["web"])
}

func TestCredentialGet(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, err := run(t, "protocol=https\nhost=git.example.com\npath=alice/a.git\n\n", "credential", "get", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "username=alice\n")
	assert.Contains(t, out, "password=secret-token\n")

	out, err = run(t, "protocol=https\nhost=github.com\n\n", "credential", "get", "-c", cfg)
	require.NoError(t, err)
	assert.Empty(t, out, "foreign hosts are left to other helpers")

	out, err = run(t, "protocol=https\nhost=git.example.com\nusername=alice\npassword=x\n\n", "credential", "store", "-c", cfg)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCommands_RequireToken(t *testing.T) {
	cfg := writeConfig(t, "gitee:\n  host: https://git.example.com\n")

	for _, args := range [][]string{
		{"repos"},
		{"issue", "list", "-R", "alice/a"},
		{"pr", "list", "-R", "alice/a"},
		{"gist", "list"},
	} {
		_, err := run(t, "", append(args, "-c", cfg)...)
		assert.True(t, errors.HasCode(err, errors.ErrCodeTokenMissing), "%v: %v", args, err)
		assert.Equal(t, errors.ExitCodeConfigValidation, exitCode(err))
	}
}

func TestResolveRepo(t *testing.T) {
	a := testApp(t)

	loc, err := a.resolveRepo("alice/a.git")
	require.NoError(t, err)
	assert.Equal(t, "alice/a", loc.FullName())
	assert.Equal(t, "git.example.com", loc.Host)

	loc, err = a.resolveRepo("https://git.example.com/bob/b/issues/I1ABCD")
	require.NoError(t, err)
	assert.Equal(t, "bob/b", loc.FullName())

	loc, err = a.resolveRepo("git@git.example.com:carol/c.git")
	require.NoError(t, err)
	assert.Equal(t, "carol/c", loc.FullName())

	_, err = a.resolveRepo("not a repo")
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteURL))

	_, err = a.resolveRepo("")
	assert.True(t, errors.HasCode(err, errors.ErrCodeGitNotFound), "temp dir has no remotes")
}

func TestPullTarget(t *testing.T) {
	a := testApp(t)

	loc, number, err := pullTarget(a, "", "https://git.example.com/alice/a/pulls/12/files")
	require.NoError(t, err)
	assert.Equal(t, "alice/a", loc.FullName())
	assert.Equal(t, 12, number)

	loc, number, err = pullTarget(a, "bob/b", "!7")
	require.NoError(t, err)
	assert.Equal(t, "bob/b", loc.FullName())
	assert.Equal(t, 7, number)

	_, _, err = pullTarget(a, "bob/b", "0")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, _, err = pullTarget(a, "", "https://git.example.com/alice/a/issues/I1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestIssueTarget(t *testing.T) {
	a := testApp(t)

	loc, number, err := issueTarget(a, "", "https://git.example.com/alice/a/issues/I1ABCD")
	require.NoError(t, err)
	assert.Equal(t, "alice/a", loc.FullName())
	assert.Equal(t, gitee.IssueNumber("I1ABCD"), number)

	_, number, err = issueTarget(a, "alice/a", "#I9")
	require.NoError(t, err)
	assert.Equal(t, gitee.IssueNumber("I9"), number)

	_, _, err = issueTarget(a, "alice/a", " # ")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestReadGistFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0600))

	files, err := readGistFiles(strings.NewReader("hello"), []string{path, "-"}, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, map[string]gitee.GistFileContent{
		"main.go":  {Content: "package main\n"},
		"note.txt": {Content: "hello"},
	}, files)

	_, err = readGistFiles(strings.NewReader(""), []string{path, path}, "x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = readGistFiles(strings.NewReader(""), []string{filepath.Join(dir, "missing")}, "x")
	assert.Error(t, err)
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readPassword(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New(errors.ErrCodeTokenMissing, "access token required"))
	assert.Contains(t, buf.String(), "access token required")
	assert.Contains(t, buf.String(), "giteebridge login")
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "-", userLogin(nil))
	assert.Equal(t, "alice", userLogin(&gitee.User{Login: "alice"}))
	assert.Equal(t, "-", formatTime(nil))
}

func TestDefaultTokenNote(t *testing.T) {
	a, b := defaultTokenNote(), defaultTokenNote()
	assert.True(t, strings.HasPrefix(a, consts.ServiceName+"@"))
	assert.NotEqual(t, a, b, "notes must be unique")
}
