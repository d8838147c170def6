package gitee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
)

// Records decoded from the API. Fields tagged validate:"required" are
// mandatory: a response missing one fails to decode instead of producing a
// half-filled value.

// User is an account on the hosting service
type User struct {
	ID        int64             `json:"id"`
	Login     string            `json:"login" validate:"required"`
	Name      string            `json:"name,omitempty"`
	Email     string            `json:"email,omitempty"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	HTMLURL   string            `json:"html_url,omitempty"`
	CreatedAt *github.Timestamp `json:"created_at,omitempty"`
}

// Permissions of the current user on a repository
type Permissions struct {
	Admin bool `json:"admin"`
	Push  bool `json:"push"`
	Pull  bool `json:"pull"`
}

// Repository is a hosted repository
type Repository struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name" validate:"required"`
	FullName        string            `json:"full_name" validate:"required"`
	Owner           *User             `json:"owner" validate:"required"`
	Description     string            `json:"description,omitempty"`
	Private         bool              `json:"private"`
	Fork            bool              `json:"fork"`
	HTMLURL         string            `json:"html_url,omitempty"`
	SSHURL          string            `json:"ssh_url,omitempty"`
	CloneURL        string            `json:"clone_url,omitempty"`
	DefaultBranch   string            `json:"default_branch,omitempty"`
	StargazersCount int               `json:"stargazers_count"`
	ForksCount      int               `json:"forks_count"`
	WatchersCount   int               `json:"watchers_count"`
	Permissions     *Permissions      `json:"permission,omitempty"`
	Parent          *Repository       `json:"parent,omitempty"`
	CreatedAt       *github.Timestamp `json:"created_at,omitempty"`
	UpdatedAt       *github.Timestamp `json:"updated_at,omitempty"`
	PushedAt        *github.Timestamp `json:"pushed_at,omitempty"`
}

// BranchCommit is the head commit reference of a branch
type BranchCommit struct {
	SHA string `json:"sha"`
	URL string `json:"url,omitempty"`
}

// Branch is a repository branch
type Branch struct {
	Name      string        `json:"name" validate:"required"`
	Commit    *BranchCommit `json:"commit,omitempty"`
	Protected bool          `json:"protected"`
}

// Label is an issue label
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// IssueNumber identifies an issue within a repository. The service uses
// alphanumeric identifiers such as "I1ABCD" and older servers send plain
// numbers, so both JSON forms are accepted.
type IssueNumber string

// UnmarshalJSON accepts a JSON string or number.
func (n *IssueNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = IssueNumber(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("issue number: %w", err)
	}
	*n = IssueNumber(num.String())
	return nil
}

func (n IssueNumber) String() string { return string(n) }

// IssueNumberFromInt converts a numeric issue id.
func IssueNumberFromInt(n int) IssueNumber {
	return IssueNumber(strconv.Itoa(n))
}

// Issue states
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
	StateMerged = "merged"
)

// Issue is a repository issue
type Issue struct {
	ID        int64             `json:"id"`
	Number    IssueNumber       `json:"number" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	Body      string            `json:"body,omitempty"`
	State     string            `json:"state" validate:"required"`
	User      *User             `json:"user,omitempty"`
	Assignee  *User             `json:"assignee,omitempty"`
	Labels    []Label           `json:"labels,omitempty" validate:"dive"`
	Comments  int               `json:"comments"`
	HTMLURL   string            `json:"html_url,omitempty"`
	CreatedAt *github.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *github.Timestamp `json:"updated_at,omitempty"`
	ClosedAt  *github.Timestamp `json:"finished_at,omitempty"`
}

// IsOpen reports whether the issue is open
func (i *Issue) IsOpen() bool { return i.State == StateOpen }

// IssueComment is a comment on an issue or pull request
type IssueComment struct {
	ID        int64             `json:"id" validate:"required"`
	Body      string            `json:"body"`
	User      *User             `json:"user,omitempty"`
	CreatedAt *github.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *github.Timestamp `json:"updated_at,omitempty"`
}

// PullRequestRef is the head or base side of a pull request
type PullRequestRef struct {
	Label string      `json:"label,omitempty"`
	Ref   string      `json:"ref" validate:"required"`
	SHA   string      `json:"sha,omitempty"`
	User  *User       `json:"user,omitempty"`
	Repo  *Repository `json:"repo,omitempty"`
}

// PullRequest is a pull request
type PullRequest struct {
	ID        int64             `json:"id"`
	Number    int               `json:"number" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	Body      string            `json:"body,omitempty"`
	State     string            `json:"state" validate:"required"`
	HTMLURL   string            `json:"html_url,omitempty"`
	DiffURL   string            `json:"diff_url,omitempty"`
	Head      *PullRequestRef   `json:"head" validate:"required"`
	Base      *PullRequestRef   `json:"base" validate:"required"`
	User      *User             `json:"user,omitempty"`
	Mergeable *bool             `json:"mergeable,omitempty"`
	Merged    bool              `json:"merged"`
	CreatedAt *github.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *github.Timestamp `json:"updated_at,omitempty"`
	MergedAt  *github.Timestamp `json:"merged_at,omitempty"`
	ClosedAt  *github.Timestamp `json:"closed_at,omitempty"`
}

// CommitAuthor is the git identity of a commit
type CommitAuthor struct {
	Name  string            `json:"name,omitempty"`
	Email string            `json:"email,omitempty"`
	Date  *github.Timestamp `json:"date,omitempty"`
}

// CommitDetail is the git data of a commit
type CommitDetail struct {
	Message string        `json:"message"`
	Author  *CommitAuthor `json:"author,omitempty"`
}

// Commit is a commit listed on a pull request
type Commit struct {
	SHA     string        `json:"sha" validate:"required"`
	HTMLURL string        `json:"html_url,omitempty"`
	Commit  *CommitDetail `json:"commit,omitempty"`
	Author  *User         `json:"author,omitempty"`
}

// Summary returns the first line of the commit message
func (c *Commit) Summary() string {
	if c.Commit == nil {
		return ""
	}
	summary, _, _ := strings.Cut(c.Commit.Message, "\n")
	return summary
}

// GistFile is one file of a gist
type GistFile struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
	RawURL   string `json:"raw_url,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// Gist is a code snippet
type Gist struct {
	ID          string              `json:"id" validate:"required"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	HTMLURL     string              `json:"html_url,omitempty"`
	Files       map[string]GistFile `json:"files"`
	Owner       *User               `json:"owner,omitempty"`
	CreatedAt   *github.Timestamp   `json:"created_at,omitempty"`
}

// Authorization is an access token issued for a login
type Authorization struct {
	ID        int64             `json:"id"`
	Token     string            `json:"token" validate:"required"`
	Scopes    []string          `json:"scopes,omitempty"`
	Note      string            `json:"note,omitempty"`
	CreatedAt *github.Timestamp `json:"created_at,omitempty"`
}

// MergeResult is the outcome of merging a pull request
type MergeResult struct {
	SHA     string `json:"sha,omitempty"`
	Merged  bool   `json:"merged"`
	Message string `json:"message,omitempty"`
}
