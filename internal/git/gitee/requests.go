package gitee

// Request bodies. Each is validated before it is sent.

// CreateIssueRequest opens an issue
type CreateIssueRequest struct {
	Title    string   `json:"title" validate:"required,max=255"`
	Body     string   `json:"body,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Labels   []string `json:"labels,omitempty" validate:"dive,required"`
}

// UpdateIssueRequest changes the state of an issue
type UpdateIssueRequest struct {
	State string `json:"state" validate:"required,oneof=open closed"`
}

// CreatePullRequestRequest opens a pull request from head into base
type CreatePullRequestRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Head  string `json:"head" validate:"required"`
	Base  string `json:"base" validate:"required"`
	Body  string `json:"body,omitempty"`
}

// Merge methods
const (
	MergeMethodMerge  = "merge"
	MergeMethodSquash = "squash"
	MergeMethodRebase = "rebase"
)

// MergePullRequestRequest merges a pull request
type MergePullRequestRequest struct {
	MergeMethod   string `json:"merge_method,omitempty" validate:"omitempty,oneof=merge squash rebase"`
	SHA           string `json:"sha,omitempty"`
	CommitTitle   string `json:"commit_title,omitempty"`
	CommitMessage string `json:"commit_message,omitempty"`
}

// GistFileContent is the content of one file in a new gist
type GistFileContent struct {
	Content string `json:"content" validate:"required"`
}

// CreateGistRequest creates a gist
type CreateGistRequest struct {
	Description string                     `json:"description,omitempty"`
	Public      bool                       `json:"public"`
	Files       map[string]GistFileContent `json:"files" validate:"min=1,dive"`
}

// CreateCommentRequest adds a comment
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

// CreateAuthorizationRequest asks for a new access token
type CreateAuthorizationRequest struct {
	Scopes  []string `json:"scopes,omitempty"`
	Note    string   `json:"note" validate:"required"`
	NoteURL string   `json:"note_url,omitempty" validate:"omitempty,url"`
}

// DefaultScopes are requested by login
var DefaultScopes = []string{"user_info", "projects", "pull_requests", "issues", "notes", "gists"}
