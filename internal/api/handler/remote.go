package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/internal/git/prurl"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
)

// RemoteHandler parses remote and browser URLs of the hosting service
type RemoteHandler struct {
	server remoteurl.ServerPath
	parser *prurl.Parser
}

// NewRemoteHandler creates a handler that resolves URLs against server
func NewRemoteHandler(server remoteurl.ServerPath) *RemoteHandler {
	return &RemoteHandler{server: server, parser: prurl.NewParser(server.HostPort())}
}

// ParseRemoteRequest represents the request body for parsing a URL
type ParseRemoteRequest struct {
	URL string `json:"url" binding:"required"`
}

// ParseRemoteResponse describes the repository a URL points at
type ParseRemoteResponse struct {
	Kind        string `json:"kind"`
	Host        string `json:"host"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Number      int    `json:"number,omitempty"`
	IssueNumber string `json:"issue_number,omitempty"`
	Hosted      bool   `json:"hosted"`
	CloneURL    string `json:"clone_url"`
	SSHURL      string `json:"ssh_url"`
	WebURL      string `json:"web_url"`
	APIURL      string `json:"api_url"`
}

// KindRemote marks git remotes and owner/repo short forms
const KindRemote = "remote"

// ParseRemote handles POST /api/v1/remote/parse
// Accepts browser URLs of repositories, pull requests and issues, git
// remotes (https, ssh, scp form) and the owner/repo short form.
func (h *RemoteHandler) ParseRemote(c *gin.Context) {
	var req ParseRemoteRequest
	if !bindJSON(c, &req) {
		return
	}
	raw := strings.TrimSpace(req.URL)

	resp := ParseRemoteResponse{Kind: KindRemote}
	if info, err := h.parser.Parse(raw); err == nil {
		resp.Kind = string(info.Kind)
		resp.Host, resp.Owner, resp.Repo = info.Host, info.Owner, info.Repo
		resp.Number, resp.IssueNumber = info.Number, info.IssueNumber
	} else if loc, ok := remoteurl.ParseRepositoryArg(raw, h.server); ok {
		resp.Host, resp.Owner, resp.Repo = loc.Host, loc.Owner, loc.Repository
	} else {
		badRequest(c, "Not a repository URL: "+raw)
		return
	}

	resp.Hosted = remoteurl.IsHostedURL(resp.Host, h.server.Host)
	if resp.Hosted {
		resp.CloneURL = remoteurl.BuildCloneURL(h.server, resp.Owner, resp.Repo)
		resp.SSHURL = remoteurl.SSHCloneURL(h.server, resp.Owner, resp.Repo)
		resp.WebURL = remoteurl.WebURL(h.server, resp.Owner, resp.Repo)
		resp.APIURL = h.server.APIURL()
	}
	c.JSON(http.StatusOK, resp)
}
