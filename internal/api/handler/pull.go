package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/internal/git/gitee"
)

// PullRequestHandler handles pull request related HTTP requests
type PullRequestHandler struct {
	clients ClientResolver
}

// NewPullRequestHandler creates a new pull request handler
func NewPullRequestHandler(clients ClientResolver) *PullRequestHandler {
	return &PullRequestHandler{clients: clients}
}

// ListPullRequests handles GET /api/v1/repos/:owner/:repo/pulls
// Query params: state (open, closed, merged, all)
func (h *PullRequestHandler) ListPullRequests(c *gin.Context) {
	owner, repo := repoParams(c)
	pulls, err := h.clients.Client(c).ListPullRequests(c.Request.Context(), owner, repo, c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, pulls)
}

// GetPullRequest handles GET /api/v1/repos/:owner/:repo/pulls/:number
func (h *PullRequestHandler) GetPullRequest(c *gin.Context) {
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	owner, repo := repoParams(c)
	pr, err := h.clients.Client(c).GetPullRequest(c.Request.Context(), owner, repo, number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

// CreatePullRequest handles POST /api/v1/repos/:owner/:repo/pulls
func (h *PullRequestHandler) CreatePullRequest(c *gin.Context) {
	var req gitee.CreatePullRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, repo := repoParams(c)
	pr, err := h.clients.Client(c).CreatePullRequest(c.Request.Context(), owner, repo, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pr)
}

// MergePullRequest handles PUT /api/v1/repos/:owner/:repo/pulls/:number/merge
// The body is optional.
func (h *PullRequestHandler) MergePullRequest(c *gin.Context) {
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	var req gitee.MergePullRequestRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	owner, repo := repoParams(c)
	result, err := h.clients.Client(c).MergePullRequest(c.Request.Context(), owner, repo, number, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListCommits handles GET /api/v1/repos/:owner/:repo/pulls/:number/commits
func (h *PullRequestHandler) ListCommits(c *gin.Context) {
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	owner, repo := repoParams(c)
	commits, err := h.clients.Client(c).ListPullRequestCommits(c.Request.Context(), owner, repo, number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, commits)
}
