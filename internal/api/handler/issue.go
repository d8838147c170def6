package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/internal/git/gitee"
)

// IssueHandler handles issue related HTTP requests
type IssueHandler struct {
	clients ClientResolver
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(clients ClientResolver) *IssueHandler {
	return &IssueHandler{clients: clients}
}

// UpdateIssueStateRequest is the body of PATCH .../issues/:number
type UpdateIssueStateRequest struct {
	State string `json:"state"`
}

func issueNumber(c *gin.Context) gitee.IssueNumber {
	return gitee.IssueNumber(c.Param("number"))
}

// ListIssues handles GET /api/v1/repos/:owner/:repo/issues
// Query params: state (open, closed, all)
func (h *IssueHandler) ListIssues(c *gin.Context) {
	owner, repo := repoParams(c)
	issues, err := h.clients.Client(c).ListIssues(c.Request.Context(), owner, repo, c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, issues)
}

// GetIssue handles GET /api/v1/repos/:owner/:repo/issues/:number
func (h *IssueHandler) GetIssue(c *gin.Context) {
	owner, repo := repoParams(c)
	issue, err := h.clients.Client(c).GetIssue(c.Request.Context(), owner, repo, issueNumber(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// CreateIssue handles POST /api/v1/repos/:owner/:repo/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req gitee.CreateIssueRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, repo := repoParams(c)
	issue, err := h.clients.Client(c).CreateIssue(c.Request.Context(), owner, repo, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// UpdateIssueState handles PATCH /api/v1/repos/:owner/:repo/issues/:number
func (h *IssueHandler) UpdateIssueState(c *gin.Context) {
	var req UpdateIssueStateRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, repo := repoParams(c)
	issue, err := h.clients.Client(c).SetIssueState(c.Request.Context(), owner, repo, issueNumber(c), req.State)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// ListComments handles GET /api/v1/repos/:owner/:repo/issues/:number/comments
func (h *IssueHandler) ListComments(c *gin.Context) {
	owner, repo := repoParams(c)
	comments, err := h.clients.Client(c).ListIssueComments(c.Request.Context(), owner, repo, issueNumber(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, comments)
}

// CreateComment handles POST /api/v1/repos/:owner/:repo/issues/:number/comments
func (h *IssueHandler) CreateComment(c *gin.Context) {
	var req gitee.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	owner, repo := repoParams(c)
	comment, err := h.clients.Client(c).CreateIssueComment(c.Request.Context(), owner, repo, issueNumber(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
