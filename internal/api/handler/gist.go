package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/internal/git/gitee"
)

// GistHandler handles gist related HTTP requests
type GistHandler struct {
	clients ClientResolver
}

// NewGistHandler creates a new gist handler
func NewGistHandler(clients ClientResolver) *GistHandler {
	return &GistHandler{clients: clients}
}

// ListGists handles GET /api/v1/gists
func (h *GistHandler) ListGists(c *gin.Context) {
	gists, err := h.clients.Client(c).ListGists(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, gists)
}

// CreateGist handles POST /api/v1/gists
func (h *GistHandler) CreateGist(c *gin.Context) {
	var req gitee.CreateGistRequest
	if !bindJSON(c, &req) {
		return
	}
	gist, err := h.clients.Client(c).CreateGist(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gist)
}
