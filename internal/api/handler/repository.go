package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/provider"
)

// RepositoryHandler handles repository related HTTP requests
type RepositoryHandler struct {
	clients ClientResolver
}

// NewRepositoryHandler creates a new repository handler
func NewRepositoryHandler(clients ClientResolver) *RepositoryHandler {
	return &RepositoryHandler{clients: clients}
}

// ListRepositoriesResponse represents the response for listing repositories
type ListRepositoriesResponse struct {
	Data  []provider.Repository `json:"data"`
	Total int                   `json:"total"`
	// Degraded is set when watched repositories could not be listed
	Degraded bool   `json:"degraded,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// ListRepositories handles GET /api/v1/repositories
// Query params: watched (default true) includes watched repositories.
func (h *RepositoryHandler) ListRepositories(c *gin.Context) {
	includeWatched := c.DefaultQuery("watched", "true") != "false"
	client := h.clients.Client(c)

	available, err := client.ListAvailableRepositories(c.Request.Context(), includeWatched)
	if err != nil {
		respondError(c, err)
		return
	}

	server := client.Server()
	items := lo.Map(available.Associated, func(r gitee.Repository, _ int) provider.Repository {
		return gitee.Summary(server, r, provider.SourceAssociated)
	})
	items = append(items, lo.Map(available.Watched, func(r gitee.Repository, _ int) provider.Repository {
		return gitee.Summary(server, r, provider.SourceWatched)
	})...)

	resp := ListRepositoriesResponse{Data: items, Total: len(items), Degraded: available.Degraded()}
	if available.WatchedErr != nil {
		resp.Warning = "watched repositories unavailable: " + available.WatchedErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetRepository handles GET /api/v1/repos/:owner/:repo
func (h *RepositoryHandler) GetRepository(c *gin.Context) {
	owner, repo := repoParams(c)
	r, err := h.clients.Client(c).GetRepository(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListBranches handles GET /api/v1/repos/:owner/:repo/branches
func (h *RepositoryHandler) ListBranches(c *gin.Context) {
	owner, repo := repoParams(c)
	branches, err := h.clients.Client(c).ListBranches(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, branches)
}

// ListForks handles GET /api/v1/repos/:owner/:repo/forks
func (h *RepositoryHandler) ListForks(c *gin.Context) {
	owner, repo := repoParams(c)
	forks, err := h.clients.Client(c).ListForks(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, forks)
}

// CreateFork handles POST /api/v1/repos/:owner/:repo/forks
func (h *RepositoryHandler) CreateFork(c *gin.Context) {
	owner, repo := repoParams(c)
	fork, err := h.clients.Client(c).CreateFork(c.Request.Context(), owner, repo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fork)
}
