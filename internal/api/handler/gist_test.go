package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGistHandler(t *testing.T) {
	gist := `{"id":"g1","description":"snippet","public":false,"files":{"main.go":{"content":"package main"}}}`
	up := newFakeUpstream(map[string]route{
		"GET /api/v3/gists":  {body: "[" + gist + "]"},
		"POST /api/v3/gists": {status: http.StatusCreated, body: gist},
	})
	h := NewGistHandler(staticClients(up))
	r := SetupTestRouter()
	r.GET("/api/v1/gists", h.ListGists)
	r.POST("/api/v1/gists", h.CreateGist)

	w := serve(r, CreateTestRequest(http.MethodGet, "/api/v1/gists", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"total": 1})

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/gists", map[string]any{
		"description": "snippet",
		"files":       map[string]any{"main.go": map[string]any{"content": "package main"}},
	}))
	AssertJSONResponse(t, w, http.StatusCreated, map[string]any{"id": "g1"})

	calls := len(up.requests)
	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/gists", map[string]any{"description": "empty"}))
	AssertErrorResponse(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "files")
	assert.Len(t, up.requests, calls)
}
