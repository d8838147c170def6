package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const pull3 = `{"id":30,"number":3,"title":"Add docs","state":"open",
	"head":{"ref":"docs","sha":"h1"},"base":{"ref":"master","sha":"b1"}}`

func setupPullRouter(up *fakeUpstream) http.Handler {
	h := NewPullRequestHandler(staticClients(up))
	r := SetupTestRouter()
	r.GET("/api/v1/repos/:owner/:repo/pulls", h.ListPullRequests)
	r.POST("/api/v1/repos/:owner/:repo/pulls", h.CreatePullRequest)
	r.GET("/api/v1/repos/:owner/:repo/pulls/:number", h.GetPullRequest)
	r.PUT("/api/v1/repos/:owner/:repo/pulls/:number/merge", h.MergePullRequest)
	r.GET("/api/v1/repos/:owner/:repo/pulls/:number/commits", h.ListCommits)
	return r
}

func TestPullRequestHandler(t *testing.T) {
	up := newFakeUpstream(map[string]route{
		"GET /api/v3/repos/alice/a/pulls":           {body: "[" + pull3 + "]"},
		"POST /api/v3/repos/alice/a/pulls":          {status: http.StatusCreated, body: pull3},
		"GET /api/v3/repos/alice/a/pulls/3":         {body: pull3},
		"PUT /api/v3/repos/alice/a/pulls/3/merge":   {body: `{"sha":"m1","merged":true,"message":"merged"}`},
		"GET /api/v3/repos/alice/a/pulls/3/commits": {body: `[{"sha":"c1","commit":{"message":"docs"}}]`},
	})
	r := setupPullRouter(up)

	w := serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/pulls", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"total": 1})

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/pulls/3", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"title": "Add docs"})

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/repos/alice/a/pulls",
		map[string]any{"title": "Add docs", "head": "docs", "base": "master"}))
	AssertJSONResponse(t, w, http.StatusCreated, map[string]any{"number": float64(3)})

	w = serve(r, CreateTestRequest(http.MethodPut, "/api/v1/repos/alice/a/pulls/3/merge", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"merged": true})

	w = serve(r, CreateTestRequest(http.MethodPut, "/api/v1/repos/alice/a/pulls/3/merge",
		map[string]any{"merge_method": "squash"}))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"sha": "m1"})
	assert.Contains(t, string(up.last().Body), "squash")

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/pulls/3/commits", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"total": 1})
}

func TestPullRequestHandler_Validation(t *testing.T) {
	up := newFakeUpstream(nil)
	r := setupPullRouter(up)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"non numeric number", http.MethodGet, "/api/v1/repos/alice/a/pulls/abc", nil},
		{"zero number", http.MethodGet, "/api/v1/repos/alice/a/pulls/0/commits", nil},
		{"missing base", http.MethodPost, "/api/v1/repos/alice/a/pulls", map[string]any{"title": "x", "head": "docs"}},
		{"unknown merge method", http.MethodPut, "/api/v1/repos/alice/a/pulls/3/merge", map[string]any{"merge_method": "octopus"}},
		{"unknown state", http.MethodGet, "/api/v1/repos/alice/a/pulls?state=draft", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, CreateTestRequest(tt.method, tt.path, tt.body))
			AssertErrorResponse(t, w, http.StatusBadRequest)
		})
	}
	assert.Empty(t, up.requests)
}
