package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueI1 = `{"id":5,"number":"I1ABCD","title":"Crash on start","state":"open","user":{"login":"bob"}}`

func setupIssueRouter(up *fakeUpstream) http.Handler {
	h := NewIssueHandler(staticClients(up))
	r := SetupTestRouter()
	r.GET("/api/v1/repos/:owner/:repo/issues", h.ListIssues)
	r.POST("/api/v1/repos/:owner/:repo/issues", h.CreateIssue)
	r.GET("/api/v1/repos/:owner/:repo/issues/:number", h.GetIssue)
	r.PATCH("/api/v1/repos/:owner/:repo/issues/:number", h.UpdateIssueState)
	r.GET("/api/v1/repos/:owner/:repo/issues/:number/comments", h.ListComments)
	r.POST("/api/v1/repos/:owner/:repo/issues/:number/comments", h.CreateComment)
	return r
}

func TestIssueHandler(t *testing.T) {
	up := newFakeUpstream(map[string]route{
		"GET /api/v3/repos/alice/a/issues":                  {body: "[" + issueI1 + "]"},
		"POST /api/v3/repos/alice/a/issues":                 {status: http.StatusCreated, body: issueI1},
		"GET /api/v3/repos/alice/a/issues/I1ABCD":           {body: issueI1},
		"PATCH /api/v3/repos/alice/a/issues/I1ABCD":         {body: `{"id":5,"number":"I1ABCD","title":"Crash on start","state":"closed"}`},
		"GET /api/v3/repos/alice/a/issues/I1ABCD/comments":  {body: `[{"id":1,"body":"same here"}]`},
		"POST /api/v3/repos/alice/a/issues/I1ABCD/comments": {status: http.StatusCreated, body: `{"id":2,"body":"fixed"}`},
	})
	r := setupIssueRouter(up)

	w := serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/issues?state=all", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"total": 1})
	assert.Contains(t, up.last().URL, "state=all")

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/issues/I1ABCD", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"number": "I1ABCD", "state": "open"})

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/repos/alice/a/issues", map[string]any{"title": "Crash on start"}))
	AssertJSONResponse(t, w, http.StatusCreated, map[string]any{"title": "Crash on start"})

	w = serve(r, CreateTestRequest(http.MethodPatch, "/api/v1/repos/alice/a/issues/I1ABCD", map[string]any{"state": "closed"}))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"state": "closed"})
	var sent map[string]any
	require.NoError(t, json.Unmarshal(up.last().Body, &sent))
	assert.Equal(t, "closed", sent["state"])

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/repos/alice/a/issues/I1ABCD/comments", nil))
	AssertJSONResponse(t, w, http.StatusOK, map[string]any{"total": 1})

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/repos/alice/a/issues/I1ABCD/comments", map[string]any{"body": "fixed"}))
	AssertJSONResponse(t, w, http.StatusCreated, map[string]any{"body": "fixed"})
}

func TestIssueHandler_Validation(t *testing.T) {
	up := newFakeUpstream(nil)
	r := setupIssueRouter(up)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"unknown state filter", http.MethodGet, "/api/v1/repos/alice/a/issues?state=draft", nil},
		{"missing title", http.MethodPost, "/api/v1/repos/alice/a/issues", map[string]any{"body": "x"}},
		{"bad target state", http.MethodPatch, "/api/v1/repos/alice/a/issues/I1", map[string]any{"state": "progressing"}},
		{"empty comment", http.MethodPost, "/api/v1/repos/alice/a/issues/I1/comments", map[string]any{"body": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, CreateTestRequest(tt.method, tt.path, tt.body))
			AssertErrorResponse(t, w, http.StatusBadRequest)
		})
	}
	assert.Empty(t, up.requests, "invalid requests never reach the service")
}
