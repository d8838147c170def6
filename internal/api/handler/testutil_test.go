// Test utilities shared by the handler tests.

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/giteebridge/internal/api/middleware"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/git/rest"
)

// SetupTestRouter creates a Gin router for testing.
// It sets Gin to test mode and applies the error and token middleware.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(false))
	r.Use(middleware.UpstreamToken())
	return r
}

// CreateTestContext creates a test Gin context with a recorder.
// Returns the context and recorder for assertions.
func CreateTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// CreateTestRequest creates an HTTP request for testing.
func CreateTestRequest(method, url string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	return req
}

// AssertJSONResponse asserts that the response has the expected JSON structure.
func AssertJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	t.Helper()

	// Check status code
	if recorder.Code != expectedStatus {
		t.Errorf("Status code mismatch: got %d, want %d", recorder.Code, expectedStatus)
	}

	// Check content type
	contentType := recorder.Header().Get("Content-Type")
	if contentType != "" && contentType != "application/json" && contentType != "application/json; charset=utf-8" {
		t.Errorf("Content-Type should be application/json, got %s", contentType)
	}

	// If expectedBody is provided, check response body
	if expectedBody != nil {
		var actual map[string]interface{}
		if err := json.Unmarshal(recorder.Body.Bytes(), &actual); err != nil {
			t.Fatalf("Response should be valid JSON: %v", err)
		}

		expectedJSON, err := json.Marshal(expectedBody)
		if err != nil {
			t.Fatalf("Failed to marshal expected body: %v", err)
		}

		var expected map[string]interface{}
		if err := json.Unmarshal(expectedJSON, &expected); err != nil {
			t.Fatalf("Failed to unmarshal expected JSON: %v", err)
		}

		// Compare JSON structures (allowing for additional fields in actual)
		for key, expectedValue := range expected {
			actualValue, exists := actual[key]
			if !exists {
				t.Errorf("Response should contain key: %s", key)
				continue
			}
			if actualValue != expectedValue {
				t.Errorf("Value mismatch for key %s: got %v, want %v", key, actualValue, expectedValue)
			}
		}
	}
}

// AssertErrorResponse asserts that the response is an error response.
// The API uses a standard error format with 'code' and 'message' fields.
func AssertErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if recorder.Code != expectedStatus {
		t.Errorf("Status code mismatch: got %d, want %d", recorder.Code, expectedStatus)
	}

	contentType := recorder.Header().Get("Content-Type")
	if contentType != "" && contentType != "application/json" && contentType != "application/json; charset=utf-8" {
		t.Errorf("Content-Type should be application/json, got %s", contentType)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v", err)
	}

	// Check for standard error response format (code + message)
	// or legacy format (error field)
	_, hasCode := response["code"]
	_, hasMessage := response["message"]
	_, hasError := response["error"]

	if !hasError && !(hasCode && hasMessage) {
		t.Error("Error response should contain either 'error' field or 'code' and 'message' fields")
	}
}

// route is a canned upstream reply
type route struct {
	status int
	body   string
}

// fakeUpstream answers API requests keyed by "METHOD /path" and records them.
// Unknown routes answer 404 like the real service.
type fakeUpstream struct {
	mu       sync.Mutex
	routes   map[string]route
	requests []*rest.Request
}

func newFakeUpstream(routes map[string]route) *fakeUpstream {
	return &fakeUpstream{routes: routes}
}

func (f *fakeUpstream) Execute(ctx context.Context, req *rest.Request) (*rest.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &rest.TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	r, ok := f.routes[req.Method+" "+u.Path]
	if !ok {
		return &rest.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: []byte(`{"message":"Not Found"}`)}, nil
	}
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return &rest.Response{StatusCode: r.status, Header: http.Header{}, Body: []byte(r.body)}, nil
}

func (f *fakeUpstream) last() *rest.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

var testServer = remoteurl.MustParseServerPath("https://gitee.example.com")

// staticClients resolves every request to a client backed by exec
func staticClients(exec rest.Executor) ClientResolver {
	client := gitee.New(testServer, exec)
	return ClientFunc(func(*gin.Context) *gitee.Client { return client })
}

// serve runs req through r and records the response
func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
