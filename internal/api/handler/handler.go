// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/verustcode/giteebridge/internal/api/middleware"
	"github.com/verustcode/giteebridge/internal/git/gitee"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/errors"
)

// ClientResolver returns the client a request acts through
type ClientResolver interface {
	Client(c *gin.Context) *gitee.Client
}

// ClientFunc adapts a function to ClientResolver
type ClientFunc func(c *gin.Context) *gitee.Client

// Client calls f
func (f ClientFunc) Client(c *gin.Context) *gitee.Client { return f(c) }

// Clients uses the configured client unless the caller supplied its own
// token, in which case a client for that token is built per request.
type Clients struct {
	opts  provider.ProviderOptions
	def   *gitee.Client
	build func(*provider.ProviderOptions) *gitee.Client
}

// NewClients creates a resolver around the configured client
func NewClients(opts *provider.ProviderOptions, def *gitee.Client) *Clients {
	return &Clients{opts: *opts, def: def, build: gitee.NewFromOptions}
}

// Client implements ClientResolver
func (cl *Clients) Client(c *gin.Context) *gitee.Client {
	token := middleware.GetUpstreamToken(c)
	if token == "" || token == cl.opts.Token {
		return cl.def
	}
	opts := cl.opts
	opts.Token = token
	return cl.build(&opts)
}

// respondError hands err to the ErrorHandler middleware
func respondError(c *gin.Context, err error) {
	_ = c.Error(rest.ToAppError(err))
	c.Abort()
}

// badRequest aborts with a validation error
func badRequest(c *gin.Context, message string) {
	respondError(c, errors.New(errors.ErrCodeValidation, message))
}

// bindJSON decodes the request body into v; false means the request was
// already answered. Only application/json bodies are accepted, which forces
// a CORS preflight on browser callers.
func bindJSON(c *gin.Context, v any) bool {
	if c.ContentType() != binding.MIMEJSON {
		badRequest(c, "Content-Type must be "+binding.MIMEJSON)
		return false
	}
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// repoParams returns the :owner and :repo path parameters
func repoParams(c *gin.Context) (owner, repo string) {
	return c.Param("owner"), strings.TrimSuffix(c.Param("repo"), ".git")
}

// intParam parses a positive integer path parameter
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		badRequest(c, "Invalid "+name+": "+c.Param(name))
		return 0, false
	}
	return n, true
}

// listResponse is the envelope of list endpoints
type listResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, listResponse[T]{Data: items, Total: len(items)})
}
