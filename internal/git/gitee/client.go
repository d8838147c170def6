// Package gitee is the client of the Gitee/GitOSC REST API.
//
// Every operation goes through a rest.Executor, so the whole client runs
// against an ExecutorFunc in tests. Collections are fetched with the paging
// package; single records are decoded and then checked for their mandatory
// fields.
package gitee

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/verustcode/giteebridge/internal/git/paging"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/validation"
)

// Client talks to one hosting server
type Client struct {
	server  remoteurl.ServerPath
	apiBase string
	exec    rest.Executor
	// anon carries requests that must not send the configured token, such
	// as the basic-auth token exchange
	anon    rest.Executor
	fetcher *paging.Fetcher
}

// Option configures a Client
type Option func(*clientConfig)

type clientConfig struct {
	anon       rest.Executor
	pagingOpts []paging.Option
}

// WithAnonymousExecutor sets the executor used for requests that carry
// their own credentials. It defaults to the main executor.
func WithAnonymousExecutor(exec rest.Executor) Option {
	return func(c *clientConfig) { c.anon = exec }
}

// WithPerPage sets the page size of listings
func WithPerPage(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.pagingOpts = append(c.pagingOpts, paging.WithPerPage(n))
		}
	}
}

// WithMaxPages bounds every listing to n pages
func WithMaxPages(n int) Option {
	return func(c *clientConfig) { c.pagingOpts = append(c.pagingOpts, paging.WithMaxPages(n)) }
}

// New creates a client for server that sends requests through exec.
func New(server remoteurl.ServerPath, exec rest.Executor, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.anon == nil {
		cfg.anon = exec
	}
	if server.Host == "" {
		server = remoteurl.DefaultServerPath()
	}
	return &Client{
		server:  server,
		apiBase: server.APIURL(),
		exec:    exec,
		anon:    cfg.anon,
		fetcher: paging.NewFetcher(exec, cfg.pagingOpts...),
	}
}

// NewFromOptions builds a client with production HTTP executors.
func NewFromOptions(opts *provider.ProviderOptions) *Client {
	restOpts := rest.Options{
		Token:              opts.Token,
		InsecureSkipVerify: opts.InsecureSkipVerify,
		Timeout:            opts.Timeout,
		Retry:              rest.RetryPolicy{MaxRetries: opts.MaxRetries},
	}
	exec := rest.NewHTTPExecutor(restOpts)

	restOpts.Token = ""
	anon := rest.NewHTTPExecutor(restOpts)

	return New(opts.ServerOrDefault(), exec,
		WithAnonymousExecutor(anon),
		WithPerPage(opts.PerPage),
	)
}

// Server returns the server the client talks to
func (c *Client) Server() remoteurl.ServerPath {
	return c.server
}

// APIBase returns the API root URL
func (c *Client) APIBase() string {
	return c.apiBase
}

// endpoint joins escaped path segments onto the API root.
func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.apiBase)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func withQuery(u string, q url.Values) string {
	if len(q) == 0 {
		return u
	}
	return u + "?" + q.Encode()
}

// getOne fetches a single record.
func getOne[T any](ctx context.Context, exec rest.Executor, u string) (*T, error) {
	return doRecord[T](ctx, exec, rest.NewRequest(http.MethodGet, u))
}

// send validates body, sends it as JSON and decodes a single record.
func send[T any](ctx context.Context, exec rest.Executor, method, u string, body any) (*T, error) {
	req, err := newBodyRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	return doRecord[T](ctx, exec, req)
}

func newBodyRequest(method, u string, body any) (*rest.Request, error) {
	if body != nil {
		if err := validateRequest(body); err != nil {
			return nil, err
		}
	}
	return rest.NewJSONRequest(method, u, body)
}

// doRecord executes req and decodes a record, rejecting records that miss
// mandatory fields.
func doRecord[T any](ctx context.Context, exec rest.Executor, req *rest.Request) (*T, error) {
	out, err := rest.Do[*T](ctx, exec, req)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &rest.DecodeError{URL: req.URL, Err: errNullBody}
	}
	if err := validation.Struct(out); err != nil {
		return nil, &rest.DecodeError{URL: req.URL, Err: err}
	}
	return out, nil
}

// recordDecoder decodes a page of records, validating each one.
func recordDecoder[T any]() func([]byte) ([]T, error) {
	decode := paging.JSONDecoder[T]()
	return func(body []byte) ([]T, error) {
		items, err := decode(body)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if err := validation.Struct(&items[i]); err != nil {
				return nil, &itemError{index: i, err: err}
			}
		}
		return items, nil
	}
}

// listRequest describes a listing endpoint.
func listRequest[T any](u string, notFoundAsEmpty bool) paging.PageRequest[T] {
	return paging.PageRequest[T]{
		URL:             u,
		Decode:          recordDecoder[T](),
		NotFoundAsEmpty: notFoundAsEmpty,
	}
}
