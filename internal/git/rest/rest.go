// Package rest performs single request/response round trips against the
// hosting service's JSON API.
//
// The Executor capability is the only thing the paging and client layers
// depend on, so tests substitute an ExecutorFunc for the network.
package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is one HTTP request. Body is kept as bytes so a request can be
// replayed on retry.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is one fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Executor performs exactly one logical request. A non-nil error always
// means no usable response arrived: a TransportError, or an error matching
// ErrCancelled. Non-2xx statuses are returned as responses.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// NewRequest creates a request without a body.
func NewRequest(method, url string) *Request {
	return &Request{Method: method, URL: url, Header: make(http.Header)}
}

// NewJSONRequest creates a request whose body is the JSON encoding of body.
func NewJSONRequest(method, url string, body any) (*Request, error) {
	req := NewRequest(method, url)
	if body == nil {
		return req, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, url, err)
	}
	req.Body = data
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// SetBasicAuth sets an Authorization header carrying login and password.
// Executors built without a token leave it untouched.
func (r *Request) SetBasicAuth(login, password string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set("Authorization", BasicAuthHeader(login, password))
}

// BasicAuthHeader renders the value of a basic Authorization header.
func BasicAuthHeader(login, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password))
}

// DecodeJSON decodes a successful response body into T.
func DecodeJSON[T any](req *Request, resp *Response) (T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	if err := dec.Decode(&out); err != nil {
		return out, &DecodeError{URL: req.URL, Err: err}
	}
	return out, nil
}

// Do executes req, turns non-2xx statuses into a StatusError and decodes
// the body into T.
func Do[T any](ctx context.Context, exec Executor, req *Request) (T, error) {
	var zero T
	resp, err := exec.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	if err := CheckStatus(req, resp); err != nil {
		return zero, err
	}
	return DecodeJSON[T](req, resp)
}

// DoNoContent executes req and only checks the status.
func DoNoContent(ctx context.Context, exec Executor, req *Request) error {
	resp, err := exec.Execute(ctx, req)
	if err != nil {
		return err
	}
	return CheckStatus(req, resp)
}
