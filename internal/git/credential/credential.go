// Package credential implements the git credential-helper protocol for the
// hosting service: git runs "giteebridge credential get|store|erase" and
// exchanges key=value lines on stdin/stdout.
package credential

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// Helper operations
const (
	OpGet   = "get"
	OpStore = "store"
	OpErase = "erase"
)

// Request is one credential description exchanged with git
type Request struct {
	Protocol string
	Host     string
	Path     string
	Username string
	Password string
	// Extra holds attributes this helper does not interpret
	Extra map[string]string
}

// ParseRequest reads attributes until a blank line or EOF. A url attribute
// is expanded into protocol, host, path and username.
func ParseRequest(r io.Reader) (*Request, error) {
	req := &Request{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid credential line %q", line)
		}
		if err := req.set(key, value); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read credential request: %w", err)
	}
	return req, nil
}

func (r *Request) set(key, value string) error {
	switch key {
	case "protocol":
		r.Protocol = value
	case "host":
		r.Host = value
	case "path":
		r.Path = value
	case "username":
		r.Username = value
	case "password":
		r.Password = value
	case "url":
		u, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid credential url: %w", err)
		}
		r.Protocol = u.Scheme
		r.Host = u.Host
		r.Path = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			r.Username = u.User.Username()
			if p, ok := u.User.Password(); ok {
				r.Password = p
			}
		}
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[key] = value
	}
	return nil
}

// URL renders the request as protocol://host/path
func (r *Request) URL() string {
	s := r.Protocol + "://" + r.Host
	if r.Path != "" {
		s += "/" + r.Path
	}
	return s
}

// WriteTo writes the non-empty attributes in protocol order
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	write := func(k, v string) {
		if v != "" {
			b.WriteString(k + "=" + v + "\n")
		}
	}
	write("protocol", r.Protocol)
	write("host", r.Host)
	write("path", r.Path)
	write("username", r.Username)
	write("password", r.Password)

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, r.Extra[k])
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Credentials is a login and its password or access token
type Credentials struct {
	Username string
	Password string
}

// Source supplies credentials for a request. ok is false when the source
// has nothing for it.
type Source interface {
	Lookup(ctx context.Context, req *Request) (creds Credentials, ok bool, err error)
}

// StaticSource answers every request with the configured login and token
type StaticSource struct {
	Username string
	Token    string
}

// Lookup implements Source
func (s StaticSource) Lookup(ctx context.Context, req *Request) (Credentials, bool, error) {
	if s.Username == "" || s.Token == "" {
		return Credentials{}, false, nil
	}
	if req.Username != "" && req.Username != s.Username {
		return Credentials{}, false, nil
	}
	return Credentials{Username: s.Username, Password: s.Token}, true, nil
}

// Helper answers credential requests for one hosting server
type Helper struct {
	server  remoteurl.ServerPath
	source  Source
	metrics *telemetry.Metrics
}

// NewHelper creates a helper for server backed by source
func NewHelper(server remoteurl.ServerPath, source Source) *Helper {
	return &Helper{
		server:  server,
		source:  source,
		metrics: telemetry.GetMetrics(),
	}
}

// Matches reports whether req targets the hosting server over HTTP(S).
// Other hosts are left to the next helper configured in git.
func (h *Helper) Matches(req *Request) bool {
	switch strings.ToLower(req.Protocol) {
	case "http", "https", "":
	default:
		return false
	}
	return remoteurl.IsHostedURL(req.Host, h.server.Host)
}

// Get fills in username and password for a matching request. ok is false
// when the request is for another host or the source has no credentials.
func (h *Helper) Get(ctx context.Context, req *Request) (*Request, bool, error) {
	if !h.Matches(req) {
		logger.Debug("Credential request for foreign host ignored", zap.String("host", req.Host))
		h.metrics.RecordCredentialLookup(ctx, OpGet, false)
		return nil, false, nil
	}

	creds, ok, err := h.source.Lookup(ctx, req)
	if err != nil {
		return nil, false, err
	}
	h.metrics.RecordCredentialLookup(ctx, OpGet, ok)
	if !ok {
		return nil, false, nil
	}

	answer := *req
	answer.Extra = nil
	answer.Username = creds.Username
	answer.Password = creds.Password
	logger.Debug("Credential supplied",
		zap.String("host", req.Host),
		zap.String("username", creds.Username),
		zap.String("password", logger.MaskSecret(creds.Password)),
	)
	return &answer, true, nil
}

// Run executes one helper operation, reading the request from in and
// writing the answer to out. store and erase are accepted and ignored, as
// is any operation git may add later.
func (h *Helper) Run(ctx context.Context, op string, in io.Reader, out io.Writer) error {
	req, err := ParseRequest(in)
	if err != nil {
		return err
	}

	switch op {
	case OpGet:
		answer, ok, err := h.Get(ctx, req)
		if err != nil || !ok {
			return err
		}
		_, err = answer.WriteTo(out)
		return err
	case OpStore, OpErase:
		h.metrics.RecordCredentialLookup(ctx, op, false)
		logger.Debug("Credential operation ignored", zap.String("op", op), zap.String("host", req.Host))
		return nil
	default:
		return nil
	}
}
