package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

const (
	// DefaultTimeout bounds one attempt of one request
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a body is read into memory
	maxResponseBytes = 32 << 20
)

// Options configures an HTTPExecutor.
type Options struct {
	// Token is sent as a bearer token; empty means anonymous requests
	Token string
	// InsecureSkipVerify disables TLS verification for self-hosted servers
	InsecureSkipVerify bool
	// Timeout bounds one attempt; zero means DefaultTimeout
	Timeout time.Duration
	// Retry controls retries of transient failures
	Retry RetryPolicy
	// UserAgent overrides the default User-Agent
	UserAgent string
	// HTTPClient replaces the built client, mainly for tests. Token and
	// InsecureSkipVerify are ignored when it is set.
	HTTPClient *http.Client
}

// HTTPExecutor is the production Executor.
type HTTPExecutor struct {
	client    *http.Client
	retry     RetryPolicy
	userAgent string
	metrics   *telemetry.Metrics
}

// NewHTTPExecutor builds an executor that authenticates with opts.Token.
func NewHTTPExecutor(opts Options) *HTTPExecutor {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = consts.UserAgent()
	}

	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient(opts.Token, opts.InsecureSkipVerify, timeout)
	}

	return &HTTPExecutor{
		client:    client,
		retry:     opts.Retry.withDefaults(),
		userAgent: userAgent,
		metrics:   telemetry.GetMetrics(),
	}
}

func newHTTPClient(token string, insecure bool, timeout time.Duration) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var transport http.RoundTripper = base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// Execute performs req, retrying transient failures per the retry policy.
func (e *HTTPExecutor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := CheckCancelled(ctx); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "gitee "+req.Method,
		telemetry.WithRequestAttributes(req.Method, req.URL))
	defer span.End()

	var (
		resp *Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			telemetry.AddSpanEvent(span, "retry", telemetry.AttrRetryAttempt.Int(attempt))
		}

		resp, err = e.once(ctx, req)
		delay, retry := e.retry.next(req.Method, attempt, resp, err)
		if !retry {
			break
		}

		reason := "transport"
		if resp != nil {
			reason = fmt.Sprintf("status_%d", resp.StatusCode)
		}
		e.metrics.RecordAPIRetry(ctx, reason)
		logger.Warn("Retrying hosting service request",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("attempt", attempt+1),
			zap.String("reason", reason),
			zap.Duration("delay", delay),
		)
		if err := sleep(ctx, delay); err != nil {
			telemetry.SetSpanError(span, err)
			return nil, err
		}
	}

	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(string(telemetry.AttrHTTPStatus), resp.StatusCode))
	if resp.IsSuccess() {
		telemetry.SetSpanOK(span)
	}
	return resp, nil
}

// once performs a single attempt.
func (e *HTTPExecutor) once(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("User-Agent", e.userAgent)

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.RecordAPIRequest(ctx, req.Method, 0, elapsed.Seconds())
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: fmt.Errorf("read body: %w", err)}
	}

	e.metrics.RecordAPIRequest(ctx, req.Method, httpResp.StatusCode, elapsed.Seconds())
	logger.Debug("Hosting service request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return CheckCancelled(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return cancelled(ctx)
	case <-timer.C:
		return nil
	}
}
