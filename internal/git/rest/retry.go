package rest

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Retry defaults
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second
)

// RetryPolicy bounds retries of transient failures: network timeouts and
// 429/502/503/504 responses. MaxRetries < 0 disables retrying.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// next decides whether the attempt-th try (0-based) should be repeated and
// after which delay. Requests that may have changed state on the server are
// only repeated after a 429, which the service answers before doing anything.
func (p RetryPolicy) next(method string, attempt int, resp *Response, err error) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	if !isIdempotent(method) && (resp == nil || resp.StatusCode != http.StatusTooManyRequests) {
		return 0, false
	}
	switch {
	case err != nil:
		if !isRetryable(err) {
			return 0, false
		}
		return p.backoff(attempt), true
	case resp != nil && isRetryableStatus(resp.StatusCode):
		if d, ok := retryAfter(resp.Header); ok {
			return min(d, p.MaxDelay), true
		}
		return p.backoff(attempt), true
	default:
		return 0, false
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	return min(time.Duration(float64(p.BaseDelay)*math.Pow(2, float64(attempt))), p.MaxDelay)
}

func isIdempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isRetryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) (time.Duration, bool) {
	v := h.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
