package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryPolicy_Next(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	tests := []struct {
		name      string
		method    string
		attempt   int
		resp      *Response
		err       error
		wantDelay time.Duration
		wantRetry bool
	}{
		{"success", http.MethodGet, 0, &Response{StatusCode: 200}, nil, 0, false},
		{"503 first attempt", http.MethodGet, 0, &Response{StatusCode: 503}, nil, 100 * time.Millisecond, true},
		{"429 second attempt", http.MethodGet, 1, &Response{StatusCode: 429}, nil, 200 * time.Millisecond, true},
		{"backoff capped", http.MethodGet, 2, &Response{StatusCode: 504}, nil, 400 * time.Millisecond, true},
		{"out of attempts", http.MethodGet, 3, &Response{StatusCode: 503}, nil, 0, false},
		{"404 not retried", http.MethodGet, 0, &Response{StatusCode: 404}, nil, 0, false},
		{
			"retry-after honoured", http.MethodGet, 0,
			&Response{StatusCode: 429, Header: http.Header{"Retry-After": []string{"30"}}},
			nil, time.Second, true,
		},
		{"timeout", http.MethodGet, 0, nil, &TransportError{Err: timeoutErr{}}, 100 * time.Millisecond, true},
		{"refused dial", http.MethodGet, 0, nil, &TransportError{Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, 0, false},
		{"plain transport error", http.MethodGet, 0, nil, &TransportError{Err: errors.New("bad url")}, 0, false},
		{"cancelled", http.MethodGet, 0, nil, context.Canceled, 0, false},
		{"post not retried on 504", http.MethodPost, 0, &Response{StatusCode: 504}, nil, 0, false},
		{"patch not retried on timeout", http.MethodPatch, 0, nil, &TransportError{Err: timeoutErr{}}, 0, false},
		{"put retried on 429", http.MethodPut, 0, &Response{StatusCode: 429}, nil, 100 * time.Millisecond, true},
		{"head retried on 503", http.MethodHead, 0, &Response{StatusCode: 503}, nil, 100 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := p.next(tt.method, tt.attempt, tt.resp, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			assert.Equal(t, tt.wantDelay, delay)
		})
	}
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	assert.Equal(t, DefaultMaxRetries, p.MaxRetries)
	assert.Equal(t, DefaultBaseDelay, p.BaseDelay)
	assert.Equal(t, DefaultMaxDelay, p.MaxDelay)

	disabled := RetryPolicy{MaxRetries: -1}.withDefaults()
	_, retry := disabled.next(http.MethodGet, 0, &Response{StatusCode: 503}, nil)
	assert.False(t, retry)
}

func TestBackoffCap(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, p.backoff(0))
	assert.Equal(t, 2*time.Second, p.backoff(1))
	assert.Equal(t, 3*time.Second, p.backoff(5))
}
