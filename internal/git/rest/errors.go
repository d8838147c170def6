package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"

	apperrors "github.com/verustcode/giteebridge/pkg/errors"
)

// ErrCancelled marks a fetch aborted by the caller. It is distinct from every
// data error so callers can skip user-facing error output.
var ErrCancelled = errors.New("request cancelled")

// cancelled wraps the context cause so both errors.Is(err, ErrCancelled) and
// errors.Is(err, context.Canceled) hold.
func cancelled(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// CheckCancelled returns a cancellation error when ctx is done.
func CheckCancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return cancelled(ctx)
	}
	return nil
}

// IsCancelled reports whether err is a cancellation rather than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// TransportError is a network or connection failure; no response arrived.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Payload holds the hosting service's
// error body when it could be decoded.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Payload    *github.ErrorResponse
}

func (e *StatusError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Payload != nil {
		if e.Payload.Message != "" {
			b.WriteString(": ")
			b.WriteString(e.Payload.Message)
		}
		for _, fe := range e.Payload.Errors {
			b.WriteString("; ")
			if fe.Message != "" {
				b.WriteString(fe.Message)
			} else {
				b.WriteString(fe.Error())
			}
		}
	}
	return b.String()
}

// Message returns the service supplied message, or the status text.
func (e *StatusError) Message() string {
	if e.Payload != nil && e.Payload.Message != "" {
		return e.Payload.Message
	}
	return http.StatusText(e.StatusCode)
}

// NotFound reports a 404.
func (e *StatusError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Unauthorized reports a 401.
func (e *StatusError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// DecodeError means the body did not match the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CheckStatus returns a StatusError for non-2xx responses.
func CheckStatus(req *Request, resp *Response) error {
	if resp.IsSuccess() {
		return nil
	}
	se := &StatusError{Method: req.Method, URL: req.URL, StatusCode: resp.StatusCode}
	if len(resp.Body) > 0 {
		var payload github.ErrorResponse
		if json.Unmarshal(resp.Body, &payload) == nil && (payload.Message != "" || len(payload.Errors) > 0) {
			se.Payload = &payload
		}
	}
	return se
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.NotFound()
}

// ToAppError maps the error taxonomy onto application error codes.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	var (
		se *StatusError
		te *TransportError
		de *DecodeError
	)
	switch {
	case IsCancelled(err):
		return apperrors.Wrap(apperrors.ErrCodeCancelled, "operation cancelled", err)
	case errors.As(err, &se):
		code := apperrors.ErrCodeRemoteStatus
		switch se.StatusCode {
		case http.StatusUnauthorized:
			code = apperrors.ErrCodeGitAuth
		case http.StatusForbidden:
			code = apperrors.ErrCodeForbidden
		case http.StatusNotFound:
			code = apperrors.ErrCodeGitNotFound
		case http.StatusUnprocessableEntity:
			code = apperrors.ErrCodeValidation
		}
		appErr := apperrors.Wrap(code, se.Message(), err)
		if se.Payload != nil {
			appErr.WithDetails(se.Payload)
		}
		return appErr
	case errors.As(err, &te):
		return apperrors.Wrap(apperrors.ErrCodeTransport, "hosting service unreachable", err)
	case errors.As(err, &de):
		return apperrors.Wrap(apperrors.ErrCodeDecode, "unexpected response from hosting service", err)
	default:
		return apperrors.ErrInternal("unexpected error", err)
	}
}
