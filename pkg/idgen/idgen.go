// Package idgen provides ID generation utilities for the application.
// It hides the underlying xid implementation so callers only deal in strings.
package idgen

import (
	"strings"

	"github.com/rs/xid"
)

// NewID generates a new globally unique, time-sortable, URL-safe identifier
// of 20 characters.
func NewID() string {
	return xid.New().String()
}

// NewRequestID generates a unique ID for bridge server request tracking.
func NewRequestID() string {
	return NewID()
}

// NewFetchID generates the correlation ID shared by all page requests of one
// paged listing, so their log lines can be grouped.
func NewFetchID() string {
	return "fetch-" + NewID()
}

// NewAuthorizationNote generates the note attached to personal access tokens
// created by the login command. The hosting service rejects duplicate notes.
func NewAuthorizationNote(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "giteebridge"
	}
	return prefix + " " + NewID()
}

// IsValid reports whether s is an ID produced by NewID.
func IsValid(s string) bool {
	_, err := xid.FromString(s)
	return err == nil
}
