// Package consts defines cross-module constants used throughout the application.
package consts

import (
	"sync"
	"time"
)

// ServiceName is the application service name
const ServiceName = "giteebridge"

// Project information constants
const (
	// ProjectName is the display name of the project
	ProjectName = "GiteeBridge"

	// ProjectURL is the repository URL
	ProjectURL = "https://github.com/verustcode/giteebridge"
)

// Hosting service defaults
const (
	// DefaultHost is used whenever no server has been configured
	DefaultHost = "git.oschina.net"

	// APIPath is the REST API prefix appended to the server URL
	APIPath = "/api/v3"

	// ProviderName is the registry name of the hosting service adapter
	ProviderName = "gitee"

	// ProviderDisplayName is shown to users
	ProviderDisplayName = "Gitee"
)

// Output format constants
const (
	// OutputFormatTable renders human readable tables
	OutputFormatTable = "table"

	// OutputFormatJSON represents JSON output format
	OutputFormatJSON = "json"
)

// Build information - set via ldflags during build or programmatically
var (
	// Version is the application version
	Version = "dev"

	// BuildTime is the build timestamp
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// UserAgent returns the User-Agent sent to the hosting service.
func UserAgent() string {
	return ServiceName + "/" + Version
}

// Server runtime information
var (
	startedAt   time.Time
	startedOnce sync.Once
)

// SetStartedAt records the server start time (can only be called once)
func SetStartedAt(t time.Time) {
	startedOnce.Do(func() {
		startedAt = t
	})
}

// GetStartedAt returns the server start time
func GetStartedAt() time.Time {
	return startedAt
}

// GetUptime returns the duration since server started
func GetUptime() time.Duration {
	if startedAt.IsZero() {
		return 0
	}
	return time.Since(startedAt)
}
