// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// Default configuration values
const (
	defaultTimeout        = 30 * time.Second
	defaultPerPage        = 100
	defaultServerHost     = "127.0.0.1"
	defaultServerPort     = 8092
	defaultOTLPEndpoint   = "localhost:4317"
	defaultPrometheusPort = 9464
	defaultWorkspace      = "."
)

// Clone protocols
const (
	CloneProtocolHTTPS = "https"
	CloneProtocolSSH   = "ssh"
)

// Config represents the complete application configuration
type Config struct {
	Gitee     GiteeConfig      `yaml:"gitee"`
	Server    ServerConfig     `yaml:"server"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// GiteeConfig holds the hosting service connection settings
type GiteeConfig struct {
	// Host is "host", "host:port" or a server URL; empty means git.oschina.net
	Host               string        `yaml:"host"`
	Login              string        `yaml:"login"`
	Token              string        `yaml:"token"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout" validate:"gte=0"`
	PerPage            int           `yaml:"per_page" validate:"gte=0,lte=100"`
	// MaxRetries of transient failures; -1 disables retries
	MaxRetries     int    `yaml:"max_retries" validate:"gte=-1,lte=10"`
	IncludeWatched bool   `yaml:"include_watched"`
	CloneProtocol  string `yaml:"clone_protocol" validate:"omitempty,oneof=https ssh"`
	// Workspace is where repositories are cloned
	Workspace string `yaml:"workspace"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port" validate:"min=1,max=65535"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Gitee: GiteeConfig{
			Host:           consts.DefaultHost,
			Timeout:        defaultTimeout,
			PerPage:        defaultPerPage,
			IncludeWatched: true,
			CloneProtocol:  CloneProtocolHTTPS,
			Workspace:      defaultWorkspace,
		},
		Server: ServerConfig{
			Host: defaultServerHost,
			Port: defaultServerPort,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 5,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Host: "127.0.0.1",
				Port: defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion and GITEE_* overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrCodeConfigNotFound, "failed to read config "+path, err)
	}

	if len(data) > 0 {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeConfigParse, "failed to parse config "+path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) so tokens containing '$' survive
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		varName, def, hasDefault := strings.Cut(varName, ":-")

		if value := os.Getenv(varName); value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ServerPath parses Host into the hosting server identity
func (g *GiteeConfig) ServerPath() (remoteurl.ServerPath, error) {
	sp, err := remoteurl.ParseServerPath(g.Host)
	if err != nil {
		return remoteurl.ServerPath{}, apperrors.Wrap(apperrors.ErrCodeConfigInvalid, "invalid gitee.host", err)
	}
	return sp, nil
}

// RequireToken fails when no access token is configured
func (g *GiteeConfig) RequireToken() error {
	if strings.TrimSpace(g.Token) == "" {
		return apperrors.New(apperrors.ErrCodeTokenMissing,
			"no access token configured; set gitee.token or GITEE_TOKEN (see 'giteebridge login')")
	}
	return nil
}

// ProviderOptions converts the section into provider options
func (g *GiteeConfig) ProviderOptions() (*provider.ProviderOptions, error) {
	server, err := g.ServerPath()
	if err != nil {
		return nil, err
	}
	return &provider.ProviderOptions{
		Server:             server,
		Token:              g.Token,
		Login:              g.Login,
		InsecureSkipVerify: g.InsecureSkipVerify,
		Timeout:            g.Timeout,
		PerPage:            g.PerPage,
		MaxRetries:         g.MaxRetries,
		IncludeWatched:     g.IncludeWatched,
	}, nil
}
