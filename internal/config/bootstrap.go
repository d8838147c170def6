package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/verustcode/giteebridge/pkg/errors"
)

// DefaultConfigPath is the default path of the configuration file
const DefaultConfigPath = "config/giteebridge.yaml"

// Exists checks if the configuration file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDefault writes a configuration file holding the defaults
func CreateDefault(path string) error {
	return Write(path, Default())
}

// Write writes cfg to path. The token is never written; it belongs in
// GITEE_TOKEN or a ${VAR} reference added by hand.
func Write(path string, cfg *Config) error {
	out := *cfg
	out.Gitee.Token = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	content := configHeader + string(data)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// configHeader is the comment header for giteebridge.yaml
const configHeader = `# GiteeBridge Configuration
#
# Environment Variable Support:
#   - Use ${VAR_NAME} or ${VAR_NAME:-default} in values to reference environment variables
#   - Or use GITEE_* environment variables to override:
#     GITEE_HOST, GITEE_LOGIN, GITEE_TOKEN, GITEE_INSECURE_SKIP_VERIFY
#     GITEE_TIMEOUT, GITEE_PER_PAGE, GITEE_MAX_RETRIES, GITEE_INCLUDE_WATCHED
#     GITEE_CLONE_PROTOCOL, GITEE_WORKSPACE
#     GITEE_SERVER_HOST, GITEE_SERVER_PORT, GITEE_SERVER_DEBUG
#     GITEE_LOG_LEVEL, GITEE_LOG_FORMAT, GITEE_LOG_FILE
#     GITEE_TELEMETRY_ENABLED, GITEE_OTLP_ENABLED, GITEE_OTLP_ENDPOINT
#     GITEE_PROMETHEUS_ENABLED, GITEE_PROMETHEUS_PORT
#
# The access token is never written here. Export GITEE_TOKEN or set
#   token: ${GITEE_TOKEN}
#

`

// applyEnvOverrides applies GITEE_* environment variable overrides.
// Malformed numbers and durations are configuration errors.
func applyEnvOverrides(cfg *Config) error {
	env := envReader{}

	// Hosting service overrides
	env.str("GITEE_HOST", &cfg.Gitee.Host)
	env.str("GITEE_LOGIN", &cfg.Gitee.Login)
	env.str("GITEE_TOKEN", &cfg.Gitee.Token)
	env.boolean("GITEE_INSECURE_SKIP_VERIFY", &cfg.Gitee.InsecureSkipVerify)
	env.duration("GITEE_TIMEOUT", &cfg.Gitee.Timeout)
	env.integer("GITEE_PER_PAGE", &cfg.Gitee.PerPage)
	env.integer("GITEE_MAX_RETRIES", &cfg.Gitee.MaxRetries)
	env.boolean("GITEE_INCLUDE_WATCHED", &cfg.Gitee.IncludeWatched)
	env.str("GITEE_CLONE_PROTOCOL", &cfg.Gitee.CloneProtocol)
	env.str("GITEE_WORKSPACE", &cfg.Gitee.Workspace)

	// Server overrides
	env.str("GITEE_SERVER_HOST", &cfg.Server.Host)
	env.integer("GITEE_SERVER_PORT", &cfg.Server.Port)
	env.boolean("GITEE_SERVER_DEBUG", &cfg.Server.Debug)

	// Logging overrides
	env.str("GITEE_LOG_LEVEL", &cfg.Logging.Level)
	env.str("GITEE_LOG_FORMAT", &cfg.Logging.Format)
	env.str("GITEE_LOG_FILE", &cfg.Logging.File)

	// Telemetry overrides
	env.boolean("GITEE_TELEMETRY_ENABLED", &cfg.Telemetry.Enabled)
	env.boolean("GITEE_OTLP_ENABLED", &cfg.Telemetry.OTLP.Enabled)
	env.str("GITEE_OTLP_ENDPOINT", &cfg.Telemetry.OTLP.Endpoint)
	env.boolean("GITEE_PROMETHEUS_ENABLED", &cfg.Telemetry.Prometheus.Enabled)
	env.integer("GITEE_PROMETHEUS_PORT", &cfg.Telemetry.Prometheus.Port)

	return env.err
}

// envReader records the first malformed variable.
type envReader struct {
	err error
}

func (r *envReader) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) fail(name, value string, err error) {
	if r.err == nil {
		r.err = apperrors.Wrap(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid value %q for %s", value, name), err)
	}
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.lookup(name); ok {
		*dst = v
	}
}

func (r *envReader) boolean(name string, dst *bool) {
	if v, ok := r.lookup(name); ok {
		*dst = parseBool(v)
	}
}

func (r *envReader) integer(name string, dst *int) {
	v, ok := r.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(name, v, err)
		return
	}
	*dst = n
}

func (r *envReader) duration(name string, dst *time.Duration) {
	v, ok := r.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(name, v, err)
		return
	}
	*dst = d
}

// parseBool parses a boolean string value
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
