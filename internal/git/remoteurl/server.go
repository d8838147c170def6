package remoteurl

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/verustcode/giteebridge/consts"
)

// Protocol is the scheme used to reach a hosting server.
type Protocol string

// Supported protocols
const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// DefaultPort returns the port implied by the protocol.
func (p Protocol) DefaultPort() uint16 {
	if p == ProtocolHTTP {
		return 80
	}
	return 443
}

// ServerPath identifies one hosting service instance. Host is lower case
// without scheme, slash or path. Port is 0 when the protocol default applies.
type ServerPath struct {
	Host     string   `json:"host"`
	Port     uint16   `json:"port,omitempty"`
	Protocol Protocol `json:"protocol"`
}

// DefaultServerPath is the public production server.
func DefaultServerPath() ServerPath {
	return ServerPath{Host: consts.DefaultHost, Protocol: ProtocolHTTPS}
}

// ParseServerPath parses "host", "host:port" or "scheme://host[:port][/...]".
// Any path is discarded. An empty string yields the default server.
func ParseServerPath(s string) (ServerPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultServerPath(), nil
	}

	sp := ServerPath{Protocol: ProtocolHTTPS}
	if loc := schemePattern.FindStringIndex(s); loc != nil {
		switch scheme := strings.ToLower(s[:loc[1]-3]); scheme {
		case "http":
			sp.Protocol = ProtocolHTTP
		case "https":
			sp.Protocol = ProtocolHTTPS
		default:
			return ServerPath{}, fmt.Errorf("unsupported server protocol %q", scheme)
		}
	}

	hostPort := HostFromURL(s)
	host, port := hostPort, ""
	if i := strings.LastIndex(hostPort, ":"); i >= 0 && !strings.HasSuffix(hostPort, "]") {
		host, port = hostPort[:i], hostPort[i+1:]
	}

	if port != "" {
		n, err := strconv.ParseUint(port, 10, 16)
		if err != nil || n == 0 {
			return ServerPath{}, fmt.Errorf("invalid server port %q", port)
		}
		if uint16(n) != sp.Protocol.DefaultPort() {
			sp.Port = uint16(n)
		}
	}

	normalized, err := normalizeHost(host)
	if err != nil {
		return ServerPath{}, err
	}
	sp.Host = normalized
	return sp, nil
}

func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("missing server host")
	}
	if strings.HasPrefix(host, "[") {
		if !validHostname(hostname(host)) {
			return "", fmt.Errorf("invalid server host %q", host)
		}
		return strings.ToLower(host), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid server host %q: %w", host, err)
	}
	return ascii, nil
}

// MustParseServerPath is ParseServerPath for constants; it panics on error.
func MustParseServerPath(s string) ServerPath {
	sp, err := ParseServerPath(s)
	if err != nil {
		panic(err)
	}
	return sp
}

// EffectivePort returns the explicit port or the protocol default.
func (s ServerPath) EffectivePort() uint16 {
	if s.Port != 0 {
		return s.Port
	}
	return s.protocol().DefaultPort()
}

// HostPort returns host[:port], omitting the default port.
func (s ServerPath) HostPort() string {
	if s.Port == 0 || s.Port == s.protocol().DefaultPort() {
		return s.Host
	}
	return s.Host + ":" + strconv.Itoa(int(s.Port))
}

// String renders scheme://host[:port].
func (s ServerPath) String() string {
	return string(s.protocol()) + "://" + s.HostPort()
}

// APIURL returns the REST API base of the server.
func (s ServerPath) APIURL() string {
	return APIURL(s.String())
}

// Matches reports whether url points at this server.
func (s ServerPath) Matches(url string) bool {
	return IsHostedURL(url, s.Host)
}

func (s ServerPath) protocol() Protocol {
	if s.Protocol == "" {
		return ProtocolHTTPS
	}
	return s.Protocol
}
