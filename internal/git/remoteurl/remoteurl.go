// Package remoteurl canonicalizes git remote URLs for the hosting service.
//
// Every function here is a pure string transform. Malformed input never
// panics; it yields an empty string, false or the zero value instead.
// Host names compare case-insensitively while owner and repository path
// segments keep their case.
package remoteurl

import (
	"net"
	"regexp"
	"strings"

	"github.com/verustcode/giteebridge/consts"
)

// schemePattern matches an RFC 3986 scheme followed by "://".
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// RemoteLocation is the canonical identity of a hosted repository.
type RemoteLocation struct {
	// Host as it appeared in the remote, including an explicit port
	Host       string `json:"host"`
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
}

// FullName returns "owner/repository".
func (l RemoteLocation) FullName() string {
	return l.Owner + "/" + l.Repository
}

// Equal reports whether both locations name the same repository.
func (l RemoteLocation) Equal(other RemoteLocation) bool {
	return strings.EqualFold(l.Host, other.Host) &&
		l.Owner == other.Owner &&
		l.Repository == other.Repository
}

// IsZero reports whether l is the zero value.
func (l RemoteLocation) IsZero() bool {
	return l == RemoteLocation{}
}

// RemoveTrailingSlash strips exactly one trailing "/".
func RemoveTrailingSlash(url string) string {
	return strings.TrimSuffix(url, "/")
}

// RemoveProtocolPrefix strips the scheme and any user[:password]@ prefix,
// and rewrites scp-style remotes (git@host:owner/repo) into host/owner/repo.
// An explicit host:port is kept, unless a user@ prefix marks the input as
// scp form. Input without either form is returned as is.
func RemoveProtocolPrefix(url string) string {
	if loc := schemePattern.FindStringIndex(url); loc != nil {
		return stripUserInfo(url[loc[1]:])
	}

	rest := stripUserInfo(url)
	scpUser := rest != url
	authority, path, hasPath := strings.Cut(rest, "/")
	host, after, hasColon := strings.Cut(authority, ":")
	if !hasColon || host == "" || after == "" || (isDigits(after) && !scpUser) {
		return rest
	}
	// scp form: everything after the colon is the path
	if hasPath {
		return host + "/" + after + "/" + path
	}
	return host + "/" + after
}

// stripUserInfo removes credentials that precede the host.
func stripUserInfo(s string) string {
	authority := s
	if i := strings.IndexAny(s, "/"); i >= 0 {
		authority = s[:i]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		return s[at+1:]
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HostFromURL returns the host of url including an explicit port. Case is preserved.
func HostFromURL(url string) string {
	rest := RemoveProtocolPrefix(strings.TrimSpace(url))
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// hostname drops a port from host, handling bracketed IPv6 literals.
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}

func validHostname(h string) bool {
	if h == "" {
		return false
	}
	return !strings.ContainsAny(h, " \t\r\n@\\:[]") || net.ParseIP(h) != nil
}

// IsHostedURL reports whether url points at the configured hosting server.
// configured may be a bare host, a server URL or an API URL. Hostnames must
// match exactly, ignoring case and ports.
func IsHostedURL(url, configured string) bool {
	candidate := hostname(HostFromURL(url))
	want := hostname(HostFromURL(configured))
	if !validHostname(candidate) || !validHostname(want) {
		return false
	}
	return strings.EqualFold(candidate, want)
}

// ParseRemote extracts the owner and repository from a remote URL.
// It succeeds only when exactly two non-empty path segments follow the host,
// after the query, fragment, one trailing slash and a ".git" suffix are dropped.
func ParseRemote(url string) (RemoteLocation, bool) {
	rest := RemoveProtocolPrefix(strings.TrimSpace(url))
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSuffix(RemoveTrailingSlash(rest), ".git")

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return RemoteLocation{}, false
	}
	host, owner, repo := parts[0], parts[1], parts[2]
	if owner == "" || repo == "" || !validHostname(hostname(host)) {
		return RemoteLocation{}, false
	}
	return RemoteLocation{Host: host, Owner: owner, Repository: repo}, true
}

// ParseFullName parses the "owner/repo" short form used on the command line,
// attaching the given server's host.
func ParseFullName(fullName string, server ServerPath) (RemoteLocation, bool) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	repo = strings.TrimSuffix(repo, ".git")
	if !ok || owner == "" || repo == "" || strings.ContainsAny(owner+repo, "/?#:@ ") {
		return RemoteLocation{}, false
	}
	return RemoteLocation{Host: server.HostPort(), Owner: owner, Repository: repo}, true
}

// ParseRepositoryArg accepts either a remote URL or an "owner/repo" short form.
func ParseRepositoryArg(arg string, server ServerPath) (RemoteLocation, bool) {
	if loc, ok := ParseFullName(arg, server); ok {
		return loc, true
	}
	return ParseRemote(arg)
}

// BuildCloneURL composes scheme://host[:port]/owner/repository, without a
// trailing slash or ".git" suffix.
func BuildCloneURL(server ServerPath, owner, repository string) string {
	return server.String() + "/" + owner + "/" + repository
}

// SSHCloneURL composes the scp-style remote git@host:owner/repository.git.
func SSHCloneURL(server ServerPath, owner, repository string) string {
	return "git@" + server.Host + ":" + owner + "/" + repository + ".git"
}

// WebURL returns the browser URL of a repository.
func WebURL(server ServerPath, owner, repository string) string {
	return BuildCloneURL(server, owner, repository)
}

// APIURL returns the REST API base for hostOrURL. Input is folded to lower
// case, an empty input means the default host and a missing scheme means https.
func APIURL(hostOrURL string) string {
	scheme, rest := splitAPIInput(hostOrURL)
	return scheme + "://" + rest
}

// APIURLWithoutProtocol is APIURL without the scheme.
func APIURLWithoutProtocol(hostOrURL string) string {
	_, rest := splitAPIInput(hostOrURL)
	return rest
}

func splitAPIInput(hostOrURL string) (scheme, rest string) {
	s := strings.ToLower(strings.TrimSpace(hostOrURL))
	if s == "" {
		s = consts.DefaultHost
	}

	scheme = string(ProtocolHTTPS)
	if strings.HasPrefix(s, "http://") {
		scheme = string(ProtocolHTTP)
	}
	rest = RemoveTrailingSlash(RemoveProtocolPrefix(s))
	if rest == "" {
		rest = consts.DefaultHost
	}
	if !strings.HasSuffix(rest, consts.APIPath) {
		rest += consts.APIPath
	}
	return scheme, rest
}
