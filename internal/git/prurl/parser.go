// Package prurl parses the browser URLs of repositories, pull requests and
// issues on the hosting service, so commands accept whatever a user copies
// from the address bar.
package prurl

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	apperrors "github.com/verustcode/giteebridge/pkg/errors"
)

// Kind is what a web URL points at
type Kind string

const (
	KindRepository  Kind = "repository"
	KindPullRequest Kind = "pull_request"
	KindIssue       Kind = "issue"
)

var (
	// /owner/repo/pulls/12, also /pull/12 and sub-pages such as /files
	pullPattern = regexp.MustCompile(`^/([^/]+)/([^/]+)/pulls?/(\d+)(?:/.*)?$`)
	// /owner/repo/issues/I1ABCD or /owner/repo/issues/42
	issuePattern = regexp.MustCompile(`^/([^/]+)/([^/]+)/issues/([A-Za-z0-9]+)(?:/.*)?$`)
	// /owner/repo, optionally with .git or a trailing slash
	repoPattern = regexp.MustCompile(`^/([^/]+)/([^/]+?)(?:\.git)?/?$`)
)

// Info contains parsed information from a web URL
type Info struct {
	Kind Kind

	// Host is the host as written in the URL, lower-cased, port kept
	Host string

	Owner string
	Repo  string

	// Number is the pull request number
	Number int

	// IssueNumber is the issue identifier
	IssueNumber string

	// OriginalURL is the original URL that was parsed
	OriginalURL string
}

// Location returns the repository the URL belongs to
func (info *Info) Location() remoteurl.RemoteLocation {
	return remoteurl.RemoteLocation{Host: info.Host, Owner: info.Owner, Repository: info.Repo}
}

// BuildClonePath generates a clone directory name
// Format: {host}-{owner}-{repo}
func (info *Info) BuildClonePath() string {
	host := strings.NewReplacer(":", "-", ".", "-").Replace(info.Host)
	return fmt.Sprintf("%s-%s-%s", host, info.Owner, info.Repo)
}

// String returns a human-readable string representation
func (info *Info) String() string {
	switch info.Kind {
	case KindPullRequest:
		return fmt.Sprintf("%s/%s!%d", info.Owner, info.Repo, info.Number)
	case KindIssue:
		return fmt.Sprintf("%s/%s#%s", info.Owner, info.Repo, info.IssueNumber)
	default:
		return info.Owner + "/" + info.Repo
	}
}

// Parser parses web URLs of the configured hosts
type Parser struct {
	mu    sync.RWMutex
	hosts []string
}

// NewParser creates a parser that accepts URLs of the given hosts. With no
// hosts, any host is accepted.
func NewParser(hosts ...string) *Parser {
	p := &Parser{}
	for _, h := range hosts {
		p.RegisterHost(h)
	}
	return p
}

// RegisterHost adds an accepted host, such as a self-hosted server
func (p *Parser) RegisterHost(host string) {
	host = strings.ToLower(remoteurl.HostFromURL(host))
	if host == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts = append(p.hosts, host)
}

func (p *Parser) accepts(rawURL string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.hosts) == 0 {
		return true
	}
	for _, h := range p.hosts {
		if remoteurl.IsHostedURL(rawURL, h) {
			return true
		}
	}
	return false
}

// Parse parses a web URL and returns its Info
// Supported formats:
// - repository: https://gitee.com/owner/repo
// - pull request: https://gitee.com/owner/repo/pulls/123
// - issue: https://gitee.com/owner/repo/issues/I1ABCD
func (p *Parser) Parse(rawURL string) (*Info, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, invalid("empty URL", rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRemoteURL, "invalid URL format", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid("not a web URL", rawURL)
	}
	host := strings.ToLower(u.Host)
	if host == "" {
		return nil, invalid("missing host in URL", rawURL)
	}
	if !p.accepts(rawURL) {
		return nil, invalid("unsupported host "+host, rawURL)
	}

	info := &Info{Host: host, OriginalURL: rawURL}
	path := u.EscapedPath()

	if m := pullPattern.FindStringSubmatch(path); m != nil {
		number, err := strconv.Atoi(m[3])
		if err != nil || number <= 0 {
			return nil, invalid("invalid pull request number "+m[3], rawURL)
		}
		info.Kind, info.Owner, info.Repo, info.Number = KindPullRequest, m[1], m[2], number
		return unescape(info, rawURL)
	}
	if m := issuePattern.FindStringSubmatch(path); m != nil {
		info.Kind, info.Owner, info.Repo, info.IssueNumber = KindIssue, m[1], m[2], m[3]
		return unescape(info, rawURL)
	}
	if m := repoPattern.FindStringSubmatch(path); m != nil {
		info.Kind, info.Owner, info.Repo = KindRepository, m[1], m[2]
		return unescape(info, rawURL)
	}
	return nil, invalid("unrecognized path "+u.Path, rawURL)
}

func unescape(info *Info, rawURL string) (*Info, error) {
	owner, err := url.PathUnescape(info.Owner)
	if err != nil {
		return nil, invalid("invalid owner", rawURL)
	}
	repo, err := url.PathUnescape(info.Repo)
	if err != nil {
		return nil, invalid("invalid repository", rawURL)
	}
	info.Owner, info.Repo = owner, repo
	return info, nil
}

func invalid(reason, rawURL string) error {
	return apperrors.New(apperrors.ErrCodeRemoteURL, reason).WithDetails(map[string]string{"url": rawURL})
}

// DefaultParser accepts the public service hosts
var DefaultParser = NewParser(consts.DefaultHost, "gitee.com")

// Parse is a convenience function using the default parser
func Parse(rawURL string) (*Info, error) {
	return DefaultParser.Parse(rawURL)
}
