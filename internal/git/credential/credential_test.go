package credential

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/giteebridge/internal/git/remoteurl"
)

func TestParseRequest(t *testing.T) {
	in := "protocol=https\nhost=git.oschina.net\npath=alice/demo.git\nwwwauth[]=Basic\n\nignored=after-blank\n"

	req, err := ParseRequest(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "https", req.Protocol)
	assert.Equal(t, "git.oschina.net", req.Host)
	assert.Equal(t, "alice/demo.git", req.Path)
	assert.Equal(t, map[string]string{"wwwauth[]": "Basic"}, req.Extra)
	assert.Equal(t, "https://git.oschina.net/alice/demo.git", req.URL())
}

func TestParseRequest_URLAttribute(t *testing.T) {
	req, err := ParseRequest(strings.NewReader("url=https://bob@git.example.com:8443/o/r.git\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "https", req.Protocol)
	assert.Equal(t, "git.example.com:8443", req.Host)
	assert.Equal(t, "o/r.git", req.Path)
	assert.Equal(t, "bob", req.Username)
}

func TestParseRequest_Invalid(t *testing.T) {
	_, err := ParseRequest(strings.NewReader("no-equals-sign\n"))
	assert.Error(t, err)

	_, err = ParseRequest(strings.NewReader("url=%zz\n"))
	assert.Error(t, err)
}

func TestRequest_WriteTo(t *testing.T) {
	req := &Request{Protocol: "https", Host: "h", Username: "u", Password: "p", Extra: map[string]string{"b": "2", "a": "1"}}
	var buf bytes.Buffer
	n, err := req.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "protocol=https\nhost=h\nusername=u\npassword=p\na=1\nb=2\n", buf.String())
	assert.Equal(t, int64(buf.Len()), n)
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	src := StaticSource{Username: "alice", Token: "tok"}

	creds, ok, err := src.Lookup(ctx, &Request{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Credentials{Username: "alice", Password: "tok"}, creds)

	_, ok, _ = src.Lookup(ctx, &Request{Username: "bob"})
	assert.False(t, ok, "another account is not answered")

	_, ok, _ = StaticSource{Username: "alice"}.Lookup(ctx, &Request{})
	assert.False(t, ok, "no token")
}

func newTestHelper() *Helper {
	return NewHelper(remoteurl.MustParseServerPath("https://git.oschina.net"), StaticSource{Username: "alice", Token: "tok"})
}

func TestHelper_Matches(t *testing.T) {
	h := newTestHelper()
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"https host", Request{Protocol: "https", Host: "git.oschina.net"}, true},
		{"host with port", Request{Protocol: "https", Host: "git.oschina.net:443"}, true},
		{"case insensitive", Request{Protocol: "HTTPS", Host: "Git.OSChina.net"}, true},
		{"http", Request{Protocol: "http", Host: "git.oschina.net"}, true},
		{"ssh protocol", Request{Protocol: "ssh", Host: "git.oschina.net"}, false},
		{"other host", Request{Protocol: "https", Host: "github.com"}, false},
		{"suffix host", Request{Protocol: "https", Host: "evil-git.oschina.net"}, false},
		{"empty host", Request{Protocol: "https"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Matches(&tt.req))
		})
	}
}

func TestHelper_RunGet(t *testing.T) {
	var out bytes.Buffer
	err := newTestHelper().Run(context.Background(), OpGet,
		strings.NewReader("protocol=https\nhost=git.oschina.net\npath=alice/demo.git\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "protocol=https\nhost=git.oschina.net\npath=alice/demo.git\nusername=alice\npassword=tok\n", out.String())
}

func TestHelper_RunForeignHost(t *testing.T) {
	var out bytes.Buffer
	err := newTestHelper().Run(context.Background(), OpGet, strings.NewReader("protocol=https\nhost=github.com\n"), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestHelper_RunStoreErase(t *testing.T) {
	for _, op := range []string{OpStore, OpErase, "capability"} {
		var out bytes.Buffer
		err := newTestHelper().Run(context.Background(), op,
			strings.NewReader("protocol=https\nhost=git.oschina.net\nusername=alice\npassword=tok\n"), &out)
		require.NoError(t, err, op)
		assert.Empty(t, out.String(), op)
	}
}

type failingSource struct{}

func (failingSource) Lookup(ctx context.Context, req *Request) (Credentials, bool, error) {
	return Credentials{}, false, errors.New("keyring locked")
}

func TestHelper_SourceError(t *testing.T) {
	h := NewHelper(remoteurl.DefaultServerPath(), failingSource{})
	var out bytes.Buffer
	err := h.Run(context.Background(), OpGet, strings.NewReader("protocol=https\nhost=git.oschina.net\n"), &out)
	assert.EqualError(t, err, "keyring locked")
	assert.Empty(t, out.String())
}
