package paging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

const baseURL = "https://git.oschina.net/api/v3/user/repos"

type item struct {
	ID int `json:"id"`
}

// fakePage is what the fake executor serves for one page number.
type fakePage struct {
	items  []item
	header http.Header
	status int
	err    error
	body   string
}

type fakeExecutor struct {
	pages  map[string]fakePage
	calls  []string
	onCall func(n int)
}

func (f *fakeExecutor) Execute(ctx context.Context, req *rest.Request) (*rest.Response, error) {
	f.calls = append(f.calls, req.URL)
	if f.onCall != nil {
		defer f.onCall(len(f.calls))
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	page := u.Query().Get("page")
	if page == "" {
		page = "1"
	}
	p, ok := f.pages[page]
	if !ok {
		return &rest.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
	}
	if p.err != nil {
		return nil, p.err
	}

	body := []byte(p.body)
	if p.body == "" {
		body, _ = json.Marshal(p.items)
	}
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	header := p.header
	if header == nil {
		header = http.Header{}
	}
	return &rest.Response{StatusCode: status, Header: header, Body: body}, nil
}

func items(ids ...int) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id}
	}
	return out
}

func ids(in []item) []int {
	out := make([]int, len(in))
	for i, it := range in {
		out[i] = it.ID
	}
	return out
}

func linkNext(page int) http.Header {
	h := http.Header{}
	h.Set("Link", fmt.Sprintf(`<%s?page=%d&per_page=2>; rel="next", <%s?page=3&per_page=2>; rel="last"`, baseURL, page, baseURL))
	return h
}

// threePages serves 2/2/1 items with next links on the first two pages.
func threePages() *fakeExecutor {
	return &fakeExecutor{pages: map[string]fakePage{
		"1": {items: items(1, 2), header: linkNext(2)},
		"2": {items: items(3, 4), header: linkNext(3)},
		"3": {items: items(5)},
	}}
}

func newRequest() PageRequest[item] {
	return PageRequest[item]{URL: baseURL, Decode: JSONDecoder[item]()}
}

func TestLoadAll_FollowsNextLinks(t *testing.T) {
	exec := threePages()
	f := NewFetcher(exec, WithPerPage(2))

	got, err := LoadAll(context.Background(), f, newRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(got))
	assert.Len(t, exec.calls, 3)
	assert.Equal(t, baseURL+"?per_page=2", exec.calls[0])
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestLoadAll_PageSpans(t *testing.T) {
	rec := recordSpans(t)

	_, err := LoadAll(context.Background(), NewFetcher(threePages(), WithPerPage(2)), newRequest())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 3)
	fetchID := spanAttr(spans[0], telemetry.AttrFetchID).AsString()
	assert.NotEmpty(t, fetchID)
	for i, span := range spans {
		assert.Equal(t, "gitee page", span.Name())
		assert.Equal(t, fetchID, spanAttr(span, telemetry.AttrFetchID).AsString())
		assert.Equal(t, int64(i+1), spanAttr(span, telemetry.AttrPageIndex).AsInt64())
	}
	assert.Equal(t, []int64{2, 2, 1}, []int64{
		spanAttr(spans[0], telemetry.AttrPageItems).AsInt64(),
		spanAttr(spans[1], telemetry.AttrPageItems).AsInt64(),
		spanAttr(spans[2], telemetry.AttrPageItems).AsInt64(),
	})
}

func TestLoadAll_FailedPageSpan(t *testing.T) {
	rec := recordSpans(t)
	exec := threePages()
	exec.pages["2"] = fakePage{status: http.StatusInternalServerError, body: `{"message":"boom"}`}

	_, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, int64(2), spanAttr(spans[1], telemetry.AttrPageIndex).AsInt64())
}

func TestLoadAll_TransportFailureOnLaterPage(t *testing.T) {
	exec := threePages()
	dialErr := &rest.TransportError{Method: http.MethodGet, URL: baseURL, Err: errors.New("connection reset")}
	exec.pages["2"] = fakePage{err: dialErr}

	got, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, dialErr)
	assert.False(t, rest.IsCancelled(err))
	assert.Len(t, exec.calls, 2)
}

func TestLoadAll_TransportFailureOnFirstPage(t *testing.T) {
	exec := &fakeExecutor{pages: map[string]fakePage{
		"1": {err: &rest.TransportError{Err: errors.New("no route to host")}},
	}}

	got, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	assert.Nil(t, got)
	var te *rest.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestLoadAll_CancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := threePages()
	exec.onCall = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	got, err := LoadAll(ctx, NewFetcher(exec), newRequest())
	require.Error(t, err)
	assert.True(t, rest.IsCancelled(err))
	assert.ErrorIs(t, err, rest.ErrCancelled)
	assert.Equal(t, []int{1, 2}, ids(got))
	assert.Len(t, exec.calls, 1)
}

func TestLoadAll_CancelledBeforeFirstPage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := threePages()
	got, err := LoadAll(ctx, NewFetcher(exec), newRequest())
	assert.True(t, rest.IsCancelled(err))
	assert.Empty(t, got)
	assert.Empty(t, exec.calls)
}

func TestLoadAll_StatusFailureOnLaterPage(t *testing.T) {
	exec := threePages()
	exec.pages["2"] = fakePage{status: http.StatusInternalServerError, body: `{"message":"boom"}`}

	got, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	assert.Nil(t, got)
	var se *rest.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Message())
}

func TestLoadAll_NotFound(t *testing.T) {
	exec := &fakeExecutor{pages: map[string]fakePage{}}

	t.Run("optional sub-resource", func(t *testing.T) {
		req := newRequest()
		req.NotFoundAsEmpty = true
		got, err := LoadAll(context.Background(), NewFetcher(exec), req)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("mandatory resource", func(t *testing.T) {
		_, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
		assert.True(t, rest.IsNotFound(err))
	})

	t.Run("later page 404 is a failure", func(t *testing.T) {
		exec := &fakeExecutor{pages: map[string]fakePage{
			"1": {items: items(1), header: linkNext(2)},
		}}
		req := newRequest()
		req.NotFoundAsEmpty = true
		got, err := LoadAll(context.Background(), NewFetcher(exec), req)
		assert.Nil(t, got)
		assert.True(t, rest.IsNotFound(err))
	})
}

func TestLoadAll_DecodeFailure(t *testing.T) {
	exec := &fakeExecutor{pages: map[string]fakePage{
		"1": {body: `{"message":"not a list"}`},
	}}

	_, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	var de *rest.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.URL, baseURL)
}

func TestLoadAll_CustomDecodeErrorKept(t *testing.T) {
	exec := threePages()
	want := &rest.DecodeError{URL: "x", Err: errors.New("missing id")}
	req := PageRequest[item]{
		URL:    baseURL,
		Decode: func([]byte) ([]item, error) { return nil, want },
	}

	_, err := LoadAll(context.Background(), NewFetcher(exec), req)
	assert.Same(t, want, err)
}

func TestLoadAll_EmptyPageStops(t *testing.T) {
	exec := &fakeExecutor{pages: map[string]fakePage{
		"1": {items: items(1), header: linkNext(2)},
		"2": {items: items(), header: linkNext(3)},
		"3": {items: items(9)},
	}}

	got, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))
	assert.Len(t, exec.calls, 2)
}

func TestLoadAll_TotalPageHeader(t *testing.T) {
	total := http.Header{}
	total.Set("total_page", "3")
	exec := &fakeExecutor{pages: map[string]fakePage{
		"1": {items: items(1), header: total},
		"2": {items: items(2), header: total},
		"3": {items: items(3), header: total},
	}}

	got, err := LoadAll(context.Background(), NewFetcher(exec), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(got))
	assert.Len(t, exec.calls, 3)
	assert.Contains(t, exec.calls[2], "page=3")
}

func TestLoadAll_MaxPages(t *testing.T) {
	exec := threePages()
	got, err := LoadAll(context.Background(), NewFetcher(exec, WithMaxPages(2)), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(got))
}

func TestLoadAll_SelfLinkStops(t *testing.T) {
	self := http.Header{}
	self.Set("Link", `<`+baseURL+`>; rel="next"`)
	exec := &fakeExecutor{pages: map[string]fakePage{"1": {items: items(1), header: self}}}

	got, err := LoadAll(context.Background(), NewFetcher(exec, WithPerPage(-1)), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))
	assert.Len(t, exec.calls, 1)
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name    string
		current string
		header  map[string]string
		want    string
	}{
		{
			name:    "absolute link",
			current: baseURL + "?page=1",
			header:  map[string]string{"Link": `<https://git.oschina.net/api/v3/user/repos?page=2>; rel="next"`},
			want:    "https://git.oschina.net/api/v3/user/repos?page=2",
		},
		{
			name:    "relative link",
			current: baseURL + "?page=1",
			header:  map[string]string{"Link": `</api/v3/user/repos?page=2>; rel="next"`},
			want:    "https://git.oschina.net/api/v3/user/repos?page=2",
		},
		{
			name:    "only prev and last",
			current: baseURL + "?page=3",
			header:  map[string]string{"Link": `<` + baseURL + `?page=2>; rel="prev", <` + baseURL + `?page=3>; rel="last"`},
			want:    "",
		},
		{
			name:    "total page with per_page kept",
			current: baseURL + "?per_page=20",
			header:  map[string]string{"total_page": "2"},
			want:    baseURL + "?page=2&per_page=20",
		},
		{
			name:    "total page reached",
			current: baseURL + "?page=2",
			header:  map[string]string{"X-Total-Pages": "2"},
			want:    "",
		},
		{
			name:    "garbage total",
			current: baseURL,
			header:  map[string]string{"total_page": "many"},
			want:    "",
		},
		{name: "no headers", current: baseURL, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.header {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, nextPageURL(tt.current, h))
		})
	}
}

func TestFirstPageURL(t *testing.T) {
	f := NewFetcher(nil, WithPerPage(50))

	assert.Equal(t, baseURL+"?per_page=50", FirstPageURL(f, PageRequest[item]{URL: baseURL}))
	assert.Equal(t, baseURL+"?per_page=10", FirstPageURL(f, PageRequest[item]{URL: baseURL, PerPage: 10}))
	assert.Equal(t, baseURL+"?per_page=5", FirstPageURL(f, PageRequest[item]{URL: baseURL + "?per_page=5"}))
	assert.Equal(t, baseURL, FirstPageURL(f, PageRequest[item]{URL: baseURL, PerPage: -1}))
	assert.Equal(t, baseURL+"?per_page=50&state=open", FirstPageURL(f, PageRequest[item]{URL: baseURL + "?state=open"}))
}

func TestFetchPage_SendsHeaders(t *testing.T) {
	var seen http.Header
	exec := rest.ExecutorFunc(func(ctx context.Context, req *rest.Request) (*rest.Response, error) {
		seen = req.Header
		return &rest.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(`[{"id":7}]`)}, nil
	})
	req := newRequest()
	req.Header = http.Header{"X-Trace": []string{"abc"}}

	page, err := FetchPage(context.Background(), NewFetcher(exec), req, baseURL, true)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, ids(page.Items))
	assert.Empty(t, page.NextPageURL)
	assert.Equal(t, "abc", seen.Get("X-Trace"))
}
