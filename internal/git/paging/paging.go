// Package paging walks the hosting service's paginated list endpoints.
//
// Pages are requested strictly one after another because page N+1 is only
// known from page N's response. Cancellation is checked at every page
// boundary. Items keep server order; nothing is reordered or deduplicated.
package paging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomnomnom/linkheader"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/rest"
	"github.com/verustcode/giteebridge/pkg/idgen"
	"github.com/verustcode/giteebridge/pkg/logger"
	"github.com/verustcode/giteebridge/pkg/telemetry"
)

// DefaultPerPage is the page size requested when none is configured
const DefaultPerPage = 100

// totalPageHeaders carry the page count when no Link header is sent.
var totalPageHeaders = []string{"Total_page", "X-Total-Pages"}

// PageRequest describes one logical collection. It holds no fetch state and
// can be reused across fetches.
type PageRequest[T any] struct {
	// URL of the first page
	URL string
	// Decode turns one page body into items
	Decode func([]byte) ([]T, error)
	// Header is added to every page request
	Header http.Header
	// PerPage overrides the fetcher's page size; negative leaves the URL alone
	PerPage int
	// NotFoundAsEmpty turns a 404 on the first page into an empty result,
	// for optional sub-resources
	NotFoundAsEmpty bool
}

// PageResponse is one decoded page and the link to the next one, if any.
type PageResponse[T any] struct {
	Items       []T
	NextPageURL string
}

// Fetcher drives page requests through an Executor.
type Fetcher struct {
	exec     rest.Executor
	perPage  int
	maxPages int
	metrics  *telemetry.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPerPage sets the default page size.
func WithPerPage(n int) Option {
	return func(f *Fetcher) { f.perPage = n }
}

// WithMaxPages stops every fetch after n pages; 0 means no limit.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) { f.maxPages = n }
}

// NewFetcher creates a Fetcher.
func NewFetcher(exec rest.Executor, opts ...Option) *Fetcher {
	f := &Fetcher{
		exec:    exec,
		perPage: DefaultPerPage,
		metrics: telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Executor returns the underlying executor.
func (f *Fetcher) Executor() rest.Executor {
	return f.exec
}

// JSONDecoder decodes a page body that is a JSON array of T.
func JSONDecoder[T any]() func([]byte) ([]T, error) {
	return func(body []byte) ([]T, error) {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
}

// FirstPageURL returns req.URL with the page size applied.
func FirstPageURL[T any](f *Fetcher, req PageRequest[T]) string {
	perPage := f.perPage
	if req.PerPage != 0 {
		perPage = req.PerPage
	}
	if perPage <= 0 {
		return req.URL
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return req.URL
	}
	q := u.Query()
	if q.Get("per_page") != "" {
		return req.URL
	}
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage performs one round trip for pageURL. first marks the first page
// of a fetch, where NotFoundAsEmpty applies.
func FetchPage[T any](ctx context.Context, f *Fetcher, req PageRequest[T], pageURL string, first bool) (*PageResponse[T], error) {
	restReq := rest.NewRequest(http.MethodGet, pageURL)
	for k, vs := range req.Header {
		restReq.Header[k] = append([]string(nil), vs...)
	}

	resp, err := f.exec.Execute(ctx, restReq)
	if err != nil {
		return nil, err
	}
	if first && req.NotFoundAsEmpty && resp.StatusCode == http.StatusNotFound {
		return &PageResponse[T]{}, nil
	}
	if err := rest.CheckStatus(restReq, resp); err != nil {
		return nil, err
	}

	decode := req.Decode
	if decode == nil {
		decode = JSONDecoder[T]()
	}
	items, err := decode(resp.Body)
	if err != nil {
		var de *rest.DecodeError
		if !errors.As(err, &de) {
			err = &rest.DecodeError{URL: pageURL, Err: err}
		}
		return nil, err
	}

	return &PageResponse[T]{
		Items:       items,
		NextPageURL: nextPageURL(pageURL, resp.Header),
	}, nil
}

// nextPageURL prefers a Link rel="next" entry, resolved against the current
// URL, then falls back to a total page count header.
func nextPageURL(current string, header http.Header) string {
	base, err := url.Parse(current)
	if err != nil {
		return ""
	}

	for _, link := range linkheader.Parse(header.Get("Link")) {
		for _, rel := range strings.Fields(link.Rel) {
			if !strings.EqualFold(rel, "next") {
				continue
			}
			ref, err := url.Parse(link.URL)
			if err != nil {
				return ""
			}
			return base.ResolveReference(ref).String()
		}
	}

	for _, name := range totalPageHeaders {
		v := header.Get(name)
		if v == "" {
			continue
		}
		total, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ""
		}
		q := base.Query()
		page := 1
		if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
			page = p
		}
		if page >= total {
			return ""
		}
		q.Set("page", strconv.Itoa(page+1))
		next := *base
		next.RawQuery = q.Encode()
		return next.String()
	}
	return ""
}

// pager holds the state of one fetch.
type pager[T any] struct {
	ctx   context.Context
	f     *Fetcher
	req   PageRequest[T]
	next  string
	pages int
	done  bool
	id    string
	log   *zap.Logger
}

func newPager[T any](ctx context.Context, f *Fetcher, req PageRequest[T]) *pager[T] {
	id := idgen.NewFetchID()
	return &pager[T]{
		ctx:  ctx,
		f:    f,
		req:  req,
		next: FirstPageURL(f, req),
		id:   id,
		log:  logger.Named("paging").With(zap.String("fetch_id", id)),
	}
}

// nextPage fetches the next page. After an error or the last page, done is set.
func (p *pager[T]) nextPage() ([]T, error) {
	if err := rest.CheckCancelled(p.ctx); err != nil {
		p.done = true
		return nil, err
	}

	current := p.next
	ctx, span := telemetry.StartSpan(p.ctx, "gitee page", trace.WithAttributes(
		telemetry.AttrFetchID.String(p.id),
		telemetry.AttrPageIndex.Int(p.pages+1),
	))
	defer span.End()

	resp, err := FetchPage(ctx, p.f, p.req, current, p.pages == 0)
	if err != nil {
		p.done = true
		telemetry.SetSpanError(span, err)
		p.log.Debug("Page fetch failed",
			zap.Int("page", p.pages+1),
			zap.Error(err),
		)
		return nil, err
	}
	p.pages++
	span.SetAttributes(telemetry.AttrPageItems.Int(len(resp.Items)))
	p.f.metrics.RecordPage(ctx, len(resp.Items))

	switch {
	case len(resp.Items) == 0, resp.NextPageURL == "", resp.NextPageURL == current:
		p.done = true
	case p.f.maxPages > 0 && p.pages >= p.f.maxPages:
		p.done = true
		p.log.Warn("Stopping paged fetch at page limit",
			zap.Int("max_pages", p.f.maxPages),
		)
	default:
		p.next = resp.NextPageURL
	}

	p.log.Debug("Fetched page",
		zap.Int("page", p.pages),
		zap.Int("items", len(resp.Items)),
		zap.Bool("last", p.done),
	)
	return resp.Items, nil
}

// LoadAll returns every item of every page in server order.
//
// Transport, status and decode failures on any page return a nil slice.
// On cancellation the items gathered so far are returned together with an
// error for which rest.IsCancelled holds.
func LoadAll[T any](ctx context.Context, f *Fetcher, req PageRequest[T]) ([]T, error) {
	p := newPager(ctx, f, req)
	var all []T
	for !p.done {
		items, err := p.nextPage()
		if err != nil {
			if rest.IsCancelled(err) {
				return all, err
			}
			return nil, err
		}
		all = append(all, items...)
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}
