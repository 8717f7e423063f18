// Package crawl turns an already published documentation site into index
// sources. Pages are discovered through the site's sitemap or, when there is
// none, by following links from the base page.
package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/docindex"
	"golang.org/x/sync/errgroup"
)

// Crawl defaults.
const (
	DefaultConcurrency = 4
	DefaultMaxPages    = 5000

	// frontierFalsePositiveRate is the acceptable false positive rate for
	// URL deduplication.
	frontierFalsePositiveRate = 0.001
)

// Ensure SiteSource implements docindex.SourceProvider at compile time.
var _ docindex.SourceProvider = (*SiteSource)(nil)

// SiteSource lists the rendered HTML pages of a published site.
//
// Pages whose fetch fails after retries are skipped and reported through
// OnFailure. Two URLs mapping to the same docname (install and install.html)
// yield one source, the first in discovery order.
type SiteSource struct {
	BaseURL  string
	Sitemaps docindex.SitemapService
	Fetcher  docindex.Fetcher

	// Links enables link walking for sites without a sitemap. Optional.
	Links docindex.LinkExtractor
	// Limiter spaces requests per host. Optional.
	Limiter docindex.DomainLimiter
	// Filter restricts discovered URLs. Optional.
	Filter *docindex.URLFilter

	Concurrency int
	MaxPages    int
	RetryDelays []time.Duration

	OnFailure func(pageURL string, err error)
}

// fetched is the outcome of fetching one page.
type fetched struct {
	url  string
	body string
	err  error
}

// Sources implements docindex.SourceProvider.
// Returns ENOTFOUND when no page could be discovered or fetched.
func (s *SiteSource) Sources(ctx context.Context) ([]*docindex.SourceFile, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, docindex.Errorf(docindex.EINVALID, "invalid site URL %q", s.BaseURL)
	}

	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	frontier := NewFrontier(uint(max(maxPages, 1000)), frontierFalsePositiveRate)

	var urls []string
	if s.Sitemaps != nil {
		urls, err = s.Sitemaps.DiscoverURLs(ctx, base.String(), s.Filter)
		if err != nil {
			return nil, err
		}
	}

	var pages []fetched
	switch {
	case len(urls) > 0:
		for _, u := range urls {
			if inScope(base, u) && !docindex.GeneratedPage(docindex.FrameworkUnknown, u) {
				frontier.Push(u)
			}
		}
		pages, err = s.fetchAll(ctx, frontier.Drain(maxPages))
	case s.Links != nil:
		pages, err = s.walk(ctx, base, frontier, maxPages)
	default:
		return nil, docindex.Errorf(docindex.ENOTFOUND, "no sitemap found for %s", base)
	}
	if err != nil {
		return nil, err
	}

	files := make([]*docindex.SourceFile, 0, len(pages))
	names := make(map[string]bool, len(pages))
	for _, p := range pages {
		docname, filename, ok := PageName(base, p.url)
		if !ok || names[docname] {
			continue
		}
		names[docname] = true
		files = append(files, &docindex.SourceFile{
			DocName:  docname,
			Filename: filename,
			Content:  []byte(p.body),
		})
	}
	if len(files) == 0 {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "no pages fetched from %s", base)
	}
	return files, nil
}

// walk fetches pages breadth first from the base page, following the links
// of every fetched page that stay below base.
func (s *SiteSource) walk(ctx context.Context, base *url.URL, frontier *Frontier, maxPages int) ([]fetched, error) {
	frontier.Push(base.String())

	var pages []fetched
	for len(pages) < maxPages {
		level := frontier.Drain(maxPages - len(pages))
		if len(level) == 0 {
			break
		}
		results, err := s.fetchAll(ctx, level)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			pages = append(pages, r)
			links, err := s.Links.ExtractLinks(r.body, r.url)
			if err != nil {
				continue
			}
			for _, link := range links {
				if inScope(base, link) && s.Filter.Match(link) {
					frontier.Push(link)
				}
			}
		}
	}
	return pages, nil
}

// fetchAll fetches urls concurrently and returns the successful pages in
// the order of urls. Failures are reported through OnFailure.
func (s *SiteSource) fetchAll(ctx context.Context, urls []string) ([]fetched, error) {
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	results := make([]fetched, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = s.fetch(gctx, u, delays)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := results[:0]
	for _, r := range results {
		if r.err != nil {
			if s.OnFailure != nil {
				s.OnFailure(r.url, r.err)
			}
			continue
		}
		pages = append(pages, r)
	}
	return pages, nil
}

func (s *SiteSource) fetch(ctx context.Context, pageURL string, delays []time.Duration) fetched {
	body, err := Retry(ctx, delays, func() (string, error) {
		if s.Limiter != nil {
			u, err := url.Parse(pageURL)
			if err != nil {
				return "", docindex.Errorf(docindex.EINVALID, "invalid page URL %q", pageURL)
			}
			if err := s.Limiter.Wait(ctx, u.Hostname()); err != nil {
				return "", err
			}
		}
		return s.Fetcher.Fetch(ctx, pageURL)
	})
	return fetched{url: pageURL, body: body, err: err}
}
