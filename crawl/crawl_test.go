package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/crawl"
	"github.com/fwojciec/docindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const site = "https://docs.example.com/en/latest/"

// pageFetcher serves "<page URL>" as the body of every page except those in missing.
func pageFetcher(missing ...string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			for _, m := range missing {
				if url == m {
					return "", docindex.Errorf(docindex.ENOTFOUND, "%s not found", url)
				}
			}
			return "<html>" + url + "</html>", nil
		},
	}
}

func sitemap(urls ...string) *mock.SitemapService {
	return &mock.SitemapService{
		DiscoverURLsFn: func(context.Context, string, *docindex.URLFilter) ([]string, error) {
			return urls, nil
		},
	}
}

func names(files []*docindex.SourceFile) (docnames, filenames []string) {
	for _, f := range files {
		docnames = append(docnames, f.DocName)
		filenames = append(filenames, f.Filename)
	}
	return docnames, filenames
}

func TestSiteSource_Sources(t *testing.T) {
	t.Parallel()

	t.Run("fetches sitemap pages below the base", func(t *testing.T) {
		t.Parallel()

		var failed []string
		src := &crawl.SiteSource{
			BaseURL: site,
			Sitemaps: sitemap(
				site,
				site+"install.html",
				site+"install",
				"https://docs.example.com/en/stable/install.html",
				site+"api.html",
				site+"guide/",
			),
			Fetcher:     pageFetcher(site + "api.html"),
			RetryDelays: []time.Duration{},
			OnFailure: func(url string, err error) {
				assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
				failed = append(failed, url)
			},
		}

		files, err := src.Sources(context.Background())

		require.NoError(t, err)
		docnames, filenames := names(files)
		assert.Equal(t, []string{"index", "install", "guide/index"}, docnames)
		assert.Equal(t, []string{"index.html", "install.html", "guide/index.html"}, filenames)
		assert.Equal(t, "<html>"+site+"install.html</html>", string(files[1].Content))
		assert.Equal(t, []string{site + "api.html"}, failed)
	})

	t.Run("leaves out generated sitemap pages", func(t *testing.T) {
		t.Parallel()

		var fetchedURLs []string
		var mu sync.Mutex
		fetcher := pageFetcher()
		src := &crawl.SiteSource{
			BaseURL: site,
			Sitemaps: sitemap(
				site+"index.html",
				site+"genindex.html",
				site+"search.html",
				site+"py-modindex.html",
				site+"_sources/index.rst.txt",
				site+"_static/searchtools.js",
				site+"usage.html",
			),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					mu.Lock()
					fetchedURLs = append(fetchedURLs, url)
					mu.Unlock()
					return fetcher.Fetch(ctx, url)
				},
			},
			RetryDelays: []time.Duration{},
		}

		files, err := src.Sources(context.Background())

		require.NoError(t, err)
		docnames, _ := names(files)
		assert.Equal(t, []string{"index", "usage"}, docnames)
		assert.ElementsMatch(t, []string{site + "index.html", site + "usage.html"}, fetchedURLs)
	})

	t.Run("walks links when there is no sitemap", func(t *testing.T) {
		t.Parallel()

		links := map[string][]string{
			site:            {site + "a.html", site + "b.html", "https://docs.example.com/blog/"},
			site + "a.html": {site + "b.html#part", site + "c.html"},
		}
		src := &crawl.SiteSource{
			BaseURL:  site,
			Sitemaps: sitemap(),
			Fetcher:  pageFetcher(),
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(html, pageURL string) ([]string, error) {
					assert.Contains(t, html, pageURL)
					return links[pageURL], nil
				},
			},
			RetryDelays: []time.Duration{},
		}

		files, err := src.Sources(context.Background())

		require.NoError(t, err)
		docnames, _ := names(files)
		assert.Equal(t, []string{"index", "a", "b", "c"}, docnames)
	})

	t.Run("stops walking at MaxPages", func(t *testing.T) {
		t.Parallel()

		src := &crawl.SiteSource{
			BaseURL: site,
			Fetcher: pageFetcher(),
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(_, pageURL string) ([]string, error) {
					return []string{strings.TrimSuffix(pageURL, ".html") + "x.html"}, nil
				},
			},
			MaxPages:    3,
			RetryDelays: []time.Duration{},
		}

		files, err := src.Sources(context.Background())

		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("waits on the limiter for every request", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var hosts []string
		src := &crawl.SiteSource{
			BaseURL:  site,
			Sitemaps: sitemap(site+"a.html", site+"b.html"),
			Fetcher:  pageFetcher(),
			Limiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					mu.Lock()
					defer mu.Unlock()
					hosts = append(hosts, domain)
					return nil
				},
			},
			RetryDelays: []time.Duration{},
		}

		_, err := src.Sources(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"docs.example.com", "docs.example.com"}, hosts)
	})

	t.Run("passes the filter to sitemap discovery", func(t *testing.T) {
		t.Parallel()

		filter := &docindex.URLFilter{}
		var got *docindex.URLFilter
		src := &crawl.SiteSource{
			BaseURL: site,
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, baseURL string, f *docindex.URLFilter) ([]string, error) {
					assert.Equal(t, site, baseURL)
					got = f
					return []string{site}, nil
				},
			},
			Fetcher:     pageFetcher(),
			Filter:      filter,
			RetryDelays: []time.Duration{},
		}

		_, err := src.Sources(context.Background())

		require.NoError(t, err)
		assert.Same(t, filter, got)
	})

	t.Run("no sitemap and no link walking is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		src := &crawl.SiteSource{BaseURL: site, Sitemaps: sitemap(), Fetcher: pageFetcher()}

		_, err := src.Sources(context.Background())

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})

	t.Run("every fetch failing is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		src := &crawl.SiteSource{
			BaseURL:     site,
			Sitemaps:    sitemap(site + "a.html"),
			Fetcher:     pageFetcher(site + "a.html"),
			RetryDelays: []time.Duration{},
		}

		_, err := src.Sources(context.Background())

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
	})

	t.Run("sitemap errors are returned", func(t *testing.T) {
		t.Parallel()

		src := &crawl.SiteSource{
			BaseURL: site,
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(context.Context, string, *docindex.URLFilter) ([]string, error) {
					return nil, errors.New("boom")
				},
			},
			Fetcher: pageFetcher(),
		}

		_, err := src.Sources(context.Background())

		require.EqualError(t, err, "boom")
	})

	t.Run("rejects invalid base URLs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "docs.example.com", "ftp://docs.example.com/"} {
			_, err := (&crawl.SiteSource{BaseURL: raw}).Sources(context.Background())

			require.Error(t, err, raw)
			assert.Equal(t, docindex.EINVALID, docindex.ErrorCode(err), raw)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		src := &crawl.SiteSource{
			BaseURL:  site,
			Sitemaps: sitemap(site + "a.html"),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, _ string) (string, error) {
					cancel()
					return "", ctx.Err()
				},
			},
			RetryDelays: []time.Duration{},
		}

		_, err := src.Sources(ctx)

		require.ErrorIs(t, err, context.Canceled)
	})
}
