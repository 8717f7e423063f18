package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docindex"
)

// maxSitemapDepth bounds how deeply sitemap indexes may nest.
const maxSitemapDepth = 3

// Ensure SitemapService implements docindex.SitemapService.
var _ docindex.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemaps.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the page URLs listed in the site's sitemaps, in
// sitemap order without duplicates. Returns an empty slice (not nil) when the
// site publishes no sitemap.
//
// Sitemaps are located through robots.txt, then /sitemap.xml at the site
// root, then sitemap.xml under the base path where documentation generators
// commonly write it. Only URLs below the base path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docindex.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, docindex.Errorf(docindex.EINVALID, "invalid base URL %q", baseURL)
	}

	c := &collector{
		svc:          s,
		base:         base,
		filter:       filter,
		seenSitemaps: make(map[string]bool),
		seenURLs:     make(map[string]bool),
		urls:         []string{},
	}

	// Every sitemap named in robots.txt contributes; the conventional
	// locations are only tried until one of them yields pages.
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	if listed, err := s.sitemapsFromRobots(ctx, root.JoinPath("robots.txt").String()); err == nil {
		for _, sitemapURL := range listed {
			if err := c.collect(ctx, sitemapURL); err != nil {
				return nil, err
			}
		}
	}
	fallbacks := []string{root.JoinPath("sitemap.xml").String()}
	if p := strings.Trim(base.Path, "/"); p != "" {
		fallbacks = append(fallbacks, root.JoinPath(p, "sitemap.xml").String())
	}
	for _, sitemapURL := range fallbacks {
		if len(c.urls) > 0 {
			break
		}
		if err := c.collect(ctx, sitemapURL); err != nil {
			return nil, err
		}
	}

	return c.urls, nil
}

// collector accumulates in-scope page URLs across sitemaps.
type collector struct {
	svc          *SitemapService
	base         *url.URL
	filter       *docindex.URLFilter
	seenSitemaps map[string]bool
	seenURLs     map[string]bool
	urls         []string
}

// collect adds the pages of one sitemap. Missing sitemaps are ignored.
func (c *collector) collect(ctx context.Context, sitemapURL string) error {
	found, err := c.svc.processSitemap(ctx, sitemapURL, c.seenSitemaps, 0)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if docindex.ErrorCode(err) == docindex.ENOTFOUND {
			return nil
		}
		return err
	}
	for _, u := range found {
		if c.seenURLs[u] || !matchesPathPrefix(u, c.base.Path) || !c.filter.Match(u) {
			continue
		}
		c.seenURLs[u] = true
		c.urls = append(c.urls, u)
	}
	return nil
}

// matchesPathPrefix reports whether the URL's path lies below prefix,
// respecting path boundaries: /docs matches /docs/intro but not /documentation.
func matchesPathPrefix(rawURL, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return parsed.Path == prefix || strings.HasPrefix(parsed.Path, prefix+"/")
}

// sitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) sitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// processSitemap fetches a urlset or sitemapindex document and returns the
// page URLs it lists, following nested indexes.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || depth > maxSitemapDepth {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, docindex.Errorf(docindex.EINVALID, "malformed sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, docindex.Errorf(docindex.EINVALID, "empty sitemap %s", sitemapURL)
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}

	var urls []string
	for _, nested := range locs(root, "sitemap") {
		found, err := s.processSitemap(ctx, nested, seen, depth+1)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}
	return urls, nil
}

// locs returns the trimmed <loc> values of the named child elements.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// get issues a GET request. A 404 returns ENOTFOUND.
func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, docindex.Errorf(docindex.ENOTFOUND, "%s not found", target)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}
