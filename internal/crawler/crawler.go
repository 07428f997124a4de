// Package crawler fetches publication listing and detail pages into the
// corpus JSON shape the indexer consumes. It is a thin, polite fetcher:
// a bounded worker pool, a per-host delay derived from robots.txt, and a
// small retry budget per page.
package crawler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"

	"github.com/example/pubsearch/internal/corpus"
)

// defaultHostDelay is used when robots.txt is absent or its Crawl-delay
// directive cannot be parsed.
const defaultHostDelay = 2 * time.Second

const maxRetries = 3

// Options configures a Crawler run.
type Options struct {
	Concurrency int          // worker pool size; defaults to 4
	MaxPages    int          // stops discovery once this many pages are queued; 0 means unlimited
	HTTPClient  *http.Client // defaults to http.DefaultClient
}

// Crawler discovers and fetches publication pages starting from a seed
// listing URL, producing corpus.Document records.
type Crawler struct {
	opts   Options
	client *http.Client

	mu        sync.Mutex
	hostDelay map[string]time.Duration
	lastFetch map[string]time.Time
}

// New builds a Crawler with opts; zero-value fields fall back to defaults.
func New(opts Options) *Crawler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Crawler{
		opts:      opts,
		client:    opts.HTTPClient,
		hostDelay: make(map[string]time.Duration),
		lastFetch: make(map[string]time.Time),
	}
}

// pageTask is one detail page to fetch and parse.
type pageTask struct {
	url string
}

// Crawl fetches the listing page at seedURL, discovers detail page links
// from it, and fetches each with a bounded worker pool. Each worker paces
// requests to its target host with waitForHost, and makes up to maxRetries
// attempts at each page, with a growing backoff between them, before
// dropping it.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]corpus.Document, error) {
	links, err := c.discoverDetailLinks(ctx, seedURL)
	if err != nil {
		return nil, fmt.Errorf("discovering detail pages from %q: %w", seedURL, err)
	}
	if c.opts.MaxPages > 0 && len(links) > c.opts.MaxPages {
		links = links[:c.opts.MaxPages]
	}

	tasks := make(chan pageTask)
	results := make(chan corpus.Document, len(links))

	var wg sync.WaitGroup
	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				doc, err := c.fetchWithRetry(ctx, task.url)
				if err != nil {
					log.Printf("crawler: giving up on %s: %v", task.url, err)
					continue
				}
				results <- doc
			}
		}()
	}

	go func() {
		for _, link := range links {
			select {
			case tasks <- pageTask{url: link}:
			case <-ctx.Done():
				close(tasks)
				return
			}
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var docs []corpus.Document
	for doc := range results {
		docs = append(docs, doc)
	}
	return docs, ctx.Err()
}

// discoverDetailLinks fetches the seed listing page and returns every
// detail-page link found on it.
func (c *Crawler) discoverDetailLinks(ctx context.Context, seedURL string) ([]string, error) {
	doc, err := c.fetchDOM(ctx, seedURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, err := resolveURL(seedURL, href)
		if err == nil {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// fetchWithRetry fetches and parses one detail page, making up to
// maxRetries attempts in all, with a growing backoff between them.
func (c *Crawler) fetchWithRetry(ctx context.Context, pageURL string) (corpus.Document, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 250 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return corpus.Document{}, ctx.Err()
			}
		}

		c.waitForHost(ctx, pageURL)
		doc, err := c.fetchDOM(ctx, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		return parseDetailPage(doc, pageURL), nil
	}
	return corpus.Document{}, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// fetchDOM retrieves pageURL and parses it as an HTML DOM tree.
func (c *Crawler) fetchDOM(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// parseDetailPage extracts a publication record from a detail page's DOM.
// Selectors are generic (title tag, meta description, byline class) since
// no specific publisher markup is in scope here; a real deployment would
// tailor these per source.
func parseDetailPage(doc *goquery.Document, pageURL string) corpus.Document {
	title := doc.Find("h1").First().Text()
	if title == "" {
		title = doc.Find("title").First().Text()
	}
	abstract := doc.Find("meta[name=description]").AttrOr("content", "")

	var authors []corpus.Author
	doc.Find(".author, .byline").Each(func(_ int, s *goquery.Selection) {
		name := s.Text()
		if name != "" {
			authors = append(authors, corpus.Author{Name: name})
		}
	})

	return corpus.Document{
		Title:    title,
		Authors:  authors,
		Abstract: abstract,
		URL:      pageURL,
	}
}

// waitForHost blocks until at least the host's required delay has elapsed
// since the last fetch from that host, determined by robots.txt's
// Crawl-delay directive or defaultHostDelay if absent.
func (c *Crawler) waitForHost(ctx context.Context, pageURL string) {
	host := hostOf(pageURL)
	if host == "" {
		return
	}

	delay := c.delayForHost(ctx, pageURL)

	c.mu.Lock()
	last, seen := c.lastFetch[host]
	wait := time.Duration(0)
	if seen {
		elapsed := time.Since(last)
		if elapsed < delay {
			wait = delay - elapsed
		}
	}
	c.lastFetch[host] = time.Now().Add(wait)
	c.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
		}
	}
}

// delayForHost returns the cached or freshly-fetched robots.txt
// Crawl-delay for pageURL's host, falling back to defaultHostDelay.
func (c *Crawler) delayForHost(ctx context.Context, pageURL string) time.Duration {
	host := hostOf(pageURL)

	c.mu.Lock()
	if d, ok := c.hostDelay[host]; ok {
		c.mu.Unlock()
		return d
	}
	c.mu.Unlock()

	delay := defaultHostDelay
	robotsURL := robotsURLFor(pageURL)
	if robotsURL != "" {
		if d, ok := fetchCrawlDelay(ctx, c.client, robotsURL); ok {
			delay = d
		}
	}

	c.mu.Lock()
	c.hostDelay[host] = delay
	c.mu.Unlock()
	return delay
}

// fetchCrawlDelay retrieves and parses robots.txt, returning its
// Crawl-delay for the default user agent group if present.
func fetchCrawlDelay(ctx context.Context, client *http.Client, robotsURL string) (time.Duration, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return 0, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return 0, false
	}
	group := data.FindGroup("*")
	if group == nil || group.CrawlDelay <= 0 {
		return 0, false
	}
	return group.CrawlDelay, true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func robotsURLFor(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	u.Path = "/robots.txt"
	u.RawQuery = ""
	return u.String()
}

func resolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
