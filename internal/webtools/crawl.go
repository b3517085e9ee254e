package webtools

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CrawlInput defines the input schema for crawl_site.
type CrawlInput struct {
	URL      string `json:"url" jsonschema:"The absolute URL to start crawling from"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Maximum link depth to follow (default 2)"`
	MaxPages int    `json:"max_pages,omitempty" jsonschema:"Maximum number of pages to visit"`
}

// CrawlPage is one visited page in a crawl result.
type CrawlPage struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// CrawlOutput is the JSON payload returned by crawl_site.
type CrawlOutput struct {
	Start string      `json:"start"`
	Pages []CrawlPage `json:"pages"`
}

const (
	defaultCrawlDepth = 2
	defaultCrawlPages = 10
)

func (s *Server) handleCrawl(ctx context.Context, in CrawlInput) (*mcp.CallToolResult, error) {
	start, err := url.Parse(in.URL)
	if err != nil {
		return errorResult("invalid url: %v", err), nil
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		return errorResult("unsupported scheme %q", start.Scheme), nil
	}

	depth := in.MaxDepth
	if depth <= 0 {
		depth = defaultCrawlDepth
	}
	maxPages := s.fetchCfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultCrawlPages
	}
	if in.MaxPages > 0 && in.MaxPages < maxPages {
		maxPages = in.MaxPages
	}

	c := colly.NewCollector(
		colly.AllowedDomains(start.Hostname()),
		colly.MaxDepth(depth),
		colly.UserAgent(userAgent),
		colly.Async(true),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.fetchCfg.Parallelism,
		Delay:       time.Duration(s.fetchCfg.DelayMs) * time.Millisecond,
	}); err != nil {
		return errorResult("configuring crawler: %v", err), nil
	}

	var (
		mu      sync.Mutex
		pages   []CrawlPage
		visited int
	)

	// The page budget and context cancellation are both enforced at
	// request time so in-flight queues drain quickly.
	c.OnRequest(func(r *colly.Request) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil || visited >= maxPages {
			r.Abort()
			return
		}
		visited++
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.DOM.Find("title").First().Text())
		mu.Lock()
		pages = append(pages, CrawlPage{URL: e.Request.URL.String(), Title: title})
		mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		// Errors here are per-link (revisits, off-domain, depth) and
		// expected during a crawl.
		_ = e.Request.Visit(e.Attr("href"))
	})

	c.OnError(func(r *colly.Response, err error) {
		s.logger.Debug("crawl request failed", "url", r.Request.URL.String(), "error", err)
	})

	if err := c.Visit(start.String()); err != nil {
		return errorResult("crawling %s: %v", start, err), nil
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("crawl finished", "start", start.String(), "pages", len(pages))
	return jsonResult(CrawlOutput{Start: start.String(), Pages: pages})
}
