package webtools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScrapeInput defines the input schema for scrape_page.
type ScrapeInput struct {
	URL string `json:"url" jsonschema:"The absolute URL of the page to scrape"`
}

// ScrapeOutput is the JSON payload returned by scrape_page.
type ScrapeOutput struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Text     string `json:"text"`
}

func (s *Server) handleScrape(ctx context.Context, in ScrapeInput) (*mcp.CallToolResult, error) {
	body, u, err := s.fetcher.get(ctx, in.URL)
	if err != nil {
		return errorResult("scrape failed: %v", err), nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return errorResult("extracting article from %s: %v", u, err), nil
	}

	s.logger.Debug("scraped page", "url", u.String(), "title", article.Title, "bytes", len(article.TextContent))

	return jsonResult(ScrapeOutput{
		URL:      u.String(),
		Title:    article.Title,
		Byline:   article.Byline,
		Excerpt:  article.Excerpt,
		SiteName: article.SiteName,
		Text:     article.TextContent,
	})
}

// LinksInput defines the input schema for page_links.
type LinksInput struct {
	URL string `json:"url" jsonschema:"The absolute URL of the page whose links to list"`
}

// LinksOutput is the JSON payload returned by page_links.
type LinksOutput struct {
	URL   string   `json:"url"`
	Links []string `json:"links"`
}

func (s *Server) handleLinks(ctx context.Context, in LinksInput) (*mcp.CallToolResult, error) {
	body, u, err := s.fetcher.get(ctx, in.URL)
	if err != nil {
		return errorResult("listing links failed: %v", err), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return errorResult("parsing %s: %v", u, err), nil
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs := resolveLink(u, href)
		if abs == "" {
			return
		}
		seen[abs] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return jsonResult(LinksOutput{URL: u.String(), Links: links})
}

// resolveLink makes href absolute against base, dropping fragments and
// non-web schemes.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// jsonResult marshals a payload into a single-text result.
func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return textResult(string(raw)), nil
}
