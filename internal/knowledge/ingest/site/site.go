// Package site implements the website-source Ingester of spec.md §4.8
// phase 1 using goquery for HTML parsing, region/link discovery, and text
// extraction (no in-pack usage example existed for goquery; this follows
// goquery's documented jQuery-style Find/Each API).
package site

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/util"
)

// Ingester fetches a page over HTTP and chunks its visible text by region.
type Ingester struct {
	client *http.Client
}

// New constructs a site Ingester using the given HTTP client (nil selects
// http.DefaultClient).
func New(client *http.Client) *Ingester {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ingester{client: client}
}

var _ ingest.Ingester = (*Ingester)(nil)

// regionSelectors maps the §4.9.1 region vocabulary onto the HTML elements
// goquery should look for, checked in priority order.
var regionSelectors = []struct {
	region   string
	selector string
}{
	{"header", "header, #header, .header"},
	{"navigation", "nav, .navigation, .navbar"},
	{"sidebar", "aside, .sidebar"},
	{"main", "main, #main, .main-content, article"},
	{"footer", "footer, #footer, .footer"},
}

// Ingest implements ingest.Ingester for src.Type == "website".
func (i *Ingester) Ingest(ctx context.Context, src ingest.Source) ([]model.ContentChunk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", src.Ref, err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Ref, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Ref, err)
	}

	var chunks []model.ContentChunk
	seen := map[string]bool{}
	for _, rs := range regionSelectors {
		doc.Find(rs.selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text == "" || seen[text] {
				return
			}
			seen[text] = true
			labeled := fmt.Sprintf("[%s region]\n%s", rs.region, text)
			chunks = append(chunks, ingest.ChunkText(src.KnowledgeID, "website", src.Ref, labeled)...)
		})
	}

	if len(chunks) == 0 {
		body := strings.TrimSpace(doc.Find("body").Text())
		chunks = ingest.ChunkText(src.KnowledgeID, "website", src.Ref, body)
	}

	links := DiscoverLinks(doc, src.Ref)
	if len(links) > 0 {
		chunks = append(chunks, ingest.ChunkText(src.KnowledgeID, "website", src.Ref, "[links]\n"+strings.Join(links, "\n"))...)
	}

	return chunks, nil
}

// DiscoverLinks returns every same-origin href found in doc, used by the
// site crawler to expand a seed URL into a crawl frontier. Cross-origin
// links are dropped so a single knowledge_id's ingest run never wanders off
// the seed site.
func DiscoverLinks(doc *goquery.Document, baseRef string) []string {
	origin := util.ExtractOrigin(baseRef)
	var links []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") || seen[href] {
			return
		}
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			if origin != "" && util.ExtractOrigin(href) != origin {
				return
			}
		}
		seen[href] = true
		links = append(links, href)
	})
	return links
}
