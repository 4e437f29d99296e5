package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type SearchResponse struct {
	Query      string         `json:"query"`
	Success    bool           `json:"success"`
	Results    []SearchResult `json:"results"`
	NumResults int            `json:"num_results"`
}

// searchWeb queries the DuckDuckGo HTML endpoint and scrapes the top results.
func (b *Bridge) searchWeb(ctx context.Context, query string) (*SearchResponse, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	results := ParseSearchResults(doc, maxSearchResults)

	return &SearchResponse{
		Query:      query,
		Success:    true,
		Results:    results,
		NumResults: len(results),
	}, nil
}

// ParseSearchResults extracts up to limit entries from a DuckDuckGo HTML
// results page.
func ParseSearchResults(doc *goquery.Document, limit int) []SearchResult {
	results := make([]SearchResult, 0, limit)
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		anchor := sel.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		link, _ := anchor.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())

		if title == "" || link == "" {
			return true
		}

		results = append(results, SearchResult{
			Title:   title,
			Link:    link,
			Snippet: snippet,
		})
		return len(results) < limit
	})
	return results
}
