package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// Clip per-item content so one busy page cannot consume the whole
	// tool budget on its own.
	maxItemContentChars = 500

	minItemContentChars = 50
)

type PageItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Content string `json:"content"`
}

type PageResponse struct {
	URL           string     `json:"url"`
	Success       bool       `json:"success"`
	ExtractedData []PageItem `json:"extracted_data"`
	RawHTMLLength int        `json:"raw_html_length"`
}

// fetchPage retrieves a URL and extracts structured blocks from its HTML.
func (b *Bridge) fetchPage(ctx context.Context, pageURL string) (*PageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page error: status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	html, _ := doc.Html()

	return &PageResponse{
		URL:           pageURL,
		Success:       true,
		ExtractedData: ExtractPageItems(doc),
		RawHTMLLength: len(html),
	}, nil
}

// ExtractPageItems walks article-like containers and keeps the ones that
// carry a heading, a link and enough text to be worth reading.
func ExtractPageItems(doc *goquery.Document) []PageItem {
	items := make([]PageItem, 0)

	doc.Find("article, section, div").Each(func(_ int, sel *goquery.Selection) {
		heading := sel.Find("h1, h2, h3, h4, h5, h6").First()
		anchor := sel.Find("a[href]").First()
		content := strings.TrimSpace(sel.Text())

		if heading.Length() == 0 || anchor.Length() == 0 || len(content) <= minItemContentChars {
			return
		}

		link, _ := anchor.Attr("href")
		items = append(items, PageItem{
			Title:   strings.TrimSpace(heading.Text()),
			Link:    link,
			Content: Truncate(content, maxItemContentChars),
		})
	})

	return items
}
