package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Stellarhold170NT/therapy/pkg/llm"
)

const (
	ToolWebSearch = "web_search"
	ToolFetchPage = "fetch_page"

	// maxResultChars bounds the serialized tool output injected back into
	// the model context.
	maxResultChars = 8000

	maxSearchResults = 5
)

// Bridge executes model-issued tool calls against the outside world.
type Bridge struct {
	client *http.Client
}

func NewBridge(timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bridge{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Definitions returns the tool schemas advertised to the model.
func (b *Bridge) Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolWebSearch,
			Description: "Search the web and return result titles, links and snippets. Use when you need information but have no specific URL.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolFetchPage,
			Description: "Fetch a web page and return its structured content (titles, links, text). Use when you have a specific URL.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "The URL to fetch",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}

// Execute runs a single tool call and returns its serialized result. The
// result is truncated to maxResultChars before being handed back to the model.
func (b *Bridge) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	var result interface{}
	var err error

	switch call.Name {
	case ToolWebSearch:
		query, _ := call.Arguments["query"].(string)
		if query == "" {
			return "", fmt.Errorf("web_search: missing query argument")
		}
		result, err = b.searchWeb(ctx, query)
	case ToolFetchPage:
		url, _ := call.Arguments["url"].(string)
		if url == "" {
			return "", fmt.Errorf("fetch_page: missing url argument")
		}
		result, err = b.fetchPage(ctx, url)
	default:
		return "", fmt.Errorf("unknown tool: %s", call.Name)
	}

	if err != nil {
		return "", err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}

	return Truncate(string(data), maxResultChars), nil
}

// Truncate clips s to at most limit characters.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
