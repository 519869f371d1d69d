package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.tavily.com"

	// The value shipped in the example .env file; treated the same as an
	// absent key.
	placeholderAPIKey = "your_tavily_api_key_here"

	maxResults  = 5
	searchDepth = "basic"

	snippetLimit = 300

	// NoResultsSentinel is returned by FormatResults for an empty result set.
	NoResultsSentinel = "No search results found."
)

// Result is one ranked web search result as returned by Tavily.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response always carries a (possibly empty) result list. Error is a plain
// string because search failures never propagate as Go errors: the chat flow
// degrades to answering without search context.
type Response struct {
	Results []Result
	Error   string
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// Enabled reports whether a usable search credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one Tavily query. It never returns a Go error: configuration
// gaps and transport failures come back as an empty result list with the
// Error string set.
func (c *Client) Search(ctx context.Context, query string) Response {
	if query == "" {
		return Response{Error: "search query is empty"}
	}
	if !c.Enabled() {
		return Response{Error: "Tavily API key not configured"}
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   searchDepth,
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return Response{Error: fmt.Sprintf("failed to marshal search request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return Response{Error: fmt.Sprintf("failed to create search request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{Error: fmt.Sprintf("search request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{Error: fmt.Sprintf("Tavily API error: %s", resp.Status)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{Error: fmt.Sprintf("failed to read search response: %v", err)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{Error: fmt.Sprintf("failed to parse search response: %v", err)}
	}

	return Response{Results: parsed.Results}
}

// FormatResults renders results as numbered blocks for prompt injection.
// Ordering is the provider's ranking; no local re-ranking happens here.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return NoResultsSentinel
	}

	blocks := make([]string, 0, len(results))
	for i, result := range results {
		snippet := result.Content
		if len(snippet) > snippetLimit {
			snippet = snippet[:snippetLimit]
		}
		blocks = append(blocks, fmt.Sprintf("[%d] %s\nURL: %s\nContent: %s...\n", i+1, result.Title, result.URL, snippet))
	}
	return strings.Join(blocks, "\n\n")
}
