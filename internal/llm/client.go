package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError carries the vendor's status code and raw body so handlers can
// preserve them in the response to the browser.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Client talks to an OpenAI-compatible chat completions endpoint. Both Groq
// and OpenAI expose the same wire format, so one client serves both vendors.
type Client struct {
	provider   string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(provider, baseURL, apiKey string) *Client {
	return &Client{
		provider:   provider,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) post(ctx context.Context, request ChatRequest) (*http.Response, error) {
	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	return resp, nil
}

// CreateChatCompletion handles non-streaming responses.
func (c *Client) CreateChatCompletion(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	request.Stream = false

	resp, err := c.post(ctx, request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in %s response", c.provider)
	}
	return &response, nil
}

// CreateChatCompletionStream handles streaming responses, invoking handler
// for every parsed chunk until the stream ends or handler returns an error.
func (c *Client) CreateChatCompletionStream(ctx context.Context, request ChatRequest, handler func(StreamChunk) error) error {
	request.Stream = true

	resp, err := c.post(ctx, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		if line == "data: [DONE]" {
			break
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(line[6:]), &chunk); err != nil {
			return fmt.Errorf("failed to unmarshal stream chunk: %w", err)
		}
		if err := handler(chunk); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return nil
}
