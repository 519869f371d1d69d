package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/devang100/live-ai-assistant/internal/llm"
)

// Decision is the outcome of the search-intent check for one user message.
type Decision struct {
	Search bool
	Query  string
}

// SearchDecider decides whether the latest user message warrants a web
// search before answering, and with what query.
type SearchDecider interface {
	Decide(ctx context.Context, userMessage string) (Decision, error)
}

// heuristicPatterns match messages that likely need current information.
var heuristicPatterns = []*regexp.Regexp{
	// Temporal words
	regexp.MustCompile(`(?i)\b(latest|current|recent|today|now)\b`),
	regexp.MustCompile(`\b20\d{2}\b`),
	// Interrogative forms
	regexp.MustCompile(`(?i)\b(what is|what's|who is|who's|tell me about)\b`),
	// Explicit requests
	regexp.MustCompile(`(?i)\b(search for|find|look up|google)\b`),
	// Informational
	regexp.MustCompile(`(?i)\b(news|price of|stock|weather)\b`),
}

// HeuristicDecider triggers a search when the message matches any of a fixed
// set of keyword patterns. The query is the raw message text.
type HeuristicDecider struct{}

func (HeuristicDecider) Decide(_ context.Context, userMessage string) (Decision, error) {
	for _, pattern := range heuristicPatterns {
		if pattern.MatchString(userMessage) {
			return Decision{Search: true, Query: userMessage}, nil
		}
	}
	return Decision{}, nil
}

const searchToolName = "search_web"

var searchTool = llm.Tool{
	Type: "function",
	Function: llm.ToolFunction{
		Name: searchToolName,
		Description: "Search the web for current information, news, facts, or any real-time data. " +
			"Use this when the user asks about recent events, current information, or anything you " +
			"don't have up-to-date knowledge about.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query to find relevant information"
				}
			},
			"required": ["query"]
		}`),
	},
}

// ModelDecider asks the model itself, via a non-streaming completion that
// exposes the search_web tool. A tool call in the response is the decision
// to search; its arguments carry the query.
type ModelDecider struct {
	Provider *llm.Provider
}

func (d *ModelDecider) Decide(ctx context.Context, userMessage string) (Decision, error) {
	resp, err := d.Provider.Client.CreateChatCompletion(ctx, llm.ChatRequest{
		Model: d.Provider.Model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMessage},
		},
		Tools:      []llm.Tool{searchTool},
		ToolChoice: "auto",
	})
	if err != nil {
		return Decision{}, fmt.Errorf("search-intent completion failed: %w", err)
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) == 0 {
		return Decision{}, nil
	}

	toolCall := message.ToolCalls[0]
	if toolCall.Function.Name != searchToolName {
		return Decision{}, nil
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		// Malformed arguments are a local problem, not a request failure.
		log.Printf("Ignoring malformed %s arguments: %v", searchToolName, err)
		return Decision{}, nil
	}
	if args.Query == "" {
		return Decision{}, nil
	}

	return Decision{Search: true, Query: args.Query}, nil
}
