package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devang100/live-ai-assistant/internal/llm"
)

func TestHeuristicDecider(t *testing.T) {
	cases := []struct {
		message string
		search  bool
	}{
		{"What is the latest news on AI?", true},
		{"Write a haiku about the sea", false},
		{"search for today's weather in Paris", true},
		{"Who is the president of France?", true},
		{"price of bitcoin", true},
		{"What happened in 2024?", true},
		{"Refactor this function to use generics", false},
		{"Explain pointers to me", false},
	}

	decider := HeuristicDecider{}
	for _, tc := range cases {
		decision, err := decider.Decide(context.Background(), tc.message)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.message, err)
		}
		if decision.Search != tc.search {
			t.Errorf("%q: expected search=%v, got %v", tc.message, tc.search, decision.Search)
		}
		if tc.search && decision.Query != tc.message {
			t.Errorf("%q: heuristic query should be the raw message, got %q", tc.message, decision.Query)
		}
	}
}

// fakeToolCallServer returns a non-streaming completion whose first choice
// carries the given tool calls.
func fakeToolCallServer(t *testing.T, toolCalls []llm.ToolCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req llm.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode chat request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "search_web" {
			t.Errorf("expected the search_web tool to be exposed, got %+v", req.Tools)
		}
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.ChatChoice{{
				Message: llm.Message{Role: llm.RoleAssistant, ToolCalls: toolCalls},
			}},
		})
	}))
}

func testProvider(serverURL string) *llm.Provider {
	return &llm.Provider{Name: "groq", Model: "test-model", Client: llm.NewClient("groq", serverURL, "key")}
}

func TestModelDeciderToolCall(t *testing.T) {
	server := fakeToolCallServer(t, []llm.ToolCall{{
		ID:   "call_1",
		Type: "function",
		Function: llm.ToolCallFunction{
			Name:      "search_web",
			Arguments: `{"query":"weather in Paris"}`,
		},
	}})
	defer server.Close()

	decider := &ModelDecider{Provider: testProvider(server.URL)}
	decision, err := decider.Decide(context.Background(), "what's the weather in Paris?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Search || decision.Query != "weather in Paris" {
		t.Errorf("expected a search for \"weather in Paris\", got %+v", decision)
	}
}

func TestModelDeciderNoToolCall(t *testing.T) {
	server := fakeToolCallServer(t, nil)
	defer server.Close()

	decider := &ModelDecider{Provider: testProvider(server.URL)}
	decision, err := decider.Decide(context.Background(), "write me a poem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Search {
		t.Errorf("expected no search, got %+v", decision)
	}
}

func TestModelDeciderMalformedArguments(t *testing.T) {
	server := fakeToolCallServer(t, []llm.ToolCall{{
		ID:   "call_1",
		Type: "function",
		Function: llm.ToolCallFunction{
			Name:      "search_web",
			Arguments: `{"query": not-valid-json`,
		},
	}})
	defer server.Close()

	decider := &ModelDecider{Provider: testProvider(server.URL)}
	decision, err := decider.Decide(context.Background(), "latest news")
	if err != nil {
		t.Fatalf("malformed arguments must not fail the request: %v", err)
	}
	if decision.Search {
		t.Errorf("malformed arguments should mean no search, got %+v", decision)
	}
}
