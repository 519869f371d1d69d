package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("non-streaming call must not set stream")
		}

		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: "hello"}}},
		})
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key")
	resp, err := client.CreateChatCompletion(context.Background(), ChatRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Choices[0].Message.Content != "hello" {
		t.Errorf("unexpected content %q", resp.Choices[0].Message.Content)
	}
}

func TestCreateChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if !req.Stream {
			t.Error("streaming call must set stream")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, piece := range []string{"Hel", "lo ", "world"} {
			payload, _ := json.Marshal(StreamChunk{Choices: []StreamChoice{{Delta: Delta{Content: piece}}}})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		// Chunks after [DONE] must be ignored.
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key")
	var assembled strings.Builder
	err := client.CreateChatCompletionStream(context.Background(), ChatRequest{Model: "test-model"}, func(chunk StreamChunk) error {
		for _, choice := range chunk.Choices {
			assembled.WriteString(choice.Delta.Content)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assembled.String() != "Hello world" {
		t.Errorf("unexpected assembled text %q", assembled.String())
	}
}

func TestAPIErrorPropagation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit reached"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key")
	_, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "test-model"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Provider != "groq" {
		t.Errorf("expected provider groq, got %q", apiErr.Provider)
	}
	if !strings.Contains(apiErr.Body, "rate limit reached") {
		t.Errorf("vendor message not preserved: %q", apiErr.Body)
	}
}
