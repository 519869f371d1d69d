package core

import (
	"context"
	"testing"

	"github.com/devang100/live-ai-assistant/internal/search"
)

func TestGenerateTitle(t *testing.T) {
	llmSrv := newFakeLLMServer(t, nil)
	defer llmSrv.server.Close()

	service := NewChatService(testProvider(llmSrv.server.URL), nil,
		search.NewClient(""), HeuristicDecider{}, nil, 0.7, 1024)

	title, err := service.GenerateTitle(context.Background(), "search for today's weather in Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Generated Title" {
		t.Errorf("unexpected title %q", title)
	}
}
