package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/devang100/live-ai-assistant/internal/llm"
)

const titleSystemInstruction = "You are a helpful assistant that generates concise titles for chat conversations. " +
	"The title should be 3-5 words maximum. Just return the title itself, nothing else."

// GenerateTitle asks the model for a short conversation title based on the
// opening message.
func (s *ChatService) GenerateTitle(ctx context.Context, basisContent string) (string, error) {
	if s.provider == nil {
		return "", s.providerErr
	}

	temperature := 0.3
	resp, err := s.provider.Client.CreateChatCompletion(ctx, llm.ChatRequest{
		Model: s.provider.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: titleSystemInstruction},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Generate a very concise title (3-5 words maximum) for a conversation that starts with or is about: %q.", basisContent)},
		},
		Temperature: &temperature,
		MaxTokens:   20,
	})
	if err != nil {
		return "", fmt.Errorf("title generation request failed: %w", err)
	}

	title := strings.Trim(resp.Choices[0].Message.Content, "\"'\n\r\t .")
	if title == "" {
		return "", fmt.Errorf("model generated an empty title")
	}
	return title, nil
}

func (s *ChatService) generateAndSaveConversationTitle(conversationID, basisContent string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title, err := s.GenerateTitle(ctx, basisContent)
	if err != nil {
		log.Printf("Failed to generate title for conversation %s: %v", conversationID, err)
		return
	}

	if err := s.store.UpdateConversationTitle(conversationID, title); err != nil {
		log.Printf("Failed to save generated title %q for conversation %s: %v", title, conversationID, err)
	}
}
