package core

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/devang100/live-ai-assistant/internal/llm"
	"github.com/devang100/live-ai-assistant/internal/search"
	"github.com/devang100/live-ai-assistant/internal/store"
)

var (
	ErrEmptyMessages = errors.New("messages list is empty")
	ErrNoUserMessage = errors.New("messages list contains no user message")
)

// ChatResult summarizes one completed chat turn after the stream has ended.
type ChatResult struct {
	Reply       string
	SearchQuery string
	Sources     []store.Source
}

type ChatService struct {
	provider     *llm.Provider
	providerErr  error
	searchClient *search.Client
	decider      SearchDecider
	store        *store.SQLiteStore // nil disables persistence
	temperature  float64
	maxTokens    int
	now          func() time.Time
}

// NewChatService wires the per-process collaborators. provider comes from
// llm.SelectProvider; a nil provider with its selection error is accepted so
// the server can start without credentials and report the problem per request.
func NewChatService(provider *llm.Provider, providerErr error, searchClient *search.Client, decider SearchDecider, dbStore *store.SQLiteStore, temperature float64, maxTokens int) *ChatService {
	return &ChatService{
		provider:     provider,
		providerErr:  providerErr,
		searchClient: searchClient,
		decider:      decider,
		store:        dbStore,
		temperature:  temperature,
		maxTokens:    maxTokens,
		now:          time.Now,
	}
}

func (s *ChatService) Provider() (*llm.Provider, error) {
	return s.provider, s.providerErr
}

// StreamChat runs one request through the full pipeline: search-intent check,
// optional web search, prompt assembly, then a streamed completion relayed
// through onChunk. The assembled reply is returned once the stream ends.
func (s *ChatService) StreamChat(ctx context.Context, messages []llm.Message, conversationID string, onChunk func(string)) (*ChatResult, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessages
	}
	userMessage, err := latestUserMessage(messages)
	if err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, s.providerErr
	}

	result := &ChatResult{}

	searchContext := ""
	if s.searchClient != nil && s.searchClient.Enabled() {
		decision, err := s.decider.Decide(ctx, userMessage)
		if err != nil {
			// An intent-check failure never fails the request.
			log.Printf("Search-intent check failed, answering without search: %v", err)
		} else if decision.Search {
			resp := s.searchClient.Search(ctx, decision.Query)
			if resp.Error != "" {
				log.Printf("Web search failed for %q, answering without search: %s", decision.Query, resp.Error)
			} else {
				searchContext = search.FormatResults(resp.Results)
				result.SearchQuery = decision.Query
				for _, r := range resp.Results {
					result.Sources = append(result.Sources, store.Source{Title: r.Title, URL: r.URL})
				}
			}
		}
	}

	systemMessage := llm.Message{Role: llm.RoleSystem, Content: BuildSystemPrompt(s.now(), searchContext)}
	outbound := append([]llm.Message{systemMessage}, messages...)

	temperature := s.temperature
	err = s.provider.Client.CreateChatCompletionStream(ctx, llm.ChatRequest{
		Model:       s.provider.Model,
		Messages:    outbound,
		Temperature: &temperature,
		MaxTokens:   s.maxTokens,
	}, func(chunk llm.StreamChunk) error {
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				result.Reply += choice.Delta.Content
				onChunk(choice.Delta.Content)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil && conversationID != "" {
		s.persistTurn(conversationID, userMessage, result)
	}

	return result, nil
}

// latestUserMessage returns the content of the last message with the user
// role, scanning from the end.
func latestUserMessage(messages []llm.Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content, nil
		}
	}
	return "", ErrNoUserMessage
}

// persistTurn appends the user/assistant exchange to the conversation.
// Persistence is best effort: failures are logged, never surfaced.
func (s *ChatService) persistTurn(conversationID, userMessage string, result *ChatResult) {
	conversation, err := s.store.GetConversationByID(conversationID)
	if err != nil {
		log.Printf("Failed to load conversation %s, skipping persistence: %v", conversationID, err)
		return
	}
	if conversation == nil {
		log.Printf("Conversation %s not found, skipping persistence", conversationID)
		return
	}

	userMsg := store.Message{ConversationID: conversationID, Role: "user", Content: userMessage}
	if err := s.store.CreateMessage(&userMsg); err != nil {
		log.Printf("Failed to store user message for conversation %s: %v", conversationID, err)
	}

	var metadata *store.Metadata
	if result.SearchQuery != "" {
		metadata = &store.Metadata{Sources: result.Sources, SearchQuery: result.SearchQuery}
	}
	assistantMsg := store.Message{ConversationID: conversationID, Role: "assistant", Content: result.Reply, Metadata: metadata}
	if err := s.store.CreateMessage(&assistantMsg); err != nil {
		log.Printf("Failed to store assistant message for conversation %s: %v", conversationID, err)
	}

	if conversation.Title == nil || *conversation.Title == "" {
		go s.generateAndSaveConversationTitle(conversationID, userMessage)
	}
}
