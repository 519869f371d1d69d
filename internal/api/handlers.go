package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/devang100/live-ai-assistant/internal/auth"
	"github.com/devang100/live-ai-assistant/internal/core"
	"github.com/devang100/live-ai-assistant/internal/llm"
	"github.com/devang100/live-ai-assistant/internal/store"
	"github.com/go-chi/chi/v5"
)

type APIHandler struct {
	chatService *core.ChatService
	dbStore     *store.SQLiteStore
}

func NewAPIHandler(cs *core.ChatService, dbStore *store.SQLiteStore) *APIHandler {
	return &APIHandler{chatService: cs, dbStore: dbStore}
}

// chatErrorResponse is the JSON body for any failed chat request.
type chatErrorResponse struct {
	Error      string `json:"error"`
	Provider   string `json:"provider,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

type ChatRequest struct {
	Messages       []llm.Message `json:"messages"`
	ConversationID string        `json:"conversation_id,omitempty"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, chatErrorResponse{Error: "Streaming unsupported by this connection"})
		return
	}

	streaming := false
	_, err := h.chatService.StreamChat(r.Context(), req.Messages, req.ConversationID, func(chunk string) {
		if !streaming {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}
		w.Write([]byte(chunk))
		flusher.Flush()
	})
	if err != nil {
		if streaming {
			// Headers are gone; the stream just ends early.
			log.Printf("Chat stream aborted mid-response: %v", err)
			return
		}
		h.writeChatError(w, err)
		return
	}

	if !streaming {
		// The model produced no tokens at all. Still answer with a 200 so the
		// client sees an empty reply rather than an error.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}

// writeChatError maps pipeline failures onto the JSON error contract.
func (h *APIHandler) writeChatError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrEmptyMessages) || errors.Is(err, core.ErrNoUserMessage) {
		writeJSON(w, http.StatusBadRequest, chatErrorResponse{Error: err.Error()})
		return
	}

	if errors.Is(err, llm.ErrNoProvider) {
		writeJSON(w, http.StatusInternalServerError, chatErrorResponse{
			Error:      err.Error(),
			Suggestion: "Get a free API key at https://console.groq.com and set GROQ_API_KEY",
		})
		return
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		resp := chatErrorResponse{
			Error:    err.Error(),
			Provider: apiErr.Provider,
			Details:  apiErr.Body,
		}
		if strings.Contains(apiErr.Body, "insufficient_quota") {
			resp.Error = "OpenAI API quota exceeded. Please add credits or switch to Groq (free) by setting GROQ_API_KEY"
			resp.Suggestion = "Try using Groq instead - it's free! Get an API key at https://console.groq.com"
		} else if apiErr.Provider == "groq" {
			resp.Suggestion = "Check your Groq API key at https://console.groq.com"
		}
		status := apiErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, resp)
		return
	}

	log.Printf("Chat request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, chatErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Auth

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		externalUserID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.dbStore.GetUserByExternalID(externalUserID)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", externalUserID, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const userIDKey contextKey = "userID"

type SignupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user, err := h.dbStore.CreateUser(req.UserID, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.UserID, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.dbStore.GetUserByExternalID(req.UserID)
	if err != nil {
		log.Printf("Error getting user %s: %v", req.UserID, err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(req.UserID)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Conversations

type CreateConversationRequest struct {
	Title *string `json:"title,omitempty"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	var req CreateConversationRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	conversation, err := h.dbStore.CreateConversation(&userID, req.Title)
	if err != nil {
		log.Printf("Error creating conversation for user %d: %v", userID, err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(conversation)
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	conversations, err := h.dbStore.GetRecentConversations(&userID, limit)
	if err != nil {
		log.Printf("Error listing conversations for user %d: %v", userID, err)
		http.Error(w, "Failed to list conversations", http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []store.Conversation{}
	}
	json.NewEncoder(w).Encode(conversations)
}

type GetConversationResponse struct {
	*store.Conversation
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.dbStore.GetConversationByID(conversationID)
	if err != nil {
		log.Printf("Error getting conversation %s for user %d: %v", conversationID, userID, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}
	if conversation == nil || conversation.UserID == nil || *conversation.UserID != userID {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}

	messages, err := h.dbStore.GetMessagesByConversationID(conversationID)
	if err != nil {
		log.Printf("Error getting messages for conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}

	json.NewEncoder(w).Encode(GetConversationResponse{Conversation: conversation, Messages: messages})
}
