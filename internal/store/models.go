package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

type Conversation struct {
	ID        string    `json:"id"` // UUID
	UserID    *int64    `json:"user_id"` // Nullable: anonymous chat sessions have no owner
	Title     *string   `json:"title"`   // Nullable until generated
	CreatedAt time.Time `json:"created_at"`
}

// Source is one cited search result attached to an assistant message.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Metadata records how an assistant message was produced.
type Metadata struct {
	Sources     []Source `json:"sources,omitempty"`
	SearchQuery string   `json:"search_query,omitempty"`
}

type Message struct {
	ID             string    `json:"id"` // UUID
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user", "assistant" or "system"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Metadata       *Metadata `json:"metadata,omitempty"`
}
