package llm

import "errors"

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	openAIBaseURL = "https://api.openai.com/v1"

	groqDefaultModel   = "llama-3.3-70b-versatile"
	openAIDefaultModel = "gpt-4o"
)

// ErrNoProvider means no LLM credential is configured at all.
var ErrNoProvider = errors.New("no LLM provider configured: set GROQ_API_KEY (free) or OPENAI_API_KEY")

// Provider is the process-wide vendor choice, resolved once at startup.
type Provider struct {
	Name   string
	Model  string
	Client *Client
}

// SelectProvider picks the vendor from the configured credentials. Groq wins
// when both keys are present because it is free and fast.
func SelectProvider(groqKey, openAIKey string) (*Provider, error) {
	switch {
	case groqKey != "":
		return &Provider{
			Name:   "groq",
			Model:  groqDefaultModel,
			Client: NewClient("groq", groqBaseURL, groqKey),
		}, nil
	case openAIKey != "":
		return &Provider{
			Name:   "openai",
			Model:  openAIDefaultModel,
			Client: NewClient("openai", openAIBaseURL, openAIKey),
		}, nil
	default:
		return nil, ErrNoProvider
	}
}
