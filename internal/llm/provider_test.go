package llm

import (
	"errors"
	"testing"
)

func TestSelectProvider(t *testing.T) {
	cases := []struct {
		name      string
		groqKey   string
		openAIKey string
		provider  string
		model     string
	}{
		{"groq only", "gsk_test", "", "groq", "llama-3.3-70b-versatile"},
		{"openai only", "", "sk-test", "openai", "gpt-4o"},
		{"groq wins over openai", "gsk_test", "sk-test", "groq", "llama-3.3-70b-versatile"},
	}

	for _, tc := range cases {
		provider, err := SelectProvider(tc.groqKey, tc.openAIKey)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if provider.Name != tc.provider {
			t.Errorf("%s: expected provider %q, got %q", tc.name, tc.provider, provider.Name)
		}
		if provider.Model != tc.model {
			t.Errorf("%s: expected model %q, got %q", tc.name, tc.model, provider.Model)
		}
		if provider.Client == nil {
			t.Errorf("%s: provider has no client", tc.name)
		}
	}
}

func TestSelectProviderWithoutKeys(t *testing.T) {
	provider, err := SelectProvider("", "")
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
	if provider != nil {
		t.Errorf("expected nil provider, got %+v", provider)
	}
}
