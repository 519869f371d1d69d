package core

import (
	"fmt"
	"strings"
	"time"
)

const assistantPersona = `You are a helpful, clever, and articulate AI assistant called "Live AI Assistant".`

// BuildSystemPrompt assembles the system instruction for one request. It is
// pure given its inputs; the caller supplies the clock so tests can pin it.
// An empty searchContext means no search ran for this request.
func BuildSystemPrompt(now time.Time, searchContext string) string {
	var b strings.Builder
	b.WriteString(assistantPersona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Current Date: %s\n\n", now.Format(time.RFC3339))

	b.WriteString("Format your answers using Markdown where it helps readability.\n")

	if searchContext != "" {
		b.WriteString("\nYou just searched the web. Here are the search results:\n\n")
		b.WriteString(searchContext)
		b.WriteString("\n\nGround your answer in these results. ")
		b.WriteString("Always cite your sources by mentioning the titles and including [1], [2], etc. references.")
	} else {
		b.WriteString("\nYou do not have live web results for this request. ")
		b.WriteString("If the user needs current information, offer to search the web for them.")
	}

	return b.String()
}
