package chat

import (
	"fmt"
	"strings"

	"github.com/support-agent/backend/internal/llm"
)

// PromptComposer renders the single bounded request sent to the completion
// provider: persona, length constraint, retrieved knowledge, conversation
// history and the literal question.
type PromptComposer struct {
	persona  string
	maxWords int
}

func NewPromptComposer(persona string, maxWords int) *PromptComposer {
	return &PromptComposer{
		persona:  persona,
		maxWords: maxWords,
	}
}

// Compose never fails: missing knowledge or an empty history substitute as
// empty strings, since a new user with no context is a valid state.
func (p *PromptComposer) Compose(knowledgeContent string, historyLines []string, question string) []llm.Message {
	system := fmt.Sprintf("%s The answer must be at most %d words.", p.persona, p.maxWords)

	user := fmt.Sprintf(
		"Context:\n%s\n\nConversation so far:\n%s\n\nCustomer's question: %s",
		knowledgeContent,
		strings.Join(historyLines, "\n"),
		question,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}
