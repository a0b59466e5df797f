package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/support-agent/backend/internal/llm"
)

func TestComposeIncludesAllSections(t *testing.T) {
	p := NewPromptComposer("You are a support representative.", 30)

	msgs := p.Compose(
		"The eSIM is installed by scanning a QR code.",
		[]string{"customer: hi", "assistant: hello"},
		"How do I install an eSIM?",
	)

	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "You are a support representative.")
	assert.Contains(t, msgs[0].Content, "at most 30 words")

	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "The eSIM is installed by scanning a QR code.")
	assert.Contains(t, msgs[1].Content, "customer: hi")
	assert.Contains(t, msgs[1].Content, "assistant: hello")
	assert.Contains(t, msgs[1].Content, "Customer's question: How do I install an eSIM?")
}

func TestComposeWithMissingContext(t *testing.T) {
	p := NewPromptComposer("Persona.", 30)

	// A new user has no history and an unmatched question has no knowledge
	// content; both substitute as empty strings, never fail.
	msgs := p.Compose("", nil, "hello?")

	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "Context:\n\n")
	assert.Contains(t, msgs[1].Content, "Customer's question: hello?")
	assert.NotContains(t, msgs[1].Content, "%!")
}
