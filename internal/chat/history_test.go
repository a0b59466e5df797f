package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/support-agent/backend/internal/storage/models"
)

// fakeLister serves messages newest first, like the store does.
type fakeLister struct {
	messages []models.Message
}

func (f *fakeLister) LastN(ctx context.Context, sender string, n int) ([]models.Message, error) {
	if n > len(f.messages) {
		n = len(f.messages)
	}
	return f.messages[:n], nil
}

func newestFirst(texts ...string) []models.Message {
	now := time.Now()
	msgs := make([]models.Message, 0, len(texts))
	for i, text := range texts {
		msgs = append(msgs, models.Message{
			ID:        text,
			Sender:    "alice",
			Text:      text,
			IsUser:    i%2 == 0,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return msgs
}

func TestAssembleTakesMostRecentWindow(t *testing.T) {
	lister := &fakeLister{messages: newestFirst("m1", "m2", "m3", "m4", "m5")}
	a := NewHistoryAssembler(lister, false)

	lines, err := a.Assemble(context.Background(), "alice", 2, 1000)

	require.NoError(t, err)
	// Window is the last two messages {m1, m2}, presented oldest first.
	assert.Equal(t, []string{"m2", "m1"}, lines)
}

func TestAssembleBudgetSmallerThanNewestLine(t *testing.T) {
	lister := &fakeLister{messages: newestFirst("one two three four five")}
	a := NewHistoryAssembler(lister, false)

	// The single newest line costs 6 tokens (5 words + 1); a budget of 5
	// yields an empty sequence, never a partial line.
	lines, err := a.Assemble(context.Background(), "alice", 5, 5)

	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAssembleBudgetFitsOnlyNewest(t *testing.T) {
	lister := &fakeLister{messages: newestFirst("newest line here", "much older line that is longer")}
	a := NewHistoryAssembler(lister, false)

	// newest costs 4, older costs 7; budget 6 keeps only the newest.
	lines, err := a.Assemble(context.Background(), "alice", 5, 6)

	require.NoError(t, err)
	assert.Equal(t, []string{"newest line here"}, lines)
}

func TestAssembleNoHistory(t *testing.T) {
	a := NewHistoryAssembler(&fakeLister{}, false)

	lines, err := a.Assemble(context.Background(), "alice", 5, 100)

	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAssembleWithRolePrefixes(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{messages: []models.Message{
		{Sender: "alice", Text: "the answer", IsUser: false, CreatedAt: now},
		{Sender: "alice", Text: "the question", IsUser: true, CreatedAt: now.Add(-time.Minute)},
	}}
	a := NewHistoryAssembler(lister, true)

	lines, err := a.Assemble(context.Background(), "alice", 10, 100)

	require.NoError(t, err)
	assert.Equal(t, []string{"customer: the question", "assistant: the answer"}, lines)
}

func TestTruncateToBudgetStopsBeforeOverflow(t *testing.T) {
	// Costs: 3, 3, 3 tokens walking newest to oldest.
	lines := []string{"a b", "c d", "e f"}

	assert.Len(t, truncateToBudget(lines, 9), 3)
	assert.Len(t, truncateToBudget(lines, 8), 2)
	assert.Len(t, truncateToBudget(lines, 3), 1)
	assert.Empty(t, truncateToBudget(lines, 2))
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 1, approxTokens(""))
	assert.Equal(t, 2, approxTokens("hello"))
	assert.Equal(t, 6, approxTokens("how do I install eSIM"))
}
