package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/support-agent/backend/internal/storage/models"
)

// MessageLister supplies a sender's most recent messages, newest first.
type MessageLister interface {
	LastN(ctx context.Context, sender string, n int) ([]models.Message, error)
}

// HistoryAssembler renders a user's recent conversation under a token
// budget. The result is recomputed on every call, never cached.
type HistoryAssembler struct {
	messages     MessageLister
	includeRoles bool
}

func NewHistoryAssembler(messages MessageLister, includeRoles bool) *HistoryAssembler {
	return &HistoryAssembler{
		messages:     messages,
		includeRoles: includeRoles,
	}
}

// Assemble fetches the user's last maxTurns messages (most recent, not
// first-inserted), renders them and truncates to the token budget keeping
// the newest lines. The returned lines are ordered oldest first.
func (a *HistoryAssembler) Assemble(ctx context.Context, username string, maxTurns, maxTokens int) ([]string, error) {
	msgs, err := a.messages.LastN(ctx, username, maxTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %q: %w", username, err)
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, a.renderLine(m))
	}

	kept := truncateToBudget(lines, maxTokens)

	// Budget walk ran newest to oldest; present oldest first.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept, nil
}

func (a *HistoryAssembler) renderLine(m models.Message) string {
	if !a.includeRoles {
		return m.Text
	}
	role := "assistant"
	if m.IsUser {
		role = "customer"
	}
	return role + ": " + m.Text
}

// truncateToBudget walks lines (newest first) accumulating approximate
// token counts and stops before the line that would overflow maxTokens.
// If even the newest line alone is over budget the result is empty; lines
// are kept whole or not at all.
func truncateToBudget(newestFirst []string, maxTokens int) []string {
	kept := make([]string, 0, len(newestFirst))
	total := 0
	for _, line := range newestFirst {
		cost := approxTokens(line)
		if total+cost > maxTokens {
			break
		}
		total += cost
		kept = append(kept, line)
	}
	return kept
}

// approxTokens is a whitespace heuristic: one token per word plus one per
// message. Deliberately not subword tokenization.
func approxTokens(line string) int {
	return len(strings.Fields(line)) + 1
}
