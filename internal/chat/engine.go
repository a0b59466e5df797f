package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/knowledge"
	"github.com/support-agent/backend/internal/llm"
	"github.com/support-agent/backend/internal/metrics"
	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/internal/vector"
	"github.com/support-agent/backend/pkg/logger"
	"github.com/support-agent/backend/pkg/utils"
)

var ErrEmptyQuestion = errors.New("question must not be empty")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type MatchFinder interface {
	FindBestMatch(ctx context.Context, namespace string, vec []float32, topK int) (vector.Candidate, bool, error)
}

type KnowledgeSource interface {
	Resolve(matchID string) (knowledge.Entry, bool)
	FetchContent(ctx context.Context, title string) (string, error)
}

type HistorySource interface {
	Assemble(ctx context.Context, username string, maxTurns, maxTokens int) ([]string, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type MessageAppender interface {
	Append(ctx context.Context, sender, text string, isUser bool) (string, error)
}

type AuditLog interface {
	InsertExchange(record *models.ExchangeRecord) error
}

// EmbeddingCache is optional; a nil cache disables it.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, key string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, key string, embedding []float32) error
}

type Options struct {
	Namespace        string
	TopK             int
	MaxHistoryTurns  int
	MaxHistoryTokens int
	FallbackAnswer   string
}

// Result is what the caller gets back. Persisted=false is a degraded
// success: the answer is returned even though it could not be durably
// recorded.
type Result struct {
	Answer    string
	SourceRef string
	Matched   bool
	Persisted bool
	LatencyMS int
}

// Engine coordinates one question end to end: embed, match, gather context,
// complete, persist. All provider handles are injected once at startup;
// there is no shared mutable state between requests.
type Engine struct {
	embedder  Embedder
	matcher   MatchFinder
	knowledge KnowledgeSource
	history   HistorySource
	composer  *PromptComposer
	completer Completer
	messages  MessageAppender
	audit     AuditLog
	cache     EmbeddingCache
	opts      Options
}

func NewEngine(
	embedder Embedder,
	matcher MatchFinder,
	knowledgeSource KnowledgeSource,
	history HistorySource,
	composer *PromptComposer,
	completer Completer,
	messages MessageAppender,
	audit AuditLog,
	cache EmbeddingCache,
	opts Options,
) *Engine {
	return &Engine{
		embedder:  embedder,
		matcher:   matcher,
		knowledge: knowledgeSource,
		history:   history,
		composer:  composer,
		completer: completer,
		messages:  messages,
		audit:     audit,
		cache:     cache,
		opts:      opts,
	}
}

// ProcessQuestion runs the full pipeline for one authenticated user
// question. An unmatched question is not an error: it short-circuits to the
// canned fallback, which is still persisted and still a success for the
// caller.
func (e *Engine) ProcessQuestion(ctx context.Context, username, question string) (*Result, error) {
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()

	vec, err := e.embed(ctx, question)
	if err != nil {
		e.observe("error", start)
		return nil, err
	}

	best, matched, err := e.matcher.FindBestMatch(ctx, e.opts.Namespace, vec, e.opts.TopK)
	if err != nil {
		e.observe("error", start)
		return nil, err
	}

	var (
		answer       string
		sourceRef    string
		matchedTitle string
	)

	if !matched {
		logger.Info("No knowledge match, using fallback",
			zap.String("username", username),
		)
		answer = e.opts.FallbackAnswer
	} else {
		entry, ok := e.knowledge.Resolve(best.ID)
		if !ok {
			e.observe("error", start)
			return nil, fmt.Errorf("%w: match id %q has no catalog entry", knowledge.ErrDocumentMissing, best.ID)
		}
		matchedTitle = entry.Title
		sourceRef = entry.SourceRef

		content, historyLines, err := e.gatherContext(ctx, username, entry.Title)
		if err != nil {
			e.observe("error", start)
			return nil, err
		}

		prompt := e.composer.Compose(content, historyLines, question)
		answer, err = e.completer.Complete(ctx, prompt)
		if err != nil {
			e.observe("error", start)
			return nil, err
		}
	}

	persisted := e.persistTurn(ctx, username, question, answer)

	outcome := "matched"
	if !matched {
		outcome = "unmatched"
	}
	e.observe(outcome, start)

	latency := int(time.Since(start).Milliseconds())

	e.recordExchange(&models.ExchangeRecord{
		ID:           uuid.New().String(),
		Username:     username,
		Question:     question,
		Answer:       answer,
		MatchedTitle: matchedTitle,
		Score:        best.Score,
		Fallback:     !matched,
		Persisted:    persisted,
		LatencyMS:    latency,
		CreatedAt:    time.Now().UTC(),
	})

	return &Result{
		Answer:    answer,
		SourceRef: sourceRef,
		Matched:   matched,
		Persisted: persisted,
		LatencyMS: latency,
	}, nil
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache == nil {
		return e.embedder.Embed(ctx, text)
	}

	key := utils.HashString(text)
	if vec, hit, err := e.cache.GetEmbedding(ctx, key); err == nil && hit {
		metrics.EmbeddingCacheHits.WithLabelValues("hit").Inc()
		return vec, nil
	} else if err != nil {
		logger.Warn("Embedding cache read failed", zap.Error(err))
	}
	metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetEmbedding(ctx, key, vec); err != nil {
		logger.Warn("Embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}

// gatherContext fetches the document body and assembles history
// concurrently; neither depends on the other's output, and both must
// succeed before composition.
func (e *Engine) gatherContext(ctx context.Context, username, title string) (string, []string, error) {
	type contentOut struct {
		content string
		err     error
	}
	ch := make(chan contentOut, 1)
	go func() {
		content, err := e.knowledge.FetchContent(ctx, title)
		ch <- contentOut{content: content, err: err}
	}()

	historyLines, historyErr := e.history.Assemble(ctx, username, e.opts.MaxHistoryTurns, e.opts.MaxHistoryTokens)
	out := <-ch

	if out.err != nil {
		return "", nil, out.err
	}
	if historyErr != nil {
		return "", nil, historyErr
	}
	return out.content, historyLines, nil
}

// persistTurn appends the question and the answer as two independent
// records. A failure here never withholds the answer; the caller sees a
// degraded success instead. A crash between the two appends can leave an
// orphaned question, which is accepted and not reconciled.
func (e *Engine) persistTurn(ctx context.Context, username, question, answer string) bool {
	persisted := true

	if _, err := e.messages.Append(ctx, username, question, true); err != nil {
		logger.Error("Failed to persist question", zap.String("username", username), zap.Error(err))
		persisted = false
	}
	if _, err := e.messages.Append(ctx, username, answer, false); err != nil {
		logger.Error("Failed to persist answer", zap.String("username", username), zap.Error(err))
		persisted = false
	}

	if !persisted {
		metrics.PersistenceFailures.Inc()
	}
	return persisted
}

func (e *Engine) recordExchange(record *models.ExchangeRecord) {
	if e.audit == nil {
		return
	}
	if err := e.audit.InsertExchange(record); err != nil {
		logger.Warn("Failed to record exchange", zap.Error(err))
	}
}

func (e *Engine) observe(outcome string, start time.Time) {
	metrics.ExchangesTotal.WithLabelValues(outcome).Inc()
	metrics.ExchangeDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
