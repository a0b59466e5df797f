package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/support-agent/backend/pkg/circuitbreaker"
	"github.com/support-agent/backend/pkg/logger"
)

var (
	// ErrEmbeddingUnavailable marks an embedding provider failure. Fatal for
	// the request that hit it; never retried here.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrEmbeddingDimension means the provider returned a vector whose length
	// does not match the configured dimension. A deployment problem, never
	// silently coerced.
	ErrEmbeddingDimension = errors.New("embedding dimension does not match configuration")
	// ErrCompletionUnavailable marks a completion provider failure.
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
	// ErrCompletionTimeout marks a completion request that exceeded its deadline.
	ErrCompletionTimeout = errors.New("completion request timed out")
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string
	Content string
}

// Client wraps the OpenAI API for embeddings and single-shot chat
// completions. Each call is one request/response; the circuit breaker only
// fails fast after repeated provider failures, it does not retry.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	dimension      int
	temperature    float32
	maxTokens      int
	timeout        time.Duration
	cb             *circuitbreaker.Breaker
}

func NewClient(apiKey, model, embeddingModel string, dimension int, temperature float32, maxTokens, timeoutSec int) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	logger.Info("LLM client initialized",
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
		zap.Int("dimension", dimension),
	)

	return &Client{
		client:         openai.NewClient(apiKey),
		model:          model,
		embeddingModel: embeddingModel,
		dimension:      dimension,
		temperature:    temperature,
		maxTokens:      maxTokens,
		timeout:        time.Duration(timeoutSec) * time.Second,
		cb:             cb,
	}
}

// Embed converts text into a dense vector of exactly the configured
// dimension.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embed: text must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: provider returned no embeddings", ErrEmbeddingUnavailable)
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimension, len(embedding), c.dimension)
	}

	return embedding, nil
}

// Complete sends one bounded list of role-tagged messages and returns the
// generated text. No retry; the caller may resubmit the whole request.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var content string
	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    chatMessages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("provider returned no choices")
		}

		logger.Debug("Completion generated",
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrCompletionTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}

	return content, nil
}
