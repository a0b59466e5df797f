package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/api/middleware"
	"github.com/support-agent/backend/internal/chat"
	"github.com/support-agent/backend/internal/knowledge"
	"github.com/support-agent/backend/internal/llm"
	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/internal/vector"
	"github.com/support-agent/backend/pkg/logger"
)

const defaultLastMessages = 10

type MessageLister interface {
	LastN(ctx context.Context, sender string, n int) ([]models.Message, error)
	ListBySender(ctx context.Context, sender string) ([]models.Message, error)
}

type ChatHandler struct {
	engine   *chat.Engine
	messages MessageLister
}

func NewChatHandler(engine *chat.Engine, messages MessageLister) *ChatHandler {
	return &ChatHandler{
		engine:   engine,
		messages: messages,
	}
}

func (h *ChatHandler) Process(c *fiber.Ctx) error {
	var req struct {
		InputText string `json:"input_text"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	username, _ := c.Locals(middleware.UsernameKey).(string)

	result, err := h.engine.ProcessQuestion(c.Context(), username, req.InputText)
	if err != nil {
		return h.processError(c, username, err)
	}

	return c.JSON(fiber.Map{
		"processed_text": result.Answer,
		"source":         result.SourceRef,
		"matched":        result.Matched,
		"persisted":      result.Persisted,
		"latency_ms":     result.LatencyMS,
	})
}

func (h *ChatHandler) processError(c *fiber.Ctx, username string, err error) error {
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "input_text is required",
		})
	case errors.Is(err, knowledge.ErrDocumentMissing):
		// Ingestion drift between the vector index and the document store;
		// needs operator attention.
		logger.Error("Knowledge base integrity error",
			zap.String("username", username),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Knowledge base is inconsistent",
		})
	case errors.Is(err, llm.ErrCompletionTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "Completion provider timed out",
		})
	case errors.Is(err, llm.ErrEmbeddingUnavailable), errors.Is(err, llm.ErrCompletionUnavailable):
		logger.Error("Provider unavailable", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Language model provider unavailable",
		})
	case errors.Is(err, vector.ErrDimensionMismatch), errors.Is(err, llm.ErrEmbeddingDimension):
		logger.Error("Embedding configuration error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Embedding configuration error",
		})
	default:
		logger.Error("Failed to process question",
			zap.String("username", username),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process question",
		})
	}
}

func (h *ChatHandler) LastMessages(c *fiber.Ctx) error {
	n := defaultLastMessages
	if raw := c.Params("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "n must be a positive integer",
			})
		}
		n = parsed
	}

	username, _ := c.Locals(middleware.UsernameKey).(string)

	messages, err := h.messages.LastN(c.Context(), username, n)
	if err != nil {
		logger.Error("Failed to list messages", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list messages",
		})
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// Messages returns the user's full history, newest first.
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.UsernameKey).(string)

	messages, err := h.messages.ListBySender(c.Context(), username)
	if err != nil {
		logger.Error("Failed to list messages", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list messages",
		})
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return c.JSON(fiber.Map{
		"messages": messages,
	})
}
