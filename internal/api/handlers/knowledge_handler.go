package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/knowledge"
	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/pkg/logger"
)

type KnowledgeHandler struct {
	admin *knowledge.Admin
}

func NewKnowledgeHandler(admin *knowledge.Admin) *KnowledgeHandler {
	return &KnowledgeHandler{admin: admin}
}

func (h *KnowledgeHandler) AddDocument(c *fiber.Ctx) error {
	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		SourceRef string `json:"source_ref"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and content are required",
		})
	}

	id, err := h.admin.AddDocument(c.Context(), &models.KnowledgeDocument{
		Title:     req.Title,
		Content:   req.Content,
		SourceRef: req.SourceRef,
	})
	if err != nil {
		logger.Error("Failed to add knowledge document", zap.String("title", req.Title), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add document",
		})
	}

	return c.JSON(fiber.Map{
		"id":    id,
		"title": req.Title,
	})
}

func (h *KnowledgeHandler) RemoveDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	if err := h.admin.RemoveDocument(c.Context(), id); err != nil {
		logger.Error("Failed to remove knowledge document", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove document",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Document removed",
	})
}
