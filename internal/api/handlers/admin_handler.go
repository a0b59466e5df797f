package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/pkg/logger"
)

const defaultRecentExchanges = 20

type ExchangeLister interface {
	RecentExchanges(username string, limit int) ([]models.ExchangeRecord, error)
}

// AdminHandler exposes the audit trail for operator inspection.
type AdminHandler struct {
	exchanges ExchangeLister
}

func NewAdminHandler(exchanges ExchangeLister) *AdminHandler {
	return &AdminHandler{exchanges: exchanges}
}

func (h *AdminHandler) RecentExchanges(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username is required",
		})
	}

	limit := defaultRecentExchanges
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	records, err := h.exchanges.RecentExchanges(username, limit)
	if err != nil {
		logger.Error("Failed to list exchanges", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list exchanges",
		})
	}

	if records == nil {
		records = []models.ExchangeRecord{}
	}
	return c.JSON(fiber.Map{
		"exchanges": records,
	})
}
