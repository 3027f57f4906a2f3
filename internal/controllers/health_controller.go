package controllers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/agentdesk/agentdesk/internal/storage"
)

// HealthController reports service and dependency health.
type HealthController struct {
	conversations storage.ConversationStore
}

func NewHealthController(conversations storage.ConversationStore) *HealthController {
	return &HealthController{conversations: conversations}
}

// GetHealth checks the API and its conversation store. A failing dependency
// degrades the response to 503 but still reports per-check detail.
func (c *HealthController) GetHealth(ctx fiber.Ctx) error {
	checks := fiber.Map{"api": "ok"}
	status := fiber.StatusOK
	overall := "healthy"

	if err := c.conversations.Ping(ctx.RequestCtx()); err != nil {
		checks["database"] = err.Error()
		status = fiber.StatusServiceUnavailable
		overall = "degraded"
	} else {
		checks["database"] = "ok"
	}

	return ctx.Status(status).JSON(fiber.Map{
		"status":    overall,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
