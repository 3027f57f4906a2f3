package controllers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/agentdesk/agentdesk/internal/agents"
)

// AgentController exposes the static agent catalog.
type AgentController struct{}

func NewAgentController() *AgentController {
	return &AgentController{}
}

// ListAgents returns every agent in the catalog, router included.
func (c *AgentController) ListAgents(ctx fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"agents":  agents.ListAgents(),
	})
}

// GetCapabilities returns the expanded capability listing for one agent type.
func (c *AgentController) GetCapabilities(ctx fiber.Ctx) error {
	detail, ok := agents.Capabilities(ctx.Params("type"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Unknown agent type")
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"agent":   detail,
	})
}
