package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"

	"github.com/agentdesk/agentdesk/internal/controllers"
	"github.com/agentdesk/agentdesk/internal/domain"
)

type HTTPServerDependencies struct {
	RateLimitPerMinute int

	ChatController     *controllers.ChatController
	AgentController    *controllers.AgentController
	WorkflowController *controllers.WorkflowController
	HealthController   *controllers.HealthController
}

func NewHTTPServer(ctx context.Context, deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName:      "agentdesk",
		ErrorHandler: errorHandler,
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "agentdesk",
			"status":  "running",
		})
	})

	router.Get("/health", deps.HealthController.GetHealth)

	api := router.Group("/api")

	chat := api.Group("/chat")
	chat.Use(limiter.New(limiter.Config{
		Max:        deps.RateLimitPerMinute,
		Expiration: time.Minute,
	}))

	chat.Post("/messages", deps.ChatController.SendMessage)
	chat.Get("/conversations", deps.ChatController.ListConversations)
	chat.Get("/conversations/:id", deps.ChatController.GetConversation)
	chat.Delete("/conversations/:id", deps.ChatController.DeleteConversation)

	chat.Get("/workflows", deps.WorkflowController.ListActiveWorkflows)
	chat.Get("/workflows/:id", deps.WorkflowController.GetWorkflow)
	chat.Post("/workflows/:id/cancel", deps.WorkflowController.CancelWorkflow)

	api.Get("/agents", deps.AgentController.ListAgents)
	api.Get("/agents/:type/capabilities", deps.AgentController.GetCapabilities)

	return router
}

// errorHandler translates tagged domain errors into the boundary JSON shape.
// Untagged errors and fiber errors keep their status but share the same
// envelope.
func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		code = "request_failure"
	} else if kind := domain.KindOf(err); kind != "" {
		code = string(kind)
		switch kind {
		case domain.KindValidation:
			status = fiber.StatusBadRequest
		case domain.KindNotFound:
			status = fiber.StatusNotFound
		case domain.KindRouting, domain.KindGeneration:
			status = fiber.StatusBadGateway
		case domain.KindCancelled:
			status = fiber.StatusConflict
		case domain.KindPersistence:
			status = fiber.StatusInternalServerError
		}
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
