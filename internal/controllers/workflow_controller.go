package controllers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/agentdesk/agentdesk/internal/workflow"
)

// WorkflowController exposes workflow status and cancellation.
type WorkflowController struct {
	engine *workflow.Engine
}

func NewWorkflowController(engine *workflow.Engine) *WorkflowController {
	return &WorkflowController{engine: engine}
}

// GetWorkflow returns the stored state snapshot of one workflow.
func (c *WorkflowController) GetWorkflow(ctx fiber.Ctx) error {
	state, err := c.engine.Status(ctx.RequestCtx(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success":  true,
		"workflow": state,
	})
}

// ListActiveWorkflows returns all workflows still in flight.
func (c *WorkflowController) ListActiveWorkflows(ctx fiber.Ctx) error {
	active, err := c.engine.ListActive(ctx.RequestCtx())
	if err != nil {
		return err
	}

	if active == nil {
		active = []workflow.State{}
	}

	return ctx.JSON(fiber.Map{
		"success":   true,
		"workflows": active,
	})
}

// CancelWorkflow stops a running workflow. Finished workflows report 404.
func (c *WorkflowController) CancelWorkflow(ctx fiber.Ctx) error {
	if !c.engine.Cancel(ctx.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "No running workflow with that id")
	}

	return ctx.JSON(fiber.Map{"success": true})
}
