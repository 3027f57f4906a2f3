package controllers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/agentdesk/agentdesk/internal/domain"
	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/internal/workflow"
)

// ChatController handles message submission and conversation management.
type ChatController struct {
	engine        *workflow.Engine
	conversations storage.ConversationStore
}

type ChatControllerDependencies struct {
	Engine        *workflow.Engine
	Conversations storage.ConversationStore
}

func NewChatController(deps ChatControllerDependencies) *ChatController {
	return &ChatController{
		engine:        deps.Engine,
		conversations: deps.Conversations,
	}
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
	UserID         string `json:"userId"`
}

// sseFrame is one server-sent event payload. Exactly one of the optional
// fields is set depending on Type.
type sseFrame struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	AgentType      string `json:"agentType,omitempty"`
	Error          string `json:"error,omitempty"`
}

// SendMessage accepts a user message and streams the agent's answer as
// server-sent events. Routing metadata is exposed in response headers so
// clients know the chosen agent before the first token arrives.
func (c *ChatController) SendMessage(ctx fiber.Ctx) error {
	var req sendMessageRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.UserID == "" {
		req.UserID = storage.DemoUserID
	}

	stream, err := c.engine.Process(ctx.RequestCtx(), workflow.ProcessRequest{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Message:        req.Message,
	})
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Conversation-Id", stream.ConversationID)
	ctx.Set("X-Agent-Type", string(stream.AgentType))
	ctx.Set("X-Router-Reasoning", url.QueryEscape(stream.Reasoning))

	return ctx.SendStreamWriter(func(w *bufio.Writer) {
		for chunk := range stream.Chunks {
			frame := sseFrame{Type: "text", Content: chunk}
			if writeFrame(w, frame) != nil {
				// Client is gone; stop the run so the partial answer is
				// discarded rather than generated into the void.
				stream.Cancel()
				drain(stream.Chunks)
				return
			}
		}

		if err := stream.Wait(); err != nil {
			log.Error().Err(err).
				Str("workflow_id", stream.WorkflowID).
				Msg("Message workflow failed mid-stream")
			_ = writeFrame(w, sseFrame{Type: "error", Error: err.Error()})
			return
		}

		_ = writeFrame(w, sseFrame{
			Type:           "done",
			ConversationID: stream.ConversationID,
			AgentType:      string(stream.AgentType),
		})
	})
}

func writeFrame(w *bufio.Writer, frame sseFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}

	return w.Flush()
}

func drain(chunks <-chan string) {
	for range chunks {
	}
}

// ListConversations returns the most recent conversations for a user.
func (c *ChatController) ListConversations(ctx fiber.Ctx) error {
	userID := ctx.Query("userId", storage.DemoUserID)

	conversations, err := c.conversations.ListConversations(ctx.RequestCtx(), userID)
	if err != nil {
		return err
	}

	if conversations == nil {
		conversations = []*domain.Conversation{}
	}

	return ctx.JSON(fiber.Map{
		"success":       true,
		"conversations": conversations,
	})
}

// GetConversation returns one conversation with its full message history.
func (c *ChatController) GetConversation(ctx fiber.Ctx) error {
	conversation, err := c.conversations.GetConversation(ctx.RequestCtx(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success":      true,
		"conversation": conversation,
	})
}

// DeleteConversation removes a conversation and all its messages.
func (c *ChatController) DeleteConversation(ctx fiber.Ctx) error {
	if err := c.conversations.DeleteConversation(ctx.RequestCtx(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"success": true})
}
