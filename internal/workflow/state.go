package workflow

import (
	"context"
	"time"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// Status is the lifecycle stage of a chat workflow.
type Status string

const (
	StatusPending    Status = "pending"
	StatusRouting    Status = "routing"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Active reports whether the workflow is still in flight.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusRouting, StatusProcessing:
		return true
	default:
		return false
	}
}

// State is the observable record of one message-processing workflow. It is a
// snapshot for status queries; the engine owns the live run.
type State struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	UserID         string           `json:"userId"`
	Message        string           `json:"message"`
	Status         Status           `json:"status"`
	AgentType      domain.AgentType `json:"agentType,omitempty"`
	Reasoning      string           `json:"reasoning,omitempty"`
	Result         string           `json:"result,omitempty"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Store persists workflow state snapshots for status and cancellation
// endpoints. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Set(ctx context.Context, state State) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]State, error)
}
