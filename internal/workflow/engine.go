package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/agentdesk/agentdesk/internal/agents"
	"github.com/agentdesk/agentdesk/internal/domain"
	"github.com/agentdesk/agentdesk/internal/history"
	"github.com/agentdesk/agentdesk/internal/storage"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// Engine drives the message workflow: persist the user turn, compact
// history, route, dispatch, and stream the answer while recording state
// transitions. One Process call is one workflow.
type Engine struct {
	conversations storage.ConversationStore
	router        *agents.Router
	dispatcher    *agents.Dispatcher
	store         Store
	compaction    history.CompactionConfig

	// cancels holds the live cancel funcs; they are process-local and never
	// serialized into the store.
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

type EngineDependencies struct {
	Conversations storage.ConversationStore
	Router        *agents.Router
	Dispatcher    *agents.Dispatcher
	Store         Store
	Compaction    history.CompactionConfig
}

func NewEngine(deps EngineDependencies) *Engine {
	compaction := deps.Compaction
	if compaction.MaxMessages == 0 {
		compaction = history.DefaultConfig()
	}

	return &Engine{
		conversations: deps.Conversations,
		router:        deps.Router,
		dispatcher:    deps.Dispatcher,
		store:         deps.Store,
		compaction:    compaction,
		cancels:       make(map[string]context.CancelFunc),
	}
}

// ProcessRequest is one inbound user message.
type ProcessRequest struct {
	ConversationID string
	UserID         string
	Message        string
}

// Stream is the result of a started workflow. Routing has already happened
// when Process returns, so ConversationID, AgentType and Reasoning are final;
// Chunks yields answer text incrementally and is closed when the run ends.
type Stream struct {
	WorkflowID     string
	ConversationID string
	AgentType      domain.AgentType
	Reasoning      string
	Chunks         <-chan string

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Cancel stops the run. Any partial answer is discarded, not persisted.
func (s *Stream) Cancel() {
	s.cancel()
}

// Wait blocks until the run ends and returns its terminal error, if any.
func (s *Stream) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Process runs the workflow for one user message. The user turn is persisted
// and routing completes before Process returns; generation then streams in
// the background. A persisted user turn is never rolled back, whatever
// happens downstream.
func (e *Engine) Process(ctx context.Context, req ProcessRequest) (*Stream, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.Errorf(domain.KindValidation, "message must not be empty")
	}
	if req.UserID == "" {
		return nil, domain.Errorf(domain.KindValidation, "user id must not be empty")
	}

	conv, err := e.conversations.GetOrCreateConversation(ctx, req.ConversationID, req.UserID)
	if err != nil {
		return nil, err
	}

	state := State{
		ID:             xid.New().String(),
		ConversationID: conv.ID,
		UserID:         req.UserID,
		Message:        req.Message,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	e.setState(ctx, &state)

	if _, err := e.conversations.CreateMessage(ctx, conv.ID, domain.RoleUser, req.Message, ""); err != nil {
		e.failState(ctx, &state, err)
		return nil, err
	}

	// The in-flight context is the history as it stood before this turn; the
	// router and dispatcher append the new message themselves, exactly once.
	compacted := history.Compact(conv.Messages, e.compaction)

	state.Status = StatusRouting
	e.setState(ctx, &state)

	decision, err := e.router.Route(ctx, req.Message, compacted)
	if err != nil {
		e.failState(ctx, &state, err)
		return nil, err
	}

	state.Status = StatusProcessing
	state.AgentType = decision.Agent
	state.Reasoning = decision.Reasoning
	e.setState(ctx, &state)

	// The run outlives the request context so a held response writer going
	// away does not decide the workflow's fate; Cancel is the only way to
	// stop it early.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.registerCancel(state.ID, cancel)

	agentStream, err := e.dispatcher.Dispatch(runCtx, decision.Agent, req.Message, compacted, req.UserID)
	if err != nil {
		e.unregisterCancel(state.ID)
		cancel()
		e.failState(ctx, &state, err)
		return nil, err
	}

	chunks := make(chan string)
	stream := &Stream{
		WorkflowID:     state.ID,
		ConversationID: conv.ID,
		AgentType:      decision.Agent,
		Reasoning:      decision.Reasoning,
		Chunks:         chunks,
		cancel:         cancel,
		done:           make(chan struct{}),
	}

	go e.consume(runCtx, &state, stream, agentStream.Events, agentStream.Err, chunks)

	return stream, nil
}

// consume forwards text deltas to the caller and settles the workflow once
// the agent run ends. On cancellation the partial assistant text is
// discarded; only a cleanly finished answer is persisted.
func (e *Engine) consume(ctx context.Context, state *State, stream *Stream, events <-chan aitypes.StreamEvent, runErr func() error, chunks chan<- string) {
	defer close(stream.done)
	defer close(chunks)
	defer e.unregisterCancel(state.ID)

	var answer strings.Builder

	for event := range events {
		delta, ok := event.(*aitypes.TextDeltaEvent)
		if !ok {
			continue
		}

		answer.WriteString(delta.Delta)

		// Once cancellation is observed, no further chunk is forwarded; the
		// remaining events are only drained.
		if ctx.Err() != nil {
			continue
		}

		select {
		case chunks <- delta.Delta:
		case <-ctx.Done():
		}
	}

	if ctx.Err() != nil {
		err := domain.E(domain.KindCancelled, ctx.Err())
		stream.fail(err)
		e.failState(context.WithoutCancel(ctx), state, err)
		log.Info().
			Str("workflow_id", state.ID).
			Str("conversation_id", state.ConversationID).
			Msg("Workflow cancelled")
		return
	}

	if err := runErr(); err != nil {
		err = domain.E(domain.KindGeneration, err)
		stream.fail(err)
		e.failState(ctx, state, err)
		return
	}

	if _, err := e.conversations.CreateMessage(ctx, state.ConversationID, domain.RoleAssistant, answer.String(), state.AgentType); err != nil {
		stream.fail(err)
		e.failState(ctx, state, err)
		return
	}

	state.Status = StatusCompleted
	state.Result = answer.String()
	e.setState(ctx, state)

	log.Debug().
		Str("workflow_id", state.ID).
		Str("conversation_id", state.ConversationID).
		Str("agent", string(state.AgentType)).
		Int("answer_bytes", answer.Len()).
		Msg("Workflow completed")
}

// Cancel stops a running workflow by id. It reports whether a live run was
// found; finished workflows cannot be cancelled.
func (e *Engine) Cancel(workflowID string) bool {
	e.mu.Lock()
	cancel, ok := e.cancels[workflowID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	return ok
}

// Status returns the stored snapshot of a workflow.
func (e *Engine) Status(ctx context.Context, workflowID string) (State, error) {
	return e.store.Get(ctx, workflowID)
}

// ListActive returns all workflows still in flight.
func (e *Engine) ListActive(ctx context.Context) ([]State, error) {
	return e.store.ListActive(ctx)
}

func (e *Engine) registerCancel(workflowID string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels[workflowID] = cancel
}

func (e *Engine) unregisterCancel(workflowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cancels, workflowID)
}

func (e *Engine) setState(ctx context.Context, state *State) {
	state.UpdatedAt = time.Now()
	if err := e.store.Set(ctx, *state); err != nil {
		log.Warn().Err(err).Str("workflow_id", state.ID).Msg("Failed to store workflow state")
	}
}

func (e *Engine) failState(ctx context.Context, state *State, cause error) {
	state.Status = StatusFailed
	state.Error = cause.Error()
	e.setState(ctx, state)
}
