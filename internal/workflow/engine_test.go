package workflow

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/internal/agents"
	"github.com/agentdesk/agentdesk/internal/domain"
	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// stubModel scripts routing and generation for engine tests and records the
// requests it receives.
type stubModel struct {
	decision string
	routeErr error
	streamFn func(ctx context.Context) (<-chan aitypes.StreamEvent, <-chan error)

	mu           sync.Mutex
	objectReqs   []provider.ObjectRequest
	generateReqs []provider.GenerateRequest
}

func (m *stubModel) ID() string {
	return "stub"
}

func (m *stubModel) Generate(ctx context.Context, req provider.GenerateRequest) (*aitypes.GenerateResponse, error) {
	return &aitypes.GenerateResponse{}, nil
}

func (m *stubModel) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error) {
	m.mu.Lock()
	m.generateReqs = append(m.generateReqs, req)
	m.mu.Unlock()
	return m.streamFn(ctx)
}

func (m *stubModel) GenerateObject(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error) {
	m.mu.Lock()
	m.objectReqs = append(m.objectReqs, req)
	m.mu.Unlock()
	if m.routeErr != nil {
		return nil, m.routeErr
	}
	return json.RawMessage(m.decision), nil
}

func (m *stubModel) lastObjectRequest() provider.ObjectRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objectReqs[len(m.objectReqs)-1]
}

func (m *stubModel) lastGenerateRequest() provider.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateReqs[len(m.generateReqs)-1]
}

func textStream(deltas ...string) func(ctx context.Context) (<-chan aitypes.StreamEvent, <-chan error) {
	return func(ctx context.Context) (<-chan aitypes.StreamEvent, <-chan error) {
		events := make(chan aitypes.StreamEvent)
		errs := make(chan error, 1)

		go func() {
			defer close(events)
			defer close(errs)

			for _, delta := range deltas {
				select {
				case events <- aitypes.NewTextDeltaEvent(delta):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}()

		return events, errs
	}
}

// blockingStream emits the given deltas and then stalls until cancelled.
func blockingStream(deltas ...string) func(ctx context.Context) (<-chan aitypes.StreamEvent, <-chan error) {
	return func(ctx context.Context) (<-chan aitypes.StreamEvent, <-chan error) {
		events := make(chan aitypes.StreamEvent)
		errs := make(chan error, 1)

		go func() {
			defer close(events)
			defer close(errs)

			for _, delta := range deltas {
				select {
				case events <- aitypes.NewTextDeltaEvent(delta):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}

			<-ctx.Done()
			errs <- ctx.Err()
		}()

		return events, errs
	}
}

func newTestEngine(model *stubModel) (*Engine, *storage.InMemoryConversationStore, Store) {
	conversations := storage.NewInMemoryConversationStore()
	store := NewInMemoryStore()

	engine := NewEngine(EngineDependencies{
		Conversations: conversations,
		Router:        agents.NewRouter(model),
		Dispatcher:    agents.NewDispatcher(agents.DispatcherDependencies{Model: model}),
		Store:         store,
	})

	return engine, conversations, store
}

func TestProcessHappyPath(t *testing.T) {
	model := &stubModel{
		decision: `{"agent":"order","reasoning":"asks about an order"}`,
		streamFn: textStream("Your order ", "ORD-001 has shipped."),
	}
	engine, conversations, _ := newTestEngine(model)

	stream, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "Where is ORD-001?",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AgentTypeOrder, stream.AgentType)
	assert.Equal(t, "asks about an order", stream.Reasoning)
	assert.NotEmpty(t, stream.ConversationID)

	var chunks []string
	for chunk := range stream.Chunks {
		chunks = append(chunks, chunk)
	}
	require.NoError(t, stream.Wait())

	assert.Equal(t, []string{"Your order ", "ORD-001 has shipped."}, chunks)

	conv, err := conversations.GetConversation(context.Background(), stream.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)

	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "Where is ORD-001?", conv.Messages[0].Content)

	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Your order ORD-001 has shipped.", conv.Messages[1].Content)
	assert.Equal(t, domain.AgentTypeOrder, conv.Messages[1].AgentType)

	state, err := engine.Status(context.Background(), stream.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, "Your order ORD-001 has shipped.", state.Result)
}

func TestProcessEmptyMessage(t *testing.T) {
	engine, _, _ := newTestEngine(&stubModel{})

	_, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "   ",
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestProcessRoutingFailure(t *testing.T) {
	model := &stubModel{routeErr: assert.AnError}
	engine, conversations, _ := newTestEngine(model)

	_, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "hello",
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindRouting, domain.KindOf(err))

	// The user turn is never rolled back.
	conversations2, listErr := conversations.ListConversations(context.Background(), "user-demo")
	require.NoError(t, listErr)
	require.Len(t, conversations2, 1)
	require.Len(t, conversations2[0].Messages, 1)
	assert.Equal(t, domain.RoleUser, conversations2[0].Messages[0].Role)

	active, err := engine.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestProcessCancelDiscardsPartialAnswer(t *testing.T) {
	model := &stubModel{
		decision: `{"agent":"support","reasoning":"general question"}`,
		streamFn: blockingStream("partial ", "answer "),
	}
	engine, conversations, _ := newTestEngine(model)

	stream, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "help me",
	})
	require.NoError(t, err)

	var chunks []string
	for chunk := range stream.Chunks {
		chunks = append(chunks, chunk)
		if len(chunks) == 2 {
			require.True(t, engine.Cancel(stream.WorkflowID))
		}
	}

	err = stream.Wait()
	require.Error(t, err)
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	assert.Equal(t, []string{"partial ", "answer "}, chunks)

	conv, err := conversations.GetConversation(context.Background(), stream.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)

	state, err := engine.Status(context.Background(), stream.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, state.Status)
	assert.NotEmpty(t, state.Error)
}

func countContaining(messages []aitypes.Message, substr string) int {
	var count int
	for _, msg := range messages {
		if strings.Contains(msg.Content, substr) {
			count++
		}
	}
	return count
}

func TestProcessModelContextContainsMessageOnce(t *testing.T) {
	model := &stubModel{
		decision: `{"agent":"order","reasoning":"r"}`,
		streamFn: textStream("answer one"),
	}
	engine, _, _ := newTestEngine(model)

	first, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "Where is ORD-001?",
	})
	require.NoError(t, err)
	for range first.Chunks {
	}
	require.NoError(t, first.Wait())

	assert.Equal(t, 1, countContaining(model.lastObjectRequest().Messages, "Where is ORD-001?"))
	assert.Equal(t, 1, countContaining(model.lastGenerateRequest().Messages, "Where is ORD-001?"))

	// On a follow-up turn the prior history is carried, and the new message
	// still appears exactly once in both contexts.
	model.streamFn = textStream("answer two")

	second, err := engine.Process(context.Background(), ProcessRequest{
		ConversationID: first.ConversationID,
		UserID:         "user-demo",
		Message:        "And ORD-002?",
	})
	require.NoError(t, err)
	for range second.Chunks {
	}
	require.NoError(t, second.Wait())

	routeMessages := model.lastObjectRequest().Messages
	assert.Equal(t, 1, countContaining(routeMessages, "And ORD-002?"))
	assert.Equal(t, 1, countContaining(routeMessages, "Where is ORD-001?"))

	genMessages := model.lastGenerateRequest().Messages
	assert.Equal(t, 1, countContaining(genMessages, "And ORD-002?"))
	assert.Equal(t, 1, countContaining(genMessages, "Where is ORD-001?"))
}

func TestConsumeStopsForwardingAfterCancel(t *testing.T) {
	engine, _, _ := newTestEngine(&stubModel{})

	events := make(chan aitypes.StreamEvent, 8)
	for i := 0; i < 8; i++ {
		events <- aitypes.NewTextDeltaEvent("chunk")
	}
	close(events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := make(chan string)
	stream := &Stream{Chunks: chunks, done: make(chan struct{})}

	var received []string
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for chunk := range chunks {
			received = append(received, chunk)
		}
	}()

	state := State{ID: "wf-test", ConversationID: "conv-1", Status: StatusProcessing}
	engine.consume(ctx, &state, stream, events, func() error { return nil }, chunks)

	<-collected
	assert.Empty(t, received)
	assert.Equal(t, StatusFailed, state.Status)

	err := stream.Wait()
	require.Error(t, err)
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
}

func TestCancelUnknownWorkflow(t *testing.T) {
	engine, _, _ := newTestEngine(&stubModel{})

	assert.False(t, engine.Cancel("missing"))
}

func TestCancelFinishedWorkflow(t *testing.T) {
	model := &stubModel{
		decision: `{"agent":"support","reasoning":"r"}`,
		streamFn: textStream("done"),
	}
	engine, _, _ := newTestEngine(model)

	stream, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "hi",
	})
	require.NoError(t, err)

	for range stream.Chunks {
	}
	require.NoError(t, stream.Wait())

	// The cancel registration is gone once the run settles.
	require.Eventually(t, func() bool {
		return !engine.Cancel(stream.WorkflowID)
	}, time.Second, 10*time.Millisecond)
}

func TestProcessReusesConversation(t *testing.T) {
	model := &stubModel{
		decision: `{"agent":"support","reasoning":"r"}`,
		streamFn: textStream("first"),
	}
	engine, conversations, _ := newTestEngine(model)

	first, err := engine.Process(context.Background(), ProcessRequest{
		UserID:  "user-demo",
		Message: "one",
	})
	require.NoError(t, err)
	for range first.Chunks {
	}
	require.NoError(t, first.Wait())

	model.streamFn = textStream("second")

	second, err := engine.Process(context.Background(), ProcessRequest{
		ConversationID: first.ConversationID,
		UserID:         "user-demo",
		Message:        "two",
	})
	require.NoError(t, err)
	for range second.Chunks {
	}
	require.NoError(t, second.Wait())

	assert.Equal(t, first.ConversationID, second.ConversationID)

	conv, err := conversations.GetConversation(context.Background(), first.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 4)
}
