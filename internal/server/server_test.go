package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/internal/agents"
	"github.com/agentdesk/agentdesk/internal/controllers"
	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/internal/workflow"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

type noopModel struct{}

func (noopModel) ID() string { return "noop" }

func (noopModel) Generate(ctx context.Context, req provider.GenerateRequest) (*aitypes.GenerateResponse, error) {
	return &aitypes.GenerateResponse{}, nil
}

func (noopModel) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error) {
	events := make(chan aitypes.StreamEvent)
	errs := make(chan error, 1)
	close(events)
	close(errs)
	return events, errs
}

func (noopModel) GenerateObject(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func newTestServer() *fiber.App {
	conversations := storage.NewInMemoryConversationStore()
	model := noopModel{}

	engine := workflow.NewEngine(workflow.EngineDependencies{
		Conversations: conversations,
		Router:        agents.NewRouter(model),
		Dispatcher:    agents.NewDispatcher(agents.DispatcherDependencies{Model: model}),
		Store:         workflow.NewInMemoryStore(),
	})

	return NewHTTPServer(context.Background(), HTTPServerDependencies{
		RateLimitPerMinute: 100,
		ChatController: controllers.NewChatController(controllers.ChatControllerDependencies{
			Engine:        engine,
			Conversations: conversations,
		}),
		AgentController:    controllers.NewAgentController(),
		WorkflowController: controllers.NewWorkflowController(engine),
		HealthController:   controllers.NewHealthController(conversations),
	})
}

func TestRouteLayout(t *testing.T) {
	app := newTestServer()

	cases := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/health", fiber.StatusOK},
		{"GET", "/api/chat/conversations", fiber.StatusOK},
		{"GET", "/api/chat/workflows", fiber.StatusOK},
		{"GET", "/api/agents", fiber.StatusOK},
		{"GET", "/api/chat/workflows/missing", fiber.StatusNotFound},
		// Legacy mounts that must not resolve.
		{"GET", "/api/health", fiber.StatusNotFound},
		{"GET", "/api/workflows", fiber.StatusNotFound},
	}

	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.status, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestCancelUnknownWorkflowRoute(t *testing.T) {
	app := newTestServer()

	resp, err := app.Test(httptest.NewRequest("POST", "/api/chat/workflows/missing/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
