package initialization

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agentdesk/agentdesk/internal/agents"
	"github.com/agentdesk/agentdesk/internal/config"
	"github.com/agentdesk/agentdesk/internal/controllers"
	"github.com/agentdesk/agentdesk/internal/history"
	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/internal/tools"
	"github.com/agentdesk/agentdesk/internal/workflow"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	anthropicprovider "github.com/agentdesk/agentdesk/pkg/ai-sdk/provider/anthropic"
	openaiprovider "github.com/agentdesk/agentdesk/pkg/ai-sdk/provider/openai"
)

// Container wires configuration into the full service dependency graph.
type Container struct {
	Config *config.Config

	Conversations storage.ConversationStore
	Engine        *workflow.Engine

	ChatController     *controllers.ChatController
	AgentController    *controllers.AgentController
	WorkflowController *controllers.WorkflowController
	HealthController   *controllers.HealthController

	closers []func(context.Context) error
}

// NewContainer builds the dependency graph from loaded configuration.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	container := &Container{Config: cfg}

	model, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}

	conversations, err := container.buildConversationStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container.Conversations = conversations

	workflowStore, err := container.buildWorkflowStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orders := storage.NewOrderStore()
	invoices := storage.NewInvoiceStore()
	storage.SeedDemoData(orders, invoices)

	dispatcher := agents.NewDispatcher(agents.DispatcherDependencies{
		Model:        model,
		SupportTools: tools.SupportTools(),
		OrderTools:   tools.OrderTools(orders),
		BillingTools: tools.BillingTools(orders, invoices),
	})

	engine := workflow.NewEngine(workflow.EngineDependencies{
		Conversations: conversations,
		Router:        agents.NewRouter(model),
		Dispatcher:    dispatcher,
		Store:         workflowStore,
		Compaction:    history.DefaultConfig(),
	})
	container.Engine = engine

	container.ChatController = controllers.NewChatController(controllers.ChatControllerDependencies{
		Engine:        engine,
		Conversations: conversations,
	})
	container.AgentController = controllers.NewAgentController()
	container.WorkflowController = controllers.NewWorkflowController(engine)
	container.HealthController = controllers.NewHealthController(conversations)

	return container, nil
}

func buildModel(cfg *config.Config) (provider.LanguageModel, error) {
	switch cfg.Provider {
	case "openai":
		return openaiprovider.NewWithConfig(openaiprovider.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}), nil
	case "anthropic":
		return anthropicprovider.NewWithConfig(anthropicprovider.Config{
			APIKey: cfg.AnthropicKey,
			Model:  cfg.AnthropicModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func (c *Container) buildConversationStore(ctx context.Context, cfg *config.Config) (storage.ConversationStore, error) {
	switch cfg.StorageBackend {
	case "memory":
		log.Info().Msg("Using in-memory conversation store")
		return storage.NewInMemoryConversationStore(), nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}

		c.closers = append(c.closers, client.Disconnect)

		log.Info().Str("database", cfg.MongoDatabase).Msg("Using MongoDB conversation store")
		return storage.NewMongoConversationStore(client.Database(cfg.MongoDatabase)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (c *Container) buildWorkflowStore(ctx context.Context, cfg *config.Config) (workflow.Store, error) {
	switch cfg.WorkflowBackend {
	case "memory":
		return workflow.NewInMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		c.closers = append(c.closers, func(context.Context) error {
			return client.Close()
		})

		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis workflow store")
		return workflow.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown workflow backend %q", cfg.WorkflowBackend)
	}
}

// Close releases external connections in reverse acquisition order.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
