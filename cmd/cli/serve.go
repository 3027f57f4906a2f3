package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/agentdesk/agentdesk/internal/initialization"
	"github.com/agentdesk/agentdesk/internal/server"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat service",
		Long:  `Start the HTTP service that accepts chat messages, routes them to agents, and streams answers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	return cmd
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting chat service")

	container, err := initialization.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	app := server.NewHTTPServer(ctx, server.HTTPServerDependencies{
		RateLimitPerMinute: container.Config.RateLimitPerMinute,
		ChatController:     container.ChatController,
		AgentController:    container.AgentController,
		WorkflowController: container.WorkflowController,
		HealthController:   container.HealthController,
	})

	log.Info().
		Str("address", container.Config.HTTPAddress).
		Str("provider", container.Config.Provider).
		Msg("Service configuration loaded")

	if err := app.Listen(container.Config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := container.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to close external connections")
	}

	log.Info().Msg("Chat service stopped")
	return nil
}
