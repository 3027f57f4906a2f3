package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentdesk/agentdesk/internal/agents"
)

func NewAgentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agent catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range agents.ListAgents() {
				fmt.Printf("%s (%s)\n", info.Name, info.Type)
				fmt.Printf("  %s\n", info.Description)
				fmt.Printf("  capabilities: %s\n\n", strings.Join(info.Capabilities, ", "))
			}
			return nil
		},
	}

	return cmd
}
