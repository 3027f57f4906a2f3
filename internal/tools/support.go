package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
)

type faqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

var knowledgeBase = []faqEntry{
	{
		Question: "How do I reset my password?",
		Answer:   "Go to the login page and click 'Forgot Password'. Enter your email address and we will send you a reset link. The link expires after 24 hours.",
		Category: "password",
	},
	{
		Question: "How do I update my email address?",
		Answer:   "Open Account Settings, select 'Profile', and enter your new email address. You will need to confirm the change from your old email address.",
		Category: "account",
	},
	{
		Question: "What shipping options are available?",
		Answer:   "We offer standard shipping (5-7 business days), express shipping (2-3 business days), and overnight shipping. Costs are calculated at checkout based on your location.",
		Category: "shipping",
	},
	{
		Question: "What is your return policy?",
		Answer:   "Items can be returned within 30 days of delivery for a full refund. Items must be unused and in original packaging. Start a return from your order history page.",
		Category: "returns",
	},
	{
		Question: "How do I delete my account?",
		Answer:   "Open Account Settings, scroll to the bottom, and select 'Delete Account'. This is permanent and removes all your data within 30 days.",
		Category: "account",
	},
	{
		Question: "How do I contact customer support?",
		Answer:   "You can reach us through this chat, by email at support@example.com, or by phone at 1-800-555-0100 between 9am and 6pm EST on weekdays.",
		Category: "general",
	},
}

const maxKnowledgeResults = 3

// SupportTools returns the tool set available to the support agent.
func SupportTools() []tool.Tool {
	return []tool.Tool{
		searchKnowledgeBaseTool(),
		createTicketTool(),
	}
}

func searchKnowledgeBaseTool() tool.Tool {
	return tool.Define(
		"search_knowledge_base",
		"Search the knowledge base for answers to common questions",
		tool.ObjectSchema(map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
			"category": map[string]any{
				"type": "string",
				"enum": []string{"account", "password", "shipping", "returns", "general"},
			},
		}, "query"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				Query    string `json:"query"`
				Category string `json:"category"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			query := strings.ToLower(params.Query)

			var matches []faqEntry
			for _, entry := range knowledgeBase {
				if params.Category != "" && entry.Category != params.Category {
					continue
				}
				if strings.Contains(strings.ToLower(entry.Question), query) ||
					strings.Contains(strings.ToLower(entry.Answer), query) ||
					strings.Contains(entry.Category, query) {
					matches = append(matches, entry)
				}
				if len(matches) == maxKnowledgeResults {
					break
				}
			}

			if len(matches) == 0 {
				return marshalResult(map[string]any{
					"found":   false,
					"message": "No knowledge base articles matched the query. Consider creating a support ticket.",
				})
			}

			return marshalResult(map[string]any{
				"found":   true,
				"results": matches,
			})
		},
	)
}

var ticketResponseTimes = map[string]string{
	"low":    "48 hours",
	"medium": "24 hours",
	"high":   "2 hours",
}

func createTicketTool() tool.Tool {
	return tool.Define(
		"create_ticket",
		"Create a support ticket for issues that need human follow-up",
		tool.ObjectSchema(map[string]any{
			"subject": map[string]any{
				"type":        "string",
				"description": "A short summary of the issue",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A detailed description of the issue",
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"low", "medium", "high"},
			},
		}, "subject", "description", "priority"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				Subject     string `json:"subject"`
				Description string `json:"description"`
				Priority    string `json:"priority"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			responseTime, ok := ticketResponseTimes[params.Priority]
			if !ok {
				responseTime = ticketResponseTimes["medium"]
			}

			ticketID := fmt.Sprintf("TKT-%d", time.Now().UnixMilli()%1000000)

			return marshalResult(map[string]any{
				"success":  true,
				"ticketId": ticketID,
				"subject":  params.Subject,
				"priority": params.Priority,
				"message":  fmt.Sprintf("Support ticket %s created. Our team will respond within %s.", ticketID, responseTime),
			})
		},
	)
}
