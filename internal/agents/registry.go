package agents

import (
	"strings"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// AgentStatus is the availability of an agent in the catalog.
type AgentStatus string

const StatusOnline AgentStatus = "online"

// AgentInfo describes one agent in the static catalog.
type AgentInfo struct {
	Type         domain.AgentType `json:"type"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Status       AgentStatus      `json:"status"`
	Capabilities []string         `json:"capabilities"`
}

// Capability is one entry of an agent's capability list, expanded for
// display.
type Capability struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CapabilityDetail is the expanded capability listing for one agent type.
type CapabilityDetail struct {
	Type         domain.AgentType `json:"type"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Capabilities []Capability     `json:"capabilities"`
}

var catalog = []AgentInfo{
	{
		Type:         domain.AgentTypeRouter,
		Name:         "Router Agent",
		Description:  "Analyzes user intent and routes to specialized agents",
		Status:       StatusOnline,
		Capabilities: []string{"intent_classification", "context_analysis", "agent_delegation"},
	},
	{
		Type:         domain.AgentTypeSupport,
		Name:         "Support Agent",
		Description:  "Handles general inquiries, FAQ, and account issues",
		Status:       StatusOnline,
		Capabilities: []string{"faq_lookup", "ticket_creation", "account_assistance", "troubleshooting"},
	},
	{
		Type:         domain.AgentTypeOrder,
		Name:         "Order Agent",
		Description:  "Manages order status, tracking, and delivery inquiries",
		Status:       StatusOnline,
		Capabilities: []string{"order_lookup", "delivery_tracking", "order_history", "shipping_info"},
	},
	{
		Type:         domain.AgentTypeBilling,
		Name:         "Billing Agent",
		Description:  "Handles invoices, payments, and refund requests",
		Status:       StatusOnline,
		Capabilities: []string{"invoice_lookup", "refund_processing", "payment_status", "billing_disputes"},
	},
}

var capabilityDescriptions = map[string]string{
	"intent_classification": "Analyzes user messages to determine the primary intent",
	"context_analysis":      "Examines conversation history for relevant context",
	"agent_delegation":      "Routes requests to the most appropriate specialized agent",
	"faq_lookup":            "Searches knowledge base for relevant answers",
	"ticket_creation":       "Creates support tickets for human follow-up",
	"account_assistance":    "Helps with account-related issues and settings",
	"troubleshooting":       "Guides users through common problem solutions",
	"order_lookup":          "Retrieves detailed order information",
	"delivery_tracking":     "Provides real-time delivery status updates",
	"order_history":         "Lists past orders and their details",
	"shipping_info":         "Explains shipping options and timelines",
	"invoice_lookup":        "Retrieves invoice details and payment history",
	"refund_processing":     "Initiates and tracks refund requests",
	"payment_status":        "Checks current payment and billing status",
	"billing_disputes":      "Handles billing-related complaints and corrections",
}

// ListAgents returns the fixed agent catalog, router included for display.
func ListAgents() []AgentInfo {
	result := make([]AgentInfo, len(catalog))
	copy(result, catalog)
	return result
}

// Capabilities looks up the expanded capability listing for an agent type.
// It is total over all inputs: unknown types return ok=false, never an error.
func Capabilities(agentType string) (CapabilityDetail, bool) {
	for _, info := range catalog {
		if string(info.Type) != agentType {
			continue
		}

		capabilities := make([]Capability, 0, len(info.Capabilities))
		for _, id := range info.Capabilities {
			description, ok := capabilityDescriptions[id]
			if !ok {
				description = "No description available"
			}
			capabilities = append(capabilities, Capability{
				ID:          id,
				Name:        humanizeCapability(id),
				Description: description,
			})
		}

		return CapabilityDetail{
			Type:         info.Type,
			Name:         info.Name,
			Description:  info.Description,
			Capabilities: capabilities,
		}, true
	}

	return CapabilityDetail{}, false
}

func humanizeCapability(id string) string {
	words := strings.Split(id, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
