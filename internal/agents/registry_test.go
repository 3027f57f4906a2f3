package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/internal/domain"
)

func TestListAgents(t *testing.T) {
	list := ListAgents()

	require.Len(t, list, 4)

	types := make(map[domain.AgentType]bool)
	for _, info := range list {
		types[info.Type] = true
		assert.Equal(t, StatusOnline, info.Status)
		assert.NotEmpty(t, info.Capabilities)
	}

	assert.True(t, types[domain.AgentTypeRouter])
	assert.True(t, types[domain.AgentTypeSupport])
	assert.True(t, types[domain.AgentTypeOrder])
	assert.True(t, types[domain.AgentTypeBilling])
}

func TestListAgentsReturnsCopy(t *testing.T) {
	first := ListAgents()
	first[0].Name = "mutated"

	second := ListAgents()
	assert.NotEqual(t, "mutated", second[0].Name)
}

func TestCapabilities(t *testing.T) {
	detail, ok := Capabilities("support")

	require.True(t, ok)
	assert.Equal(t, domain.AgentTypeSupport, detail.Type)
	require.Len(t, detail.Capabilities, 4)

	for _, capability := range detail.Capabilities {
		assert.NotEmpty(t, capability.Name)
		assert.NotEmpty(t, capability.Description)
	}
}

func TestCapabilitiesUnknownType(t *testing.T) {
	for _, input := range []string{"", "unknown", "Support", "ORDER"} {
		_, ok := Capabilities(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestHumanizeCapability(t *testing.T) {
	assert.Equal(t, "Faq Lookup", humanizeCapability("faq_lookup"))
	assert.Equal(t, "Intent Classification", humanizeCapability("intent_classification"))
}
