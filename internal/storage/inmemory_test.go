package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/internal/domain"
)

func TestGetOrCreateConversation(t *testing.T) {
	store := NewInMemoryConversationStore()
	ctx := context.Background()

	created, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-demo", created.UserID)
	assert.Empty(t, created.Messages)

	fetched, err := store.GetOrCreateConversation(ctx, created.ID, "user-demo")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	// An unknown id falls back to creating a fresh conversation.
	fresh, err := store.GetOrCreateConversation(ctx, "does-not-exist", "user-demo")
	require.NoError(t, err)
	assert.NotEqual(t, "does-not-exist", fresh.ID)
}

func TestCreateMessageAppendsChronologically(t *testing.T) {
	store := NewInMemoryConversationStore()
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)

	first, err := store.CreateMessage(ctx, conv.ID, domain.RoleUser, "hello", "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, conv.ID, first.ConversationID)

	second, err := store.CreateMessage(ctx, conv.ID, domain.RoleAssistant, "hi there", domain.AgentTypeSupport)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentTypeSupport, second.AgentType)

	loaded, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hello", loaded.Messages[0].Content)
	assert.Equal(t, "hi there", loaded.Messages[1].Content)
}

func TestCreateMessageUnknownConversation(t *testing.T) {
	store := NewInMemoryConversationStore()

	_, err := store.CreateMessage(context.Background(), "missing", domain.RoleUser, "hello", "")

	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestListConversationsMostRecentFirst(t *testing.T) {
	store := NewInMemoryConversationStore()
	ctx := context.Background()

	first, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)
	second, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)
	_, err = store.GetOrCreateConversation(ctx, "", "someone-else")
	require.NoError(t, err)

	// Touch the first conversation so it becomes the most recent.
	_, err = store.CreateMessage(ctx, first.ID, domain.RoleUser, "bump", "")
	require.NoError(t, err)

	list, err := store.ListConversations(ctx, "user-demo")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestDeleteConversation(t *testing.T) {
	store := NewInMemoryConversationStore()
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)

	require.NoError(t, store.DeleteConversation(ctx, conv.ID))

	_, err = store.GetConversation(ctx, conv.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = store.DeleteConversation(ctx, conv.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestConversationCopiesAreIsolated(t *testing.T) {
	store := NewInMemoryConversationStore()
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "", "user-demo")
	require.NoError(t, err)

	_, err = store.CreateMessage(ctx, conv.ID, domain.RoleUser, "original", "")
	require.NoError(t, err)

	loaded, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	loaded.Messages[0].Content = "mutated"

	reloaded, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Messages[0].Content)
}

func TestSeedDemoData(t *testing.T) {
	orders := NewOrderStore()
	invoices := NewInvoiceStore()
	SeedDemoData(orders, invoices)

	order, ok := orders.Get("ORD-001")
	require.True(t, ok)
	assert.Equal(t, 199.97, order.Total)
	assert.Len(t, order.Items, 2)

	assert.Len(t, orders.List(DemoUserID, "", 0), 4)
	assert.Len(t, invoices.List(DemoUserID, "", 0), 5)

	invoice, ok := invoices.FindByOrderID("ORD-004")
	require.True(t, ok)
	assert.Equal(t, "refunded", invoice.Status)
}
