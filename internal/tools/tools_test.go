package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
)

func seededStores() (*storage.OrderStore, *storage.InvoiceStore) {
	orders := storage.NewOrderStore()
	invoices := storage.NewInvoiceStore()
	storage.SeedDemoData(orders, invoices)
	return orders, invoices
}

func execute(t *testing.T, tools []tool.Tool, name, args string) map[string]any {
	t.Helper()

	for _, tl := range tools {
		if tl.Name() != name {
			continue
		}

		raw, err := tl.Execute(context.Background(), args)
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &result))
		return result
	}

	t.Fatalf("tool %s not found", name)
	return nil
}

func TestFetchOrder(t *testing.T) {
	orders, _ := seededStores()
	toolSet := OrderTools(orders)

	result := execute(t, toolSet, "fetch_order", `{"orderId":"ORD-001"}`)
	require.Equal(t, true, result["found"])

	order := result["order"].(map[string]any)
	assert.Equal(t, "ORD-001", order["id"])
	assert.Equal(t, "shipped", order["status"])
	assert.Equal(t, "TRK-9876543210", order["trackingNumber"])

	result = execute(t, toolSet, "fetch_order", `{"orderId":"ORD-999"}`)
	assert.Equal(t, false, result["found"])
	assert.Contains(t, result["message"], "ORD-999")
}

func TestTrackDelivery(t *testing.T) {
	orders, _ := seededStores()
	toolSet := OrderTools(orders)

	result := execute(t, toolSet, "track_delivery", `{"trackingNumber":"TRK-9876543210"}`)
	require.Equal(t, true, result["found"])

	tracking := result["tracking"].(map[string]any)
	assert.Equal(t, "ORD-001", tracking["orderId"])
	assert.Len(t, tracking["events"], 4)

	result = execute(t, toolSet, "track_delivery", `{"trackingNumber":"TRK-0000"}`)
	assert.Equal(t, false, result["found"])
}

func TestListOrders(t *testing.T) {
	orders, _ := seededStores()
	toolSet := OrderTools(orders)

	result := execute(t, toolSet, "list_orders", `{"userId":"user-demo"}`)
	require.Equal(t, true, result["found"])
	assert.Len(t, result["orders"], 4)

	result = execute(t, toolSet, "list_orders", `{"userId":"user-demo","status":"shipped"}`)
	require.Equal(t, true, result["found"])
	assert.Len(t, result["orders"], 1)

	result = execute(t, toolSet, "list_orders", `{"userId":"nobody"}`)
	assert.Equal(t, false, result["found"])
}

func TestGetInvoice(t *testing.T) {
	orders, invoices := seededStores()
	toolSet := BillingTools(orders, invoices)

	result := execute(t, toolSet, "get_invoice", `{"invoiceId":"INV-001"}`)
	require.Equal(t, true, result["found"])
	invoice := result["invoice"].(map[string]any)
	assert.Equal(t, "ORD-001", invoice["orderId"])

	result = execute(t, toolSet, "get_invoice", `{"orderId":"ORD-002"}`)
	require.Equal(t, true, result["found"])
	invoice = result["invoice"].(map[string]any)
	assert.Equal(t, "INV-002", invoice["id"])

	result = execute(t, toolSet, "get_invoice", `{}`)
	assert.Equal(t, false, result["found"])
}

func TestCheckRefundAlreadyRefunded(t *testing.T) {
	orders, invoices := seededStores()
	toolSet := BillingTools(orders, invoices)

	// ORD-004 is cancelled and INV-004 already refunded.
	result := execute(t, toolSet, "check_refund", `{"orderId":"ORD-004"}`)
	require.Equal(t, true, result["found"])
	assert.Equal(t, "completed", result["refundStatus"])
}

func TestCheckRefundEligibility(t *testing.T) {
	orders := storage.NewOrderStore()
	invoices := storage.NewInvoiceStore()

	orders.Put(storage.Order{
		ID:        "ORD-NEW",
		UserID:    "user-demo",
		Status:    "delivered",
		Total:     50,
		CreatedAt: time.Now().AddDate(0, 0, -10),
	})
	orders.Put(storage.Order{
		ID:        "ORD-OLD",
		UserID:    "user-demo",
		Status:    "delivered",
		Total:     50,
		CreatedAt: time.Now().AddDate(0, 0, -45),
	})
	orders.Put(storage.Order{
		ID:        "ORD-PROC",
		UserID:    "user-demo",
		Status:    "processing",
		Total:     50,
		CreatedAt: time.Now().AddDate(0, 0, -1),
	})

	toolSet := BillingTools(orders, invoices)

	result := execute(t, toolSet, "check_refund", `{"orderId":"ORD-NEW"}`)
	assert.Equal(t, true, result["eligible"])
	assert.Equal(t, float64(50), result["eligibleAmount"])

	result = execute(t, toolSet, "check_refund", `{"orderId":"ORD-OLD"}`)
	assert.Equal(t, false, result["eligible"])
	assert.Contains(t, result["message"], "30-day refund window")

	result = execute(t, toolSet, "check_refund", `{"orderId":"ORD-PROC"}`)
	assert.Equal(t, false, result["eligible"])
	assert.Contains(t, result["message"], "still processing")
}

func TestInitiateRefund(t *testing.T) {
	orders, invoices := seededStores()
	toolSet := BillingTools(orders, invoices)

	result := execute(t, toolSet, "initiate_refund", `{"orderId":"ORD-001","reason":"damaged item"}`)
	require.Equal(t, true, result["success"])
	assert.Contains(t, result["refundId"], "REF-")
	assert.Equal(t, 199.97, result["amount"])

	invoice, ok := invoices.FindByOrderID("ORD-001")
	require.True(t, ok)
	assert.Equal(t, "refunded", invoice.Status)

	// A second attempt is rejected.
	result = execute(t, toolSet, "initiate_refund", `{"orderId":"ORD-001","reason":"again"}`)
	assert.Equal(t, false, result["success"])
}

func TestListInvoices(t *testing.T) {
	orders, invoices := seededStores()
	toolSet := BillingTools(orders, invoices)

	result := execute(t, toolSet, "list_invoices", `{"userId":"user-demo"}`)
	require.Equal(t, true, result["found"])
	assert.Len(t, result["invoices"], 5)

	result = execute(t, toolSet, "list_invoices", `{"userId":"user-demo","status":"paid"}`)
	require.Equal(t, true, result["found"])
	assert.Len(t, result["invoices"], 2)
}

func TestSearchKnowledgeBase(t *testing.T) {
	toolSet := SupportTools()

	result := execute(t, toolSet, "search_knowledge_base", `{"query":"password"}`)
	require.Equal(t, true, result["found"])
	results := result["results"].([]any)
	require.NotEmpty(t, results)

	first := results[0].(map[string]any)
	assert.Contains(t, first["question"], "password")

	result = execute(t, toolSet, "search_knowledge_base", `{"query":"shipping","category":"account"}`)
	assert.Equal(t, false, result["found"])

	result = execute(t, toolSet, "search_knowledge_base", `{"query":"zebra"}`)
	assert.Equal(t, false, result["found"])
}

func TestSearchKnowledgeBaseCapsResults(t *testing.T) {
	toolSet := SupportTools()

	// An empty query substring-matches every entry.
	result := execute(t, toolSet, "search_knowledge_base", `{"query":""}`)
	require.Equal(t, true, result["found"])
	assert.Len(t, result["results"], maxKnowledgeResults)
}

func TestCreateTicket(t *testing.T) {
	toolSet := SupportTools()

	result := execute(t, toolSet, "create_ticket", `{"subject":"Broken login","description":"cannot sign in","priority":"high"}`)
	require.Equal(t, true, result["success"])
	assert.Contains(t, result["ticketId"], "TKT-")
	assert.Contains(t, result["message"], "2 hours")

	result = execute(t, toolSet, "create_ticket", `{"subject":"s","description":"d","priority":"low"}`)
	assert.Contains(t, result["message"], "48 hours")
}

func TestInvalidArguments(t *testing.T) {
	orders, invoices := seededStores()

	for _, tl := range OrderTools(orders) {
		_, err := tl.Execute(context.Background(), "not json")
		assert.Error(t, err, "tool %s", tl.Name())
	}

	for _, tl := range BillingTools(orders, invoices) {
		_, err := tl.Execute(context.Background(), "not json")
		assert.Error(t, err, "tool %s", tl.Name())
	}
}
