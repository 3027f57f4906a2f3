package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
)

// OrderTools returns the tool set available to the order agent.
func OrderTools(orders *storage.OrderStore) []tool.Tool {
	return []tool.Tool{
		fetchOrderTool(orders),
		trackDeliveryTool(orders),
		listOrdersTool(orders),
	}
}

func fetchOrderTool(orders *storage.OrderStore) tool.Tool {
	return tool.Define(
		"fetch_order",
		"Fetch order details by order ID",
		tool.ObjectSchema(map[string]any{
			"orderId": map[string]any{
				"type":        "string",
				"description": "The order ID to look up (e.g., ORD-001)",
			},
		}, "orderId"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				OrderID string `json:"orderId"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			order, ok := orders.Get(params.OrderID)
			if !ok {
				return marshalResult(map[string]any{
					"found":   false,
					"message": fmt.Sprintf("Order %s not found. Please check the order ID and try again.", params.OrderID),
				})
			}

			return marshalResult(map[string]any{
				"found": true,
				"order": map[string]any{
					"id":                order.ID,
					"status":            order.Status,
					"items":             order.Items,
					"total":             order.Total,
					"trackingNumber":    order.TrackingNumber,
					"estimatedDelivery": order.EstimatedDelivery,
					"createdAt":         order.CreatedAt,
				},
			})
		},
	)
}

// trackingEvents is a canned timeline; a real carrier integration sits
// behind the same payload shape.
var trackingEvents = []map[string]string{
	{"date": "2026-01-15", "time": "09:00", "status": "Package picked up from seller", "location": "Los Angeles, CA"},
	{"date": "2026-01-16", "time": "14:30", "status": "In transit to regional facility", "location": "Phoenix, AZ"},
	{"date": "2026-01-17", "time": "08:15", "status": "Arrived at regional distribution center", "location": "Denver, CO"},
	{"date": "2026-01-17", "time": "16:45", "status": "Out for delivery", "location": "Local Delivery Hub"},
}

func trackDeliveryTool(orders *storage.OrderStore) tool.Tool {
	return tool.Define(
		"track_delivery",
		"Track the delivery status of an order using its tracking number",
		tool.ObjectSchema(map[string]any{
			"trackingNumber": map[string]any{
				"type":        "string",
				"description": "The tracking number to look up",
			},
		}, "trackingNumber"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				TrackingNumber string `json:"trackingNumber"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			order, ok := orders.FindByTrackingNumber(params.TrackingNumber)
			if !ok {
				return marshalResult(map[string]any{
					"found":   false,
					"message": fmt.Sprintf("No order found with tracking number %s.", params.TrackingNumber),
				})
			}

			return marshalResult(map[string]any{
				"found": true,
				"tracking": map[string]any{
					"trackingNumber":    params.TrackingNumber,
					"orderId":           order.ID,
					"currentStatus":     order.Status,
					"estimatedDelivery": order.EstimatedDelivery,
					"events":            trackingEvents,
				},
			})
		},
	)
}

func listOrdersTool(orders *storage.OrderStore) tool.Tool {
	return tool.Define(
		"list_orders",
		"List all orders for a user",
		tool.ObjectSchema(map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "The user ID to list orders for",
			},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"shipped", "processing", "cancelled", "delivered"},
			},
		}, "userId"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				UserID string `json:"userId"`
				Status string `json:"status"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			matched := orders.List(params.UserID, params.Status, 10)
			if len(matched) == 0 {
				return marshalResult(map[string]any{
					"found":   false,
					"message": "No orders found matching the criteria.",
				})
			}

			summaries := make([]map[string]any, 0, len(matched))
			for _, order := range matched {
				summaries = append(summaries, map[string]any{
					"id":        order.ID,
					"status":    order.Status,
					"total":     order.Total,
					"itemCount": len(order.Items),
					"createdAt": order.CreatedAt,
				})
			}

			return marshalResult(map[string]any{
				"found":  true,
				"orders": summaries,
			})
		},
	)
}

func marshalResult(result map[string]any) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(data), nil
}
