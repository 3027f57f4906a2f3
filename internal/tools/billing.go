package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentdesk/agentdesk/internal/storage"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
)

const refundWindowDays = 30

// BillingTools returns the tool set available to the billing agent.
func BillingTools(orders *storage.OrderStore, invoices *storage.InvoiceStore) []tool.Tool {
	return []tool.Tool{
		getInvoiceTool(invoices),
		listInvoicesTool(invoices),
		checkRefundTool(orders, invoices),
		initiateRefundTool(orders, invoices),
	}
}

func getInvoiceTool(invoices *storage.InvoiceStore) tool.Tool {
	return tool.Define(
		"get_invoice",
		"Get invoice details by invoice ID or order ID",
		tool.ObjectSchema(map[string]any{
			"invoiceId": map[string]any{
				"type":        "string",
				"description": "The invoice ID to look up (e.g., INV-001)",
			},
			"orderId": map[string]any{
				"type":        "string",
				"description": "The order ID to find the invoice for",
			},
		}),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				InvoiceID string `json:"invoiceId"`
				OrderID   string `json:"orderId"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			var (
				invoice storage.Invoice
				ok      bool
			)
			switch {
			case params.InvoiceID != "":
				invoice, ok = invoices.Get(params.InvoiceID)
			case params.OrderID != "":
				invoice, ok = invoices.FindByOrderID(params.OrderID)
			default:
				return marshalResult(map[string]any{
					"found":   false,
					"message": "Please provide either an invoice ID or an order ID.",
				})
			}

			if !ok {
				return marshalResult(map[string]any{
					"found":   false,
					"message": "Invoice not found. Please check the ID and try again.",
				})
			}

			return marshalResult(map[string]any{
				"found":   true,
				"invoice": invoicePayload(invoice),
			})
		},
	)
}

func listInvoicesTool(invoices *storage.InvoiceStore) tool.Tool {
	return tool.Define(
		"list_invoices",
		"List all invoices for a user",
		tool.ObjectSchema(map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "The user ID to list invoices for",
			},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"paid", "pending", "refunded", "overdue"},
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

			matched := invoices.List(params.UserID, params.Status, 10)
			if len(matched) == 0 {
				return marshalResult(map[string]any{
					"found":   false,
					"message": "No invoices found matching the criteria.",
				})
			}

			payloads := make([]map[string]any, 0, len(matched))
			for _, invoice := range matched {
				payloads = append(payloads, invoicePayload(invoice))
			}

			return marshalResult(map[string]any{
				"found":    true,
				"invoices": payloads,
			})
		},
	)
}

func checkRefundTool(orders *storage.OrderStore, invoices *storage.InvoiceStore) tool.Tool {
	return tool.Define(
		"check_refund",
		"Check the refund status and eligibility for an order",
		tool.ObjectSchema(map[string]any{
			"orderId": map[string]any{
				"type":        "string",
				"description": "The order ID to check refund status for",
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
					"message": fmt.Sprintf("Order %s not found.", params.OrderID),
				})
			}

			if invoice, ok := invoices.FindByOrderID(order.ID); ok && invoice.Status == "refunded" {
				return marshalResult(map[string]any{
					"found":        true,
					"refundStatus": "completed",
					"amount":       invoice.Amount,
					"message":      "A refund has already been processed for this order. It should appear on your statement within 5-7 business days.",
				})
			}

			if order.Status == "cancelled" {
				return marshalResult(map[string]any{
					"found":          true,
					"refundStatus":   "processing",
					"eligibleAmount": order.Total,
					"message":        "This order was cancelled and the refund is being processed.",
				})
			}

			daysSinceOrder := int(time.Since(order.CreatedAt).Hours() / 24)
			eligible := daysSinceOrder <= refundWindowDays && order.Status != "processing"

			result := map[string]any{
				"found":          true,
				"refundStatus":   "none",
				"eligible":       eligible,
				"daysSinceOrder": daysSinceOrder,
			}
			if eligible {
				result["eligibleAmount"] = order.Total
				result["message"] = fmt.Sprintf("This order is eligible for a refund of $%.2f.", order.Total)
			} else if order.Status == "processing" {
				result["message"] = "This order is still processing. You can cancel it instead of requesting a refund."
			} else {
				result["message"] = fmt.Sprintf("This order is outside the %d-day refund window.", refundWindowDays)
			}

			return marshalResult(result)
		},
	)
}

func initiateRefundTool(orders *storage.OrderStore, invoices *storage.InvoiceStore) tool.Tool {
	return tool.Define(
		"initiate_refund",
		"Initiate a refund for an order",
		tool.ObjectSchema(map[string]any{
			"orderId": map[string]any{
				"type":        "string",
				"description": "The order ID to refund",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "The reason for the refund",
			},
		}, "orderId", "reason"),
		func(ctx context.Context, args string) (string, error) {
			var params struct {
				OrderID string `json:"orderId"`
				Reason  string `json:"reason"`
			}
			if err := json.Unmarshal([]byte(args), &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			order, ok := orders.Get(params.OrderID)
			if !ok {
				return marshalResult(map[string]any{
					"success": false,
					"message": fmt.Sprintf("Order %s not found.", params.OrderID),
				})
			}

			if invoice, ok := invoices.FindByOrderID(order.ID); ok && invoice.Status == "refunded" {
				return marshalResult(map[string]any{
					"success": false,
					"message": "A refund has already been processed for this order.",
				})
			}

			invoices.MarkRefundedByOrderID(order.ID)

			return marshalResult(map[string]any{
				"success":  true,
				"refundId": newRefundID(),
				"amount":   order.Total,
				"message":  fmt.Sprintf("Refund of $%.2f initiated for order %s. It will appear on your statement within 5-7 business days.", order.Total, order.ID),
			})
		},
	)
}

func newRefundID() string {
	return "REF-" + strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}

func invoicePayload(invoice storage.Invoice) map[string]any {
	return map[string]any{
		"id":      invoice.ID,
		"orderId": invoice.OrderID,
		"amount":  invoice.Amount,
		"status":  invoice.Status,
		"dueDate": invoice.DueDate,
	}
}
