package storage

import "time"

// DemoUserID is the user all demo records belong to.
const DemoUserID = "user-demo"

// SeedDemoData loads the demo catalog into the given stores. Order creation
// dates are staggered so list ordering and refund-eligibility windows are
// exercised out of the box.
func SeedDemoData(orders *OrderStore, invoices *InvoiceStore) {
	now := time.Now()

	orders.Put(Order{
		ID:     "ORD-001",
		UserID: DemoUserID,
		Status: "shipped",
		Items: []OrderItem{
			{Name: "Wireless Headphones", Quantity: 1, Price: 149.99},
			{Name: "Phone Case", Quantity: 2, Price: 24.99},
		},
		Total:             199.97,
		TrackingNumber:    "TRK-9876543210",
		EstimatedDelivery: "2026-01-20",
		CreatedAt:         now.AddDate(0, 0, -5),
	})

	orders.Put(Order{
		ID:     "ORD-002",
		UserID: DemoUserID,
		Status: "processing",
		Items: []OrderItem{
			{Name: "Mechanical Keyboard", Quantity: 1, Price: 189.99},
		},
		Total:             189.99,
		EstimatedDelivery: "2026-01-25",
		CreatedAt:         now.AddDate(0, 0, -2),
	})

	orders.Put(Order{
		ID:     "ORD-003",
		UserID: DemoUserID,
		Status: "delivered",
		Items: []OrderItem{
			{Name: "USB-C Hub", Quantity: 1, Price: 79.99},
			{Name: "HDMI Cable", Quantity: 3, Price: 15.99},
		},
		Total:             127.96,
		TrackingNumber:    "TRK-1234567890",
		EstimatedDelivery: "2026-01-10",
		CreatedAt:         now.AddDate(0, 0, -15),
	})

	orders.Put(Order{
		ID:     "ORD-004",
		UserID: DemoUserID,
		Status: "cancelled",
		Items: []OrderItem{
			{Name: "Gaming Mouse", Quantity: 1, Price: 69.99},
		},
		Total:     69.99,
		CreatedAt: now.AddDate(0, 0, -10),
	})

	invoices.Put(Invoice{
		ID:        "INV-001",
		UserID:    DemoUserID,
		OrderID:   "ORD-001",
		Amount:    199.97,
		Status:    "paid",
		DueDate:   "2026-01-15",
		CreatedAt: now.AddDate(0, 0, -5),
	})

	invoices.Put(Invoice{
		ID:        "INV-002",
		UserID:    DemoUserID,
		OrderID:   "ORD-002",
		Amount:    189.99,
		Status:    "pending",
		DueDate:   "2026-02-01",
		CreatedAt: now.AddDate(0, 0, -2),
	})

	invoices.Put(Invoice{
		ID:        "INV-003",
		UserID:    DemoUserID,
		OrderID:   "ORD-003",
		Amount:    127.96,
		Status:    "paid",
		DueDate:   "2026-01-05",
		CreatedAt: now.AddDate(0, 0, -15),
	})

	invoices.Put(Invoice{
		ID:        "INV-004",
		UserID:    DemoUserID,
		OrderID:   "ORD-004",
		Amount:    69.99,
		Status:    "refunded",
		DueDate:   "2026-01-20",
		CreatedAt: now.AddDate(0, 0, -10),
	})

	invoices.Put(Invoice{
		ID:        "INV-005",
		UserID:    DemoUserID,
		OrderID:   "ORD-005",
		Amount:    299.99,
		Status:    "overdue",
		DueDate:   "2026-01-01",
		CreatedAt: now.AddDate(0, 0, -30),
	})
}
