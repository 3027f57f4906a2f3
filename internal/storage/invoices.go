package storage

import (
	"sort"
	"sync"
	"time"
)

// Invoice is a billing record tied to an order.
type Invoice struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueDate   string    `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceStore is an in-memory invoice ledger. Safe for concurrent use.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]Invoice
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[string]Invoice)}
}

func (s *InvoiceStore) Put(invoice Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = invoice
}

func (s *InvoiceStore) Get(id string) (Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices[id]
	return invoice, ok
}

func (s *InvoiceStore) FindByOrderID(orderID string) (Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, invoice := range s.invoices {
		if invoice.OrderID == orderID {
			return invoice, true
		}
	}

	return Invoice{}, false
}

// List returns up to limit invoices for a user, newest first, optionally
// filtered by status.
func (s *InvoiceStore) List(userID, status string, limit int) []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Invoice
	for _, invoice := range s.invoices {
		if invoice.UserID != userID {
			continue
		}
		if status != "" && invoice.Status != status {
			continue
		}
		result = append(result, invoice)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

// MarkRefundedByOrderID sets every invoice of the order to refunded and
// returns how many were updated.
func (s *InvoiceStore) MarkRefundedByOrderID(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int
	for id, invoice := range s.invoices {
		if invoice.OrderID == orderID {
			invoice.Status = "refunded"
			s.invoices[id] = invoice
			updated++
		}
	}

	return updated
}
