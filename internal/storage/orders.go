package storage

import (
	"sort"
	"sync"
	"time"
)

// OrderItem is one line item of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a customer order as the order tools see it.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"userId"`
	Status            string      `json:"status"`
	Items             []OrderItem `json:"items"`
	Total             float64     `json:"total"`
	TrackingNumber    string      `json:"trackingNumber,omitempty"`
	EstimatedDelivery string      `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// OrderStore is an in-memory order catalog. Safe for concurrent use.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]Order)}
}

func (s *OrderStore) Put(order Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
}

func (s *OrderStore) Get(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	return order, ok
}

func (s *OrderStore) FindByTrackingNumber(trackingNumber string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.TrackingNumber != "" && order.TrackingNumber == trackingNumber {
			return order, true
		}
	}

	return Order{}, false
}

// List returns up to limit orders for a user, newest first, optionally
// filtered by status.
func (s *OrderStore) List(userID, status string, limit int) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Order
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}
