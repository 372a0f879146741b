package models

import "time"

// OrderState represents the lifecycle state of an imagery order
type OrderState string

const (
	OrderQueued    OrderState = "queued"
	OrderRunning   OrderState = "running"
	OrderSuccess   OrderState = "success"
	OrderFailed    OrderState = "failed"
	OrderCancelled OrderState = "cancelled"
	OrderPartial   OrderState = "partial"
)

// Terminal reports whether the order has finished processing.
func (s OrderState) Terminal() bool {
	switch s {
	case OrderSuccess, OrderFailed, OrderCancelled, OrderPartial:
		return true
	}
	return false
}

// Order represents a clip-and-download order placed against the orders API
type Order struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	State     OrderState `json:"state"`
	CreatedOn time.Time  `json:"created_on"`
	ItemIDs   []string   `json:"item_ids"`
	Assets    []string   `json:"assets"` // delivery download URLs, populated on success
}
