package order

import (
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Event is the envelope written to the orders topic, keyed by order id.
type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   *model.Order `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}
