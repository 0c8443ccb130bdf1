package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"simple-store/internal/domain"
)

// OrderCreatedQueue receives one message per committed order.
const OrderCreatedQueue = "order.created"

// Publisher announces committed orders to other systems.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, placed domain.PlacedOrder) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, domain.PlacedOrder) error { return nil }

// OrderCreated is the JSON body published to OrderCreatedQueue.
type OrderCreated struct {
	EventID    string      `json:"eventId"`
	EventType  string      `json:"eventType"`
	OrderID    int64       `json:"orderId"`
	UserID     int64       `json:"userId"`
	TotalPrice json.Number `json:"totalPrice"`
	Items      []OrderLine `json:"items"`
	CreatedAt  time.Time   `json:"createdAt"`
	Timestamp  time.Time   `json:"timestamp"`
}

type OrderLine struct {
	ProductID int64       `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

func newOrderCreated(placed domain.PlacedOrder, now time.Time) OrderCreated {
	ev := OrderCreated{
		EventID:    uuid.NewString(),
		EventType:  "OrderCreated",
		OrderID:    placed.Order.ID,
		UserID:     placed.Order.UserID,
		TotalPrice: json.Number(placed.Order.TotalPrice.StringFixed(2)),
		Items:      make([]OrderLine, 0, len(placed.Items)),
		CreatedAt:  placed.Order.CreatedAt.UTC(),
		Timestamp:  now.UTC(),
	}
	for _, it := range placed.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     json.Number(it.Price.StringFixed(2)),
		})
	}
	return ev
}
