package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is untrusted client input: a product reference and a quantity.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// Order is immutable once its transaction commits.
type Order struct {
	ID         int64
	UserID     int64
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// OrderItem carries the unit price snapshotted at purchase time.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// LineTotal is the item's contribution to the order total.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Receipt is an order joined with its purchaser and purchased products.
type Receipt struct {
	Order    Order
	Username string
	Items    []ReceiptItem
}

// ReceiptItem pairs an order item with the product fields needed to render it.
type ReceiptItem struct {
	OrderItem
	ProductName        string
	ProductDescription string
	ProductImageURL    string
}

// PlacedOrder is the committed result of an order placement.
type PlacedOrder struct {
	Order Order
	Items []OrderItem
}
