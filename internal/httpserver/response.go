package httpserver

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"simple-store/internal/domain"
)

// money renders a decimal as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type productResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	ImageURL    string      `json:"imageUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

// Receipt keys use the casing the browser client reads (User, Products, OrderItem).
type receiptResponse struct {
	ID         int64            `json:"id"`
	UserID     int64            `json:"userId"`
	TotalPrice json.Number      `json:"totalPrice"`
	CreatedAt  time.Time        `json:"createdAt"`
	User       receiptUser      `json:"User"`
	Products   []receiptProduct `json:"Products"`
}

type receiptUser struct {
	Username string `json:"username"`
}

type receiptProduct struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       json.Number      `json:"price"`
	ImageURL    string           `json:"imageUrl"`
	OrderItem   receiptOrderItem `json:"OrderItem"`
}

type receiptOrderItem struct {
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
}

func toReceiptResponse(r domain.Receipt) receiptResponse {
	products := make([]receiptProduct, 0, len(r.Items))
	for _, it := range r.Items {
		// Purchase-time snapshot, not the current catalog price.
		price := money(it.Price)
		products = append(products, receiptProduct{
			ID:          it.ProductID,
			Name:        it.ProductName,
			Description: it.ProductDescription,
			Price:       price,
			ImageURL:    it.ProductImageURL,
			OrderItem:   receiptOrderItem{Quantity: it.Quantity, Price: price},
		})
	}
	return receiptResponse{
		ID:         r.Order.ID,
		UserID:     r.Order.UserID,
		TotalPrice: money(r.Order.TotalPrice),
		CreatedAt:  r.Order.CreatedAt,
		User:       receiptUser{Username: r.Username},
		Products:   products,
	}
}

// publicError is the client-facing text for a storage failure. The cause is
// logged, never returned.
func publicError(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage temporarily unavailable"
	case errors.Is(err, domain.ErrConstraintViolation):
		return "order violates a storage constraint"
	default:
		return "internal error"
	}
}
