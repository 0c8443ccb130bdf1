package order

import (
	"context"

	"simple-store/internal/domain"
)

// Repository is the persistence boundary for orders: it opens transactions for
// writes and serves the read-only receipt join.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetReceipt(ctx context.Context, orderID int64) (*domain.Receipt, error)
}

// Tx groups order writes that must commit or roll back together. Rollback after
// Commit is a no-op.
type Tx interface {
	CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	CreateItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
