package product

import (
	"context"

	"simple-store/internal/domain"
)

// Repository reads the product catalog. Nothing in the order flow writes it.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

// Writer loads catalog rows in bulk; the CSV importer is its only caller.
type Writer interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
