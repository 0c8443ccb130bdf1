package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/shopspring/decimal"

	"simple-store/internal/domain"
	orderrepo "simple-store/internal/repository/order"
)

type catalog interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type publisher interface {
	PublishOrderPlaced(ctx context.Context, placed domain.PlacedOrder) error
}

type Service struct {
	catalog   catalog
	repo      orderrepo.Repository
	publisher publisher
	logger    *log.Logger
}

// New wires the order service. A nil publisher disables order events.
func New(catalog catalog, repo orderrepo.Repository, publisher publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{catalog: catalog, repo: repo, publisher: publisher, logger: logger}
}

// Place validates and prices the cart against the catalog, then persists the
// order and its items atomically. Nothing is written when it returns an error.
func (s *Service) Place(ctx context.Context, userID int64, cart []domain.CartLine) (int64, error) {
	if len(cart) == 0 {
		return 0, domain.ErrEmptyCart
	}
	if userID <= 0 {
		return 0, domain.ErrInvalidUser
	}
	ids, quantities, err := mergeLines(cart)
	if err != nil {
		return 0, err
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(ids))
	total := decimal.Zero
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return 0, &domain.ProductNotFoundError{ProductID: id}
		}
		item := domain.OrderItem{ProductID: id, Quantity: quantities[id], Price: p.Price}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}

	placed, err := s.persist(ctx, domain.Order{UserID: userID, TotalPrice: total}, items)
	if err != nil {
		s.logger.Printf("order service: place failed user_id=%d lines=%d err=%v", userID, len(cart), err)
		return 0, err
	}
	s.logger.Printf("order service: placed order_id=%d user_id=%d total=%s items=%d",
		placed.Order.ID, userID, placed.Order.TotalPrice.StringFixed(2), len(placed.Items))

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, *placed); err != nil {
			s.logger.Printf("order service: publish order_id=%d err=%v", placed.Order.ID, err)
		}
	}
	return placed.Order.ID, nil
}

func (s *Service) persist(ctx context.Context, o domain.Order, items []domain.OrderItem) (placed *domain.PlacedOrder, err error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		// Roll back even when the request context is already cancelled.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			s.logger.Printf("order service: rollback err=%v", rbErr)
		}
	}()

	created, err := tx.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = created.ID
	}
	stored, err := tx.CreateItems(ctx, items)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.PlacedOrder{Order: *created, Items: stored}, nil
}

// Get returns the receipt for a committed order.
func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Receipt, error) {
	if orderID <= 0 {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetReceipt(ctx, orderID)
}

// maxQuantity is the largest quantity order_items.quantity (INTEGER) can hold.
const maxQuantity = math.MaxInt32

// mergeLines returns the distinct product ids in first-seen order together
// with the summed quantity per product.
func mergeLines(cart []domain.CartLine) ([]int64, map[int64]int, error) {
	ids := make([]int64, 0, len(cart))
	quantities := make(map[int64]int, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidQuantity
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		if line.Quantity > maxQuantity-quantities[line.ProductID] {
			return nil, nil, domain.ErrInvalidQuantity
		}
		quantities[line.ProductID] += line.Quantity
	}
	return ids, quantities, nil
}
