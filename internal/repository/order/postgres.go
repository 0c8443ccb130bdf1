package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"simple-store/internal/db"
	"simple-store/internal/domain"

	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	pool   db.Pool
	logger *log.Logger
}

func NewPostgres(pool db.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Printf("order repo: begin error=%v", err)
		return nil, db.Classify(fmt.Errorf("begin: %w", err))
	}
	return &postgresTx{tx: tx, logger: r.logger}, nil
}

func (r *postgresRepo) GetReceipt(ctx context.Context, orderID int64) (*domain.Receipt, error) {
	const orderQuery = `
SELECT o.id, o.user_id, o.total_price, o.created_at, u.username
FROM orders o
JOIN users u ON u.id = o.user_id
WHERE o.id = $1
`
	var rec domain.Receipt
	err := r.pool.QueryRow(ctx, orderQuery, orderID).Scan(
		&rec.Order.ID,
		&rec.Order.UserID,
		&rec.Order.TotalPrice,
		&rec.Order.CreatedAt,
		&rec.Username,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("order repo: receipt id=%d not found", orderID)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: receipt id=%d error=%v", orderID, err)
		return nil, db.Classify(err)
	}

	const itemsQuery = `
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
       p.name, COALESCE(p.description, ''), COALESCE(p.image_url, '')
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, orderID)
	if err != nil {
		r.logger.Printf("order repo: receipt items id=%d error=%v", orderID, err)
		return nil, db.Classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.ReceiptItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Quantity,
			&it.Price,
			&it.ProductName,
			&it.ProductDescription,
			&it.ProductImageURL,
		); err != nil {
			r.logger.Printf("order repo: receipt scan id=%d error=%v", orderID, err)
			return nil, db.Classify(err)
		}
		rec.Items = append(rec.Items, it)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: receipt rows id=%d error=%v", orderID, err)
		return nil, db.Classify(err)
	}
	return &rec, nil
}

type postgresTx struct {
	tx     pgx.Tx
	logger *log.Logger
}

func (t *postgresTx) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, total_price)
VALUES ($1, $2)
RETURNING id, user_id, total_price, created_at
`
	var out domain.Order
	err := t.tx.QueryRow(ctx, q, o.UserID, o.TotalPrice).Scan(&out.ID, &out.UserID, &out.TotalPrice, &out.CreatedAt)
	if err != nil {
		t.logger.Printf("order repo: insert order user_id=%d error=%v", o.UserID, err)
		return nil, db.Classify(fmt.Errorf("insert order: %w", err))
	}
	return &out, nil
}

func (t *postgresTx) CreateItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	const q = `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	out := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if err := t.tx.QueryRow(ctx, q, it.OrderID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID); err != nil {
			t.logger.Printf("order repo: insert item order_id=%d product_id=%d error=%v", it.OrderID, it.ProductID, err)
			return nil, db.Classify(fmt.Errorf("insert order_item: %w", err))
		}
		out = append(out, it)
	}
	return out, nil
}

func (t *postgresTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		t.logger.Printf("order repo: commit error=%v", err)
		return db.Classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		t.logger.Printf("order repo: rollback error=%v", err)
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
