package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

// Products is the sample catalog used for manual testing.
var Products = []productSeed{
	{
		Name:        "Classic Leather Wallet",
		Description: "A sleek, durable wallet made from genuine leather.",
		Price:       decimal.RequireFromString("49.99"),
		ImageURL:    "https://placehold.co/400x400/556B2F/white?text=Wallet",
	},
	{
		Name:        "Modern Smartwatch",
		Description: "Stay connected with this stylish smartwatch. Tracks fitness and notifications.",
		Price:       decimal.RequireFromString("199.50"),
		ImageURL:    "https://placehold.co/400x400/4682B4/white?text=Watch",
	},
	{
		Name:        "Wireless Headphones",
		Description: "Experience high-fidelity sound with these comfortable over-ear headphones.",
		Price:       decimal.RequireFromString("89.99"),
		ImageURL:    "https://placehold.co/400x400/2F4F4F/white?text=Headphones",
	},
}

// Apply inserts the sample catalog. It is idempotent: products are matched by
// name and existing rows, including their current prices, are left alone.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	inserted := 0
	for _, p := range Products {
		ok, err := insertProduct(ctx, pool, p)
		if err != nil {
			return inserted, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) (bool, error) {
	const q = `
INSERT INTO products (name, description, price, image_url)
SELECT $1::text, $2::text, $3::numeric, $4::text
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
`
	tag, err := pool.Exec(ctx, q, p.Name, p.Description, p.Price, p.ImageURL)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
