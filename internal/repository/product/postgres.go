package product

import (
	"context"
	"errors"
	"io"
	"log"

	"simple-store/internal/db"
	"simple-store/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

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

// NewPostgresWriter returns a Writer backed by Postgres.
func NewPostgresWriter(pool db.Pool, logger *log.Logger) Writer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productReturning = "RETURNING id, name, COALESCE(description, ''), price, COALESCE(image_url, ''), created_at"

func selectProducts() sq.SelectBuilder {
	return psql.Select(
		"id",
		"name",
		"COALESCE(description, '')",
		"price",
		"COALESCE(image_url, '')",
		"created_at",
	).From("products")
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q, args, err := selectProducts().OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	result, err := r.query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, db.Classify(err)
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q, args, err := selectProducts().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var p domain.Product
	err = r.pool.QueryRow(ctx, q, args...).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%d not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, db.Classify(err)
	}
	return &p, nil
}

// FindByIDs fetches every product whose id is in ids with a single query.
// Missing ids are simply absent from the result.
func (r *postgresRepo) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := selectProducts().Where(sq.Eq{"id": ids}).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	result, err := r.query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: find ids=%v error=%v", ids, err)
		return nil, db.Classify(err)
	}
	r.logger.Printf("product repo: find requested=%d found=%d", len(ids), len(result))
	return result, nil
}

// Upsert matches products by name: an existing row gets the new description,
// price and image, otherwise a row is inserted. Past order items keep their
// own price snapshot either way.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updateQ, updateArgs, err := psql.Update("products").
		Set("description", p.Description).
		Set("price", p.Price).
		Set("image_url", p.ImageURL).
		Where(sq.Eq{"name": p.Name}).
		Suffix(productReturning).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out domain.Product
	err = tx.QueryRow(ctx, updateQ, updateArgs...).Scan(&out.ID, &out.Name, &out.Description, &out.Price, &out.ImageURL, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		insertQ, insertArgs, buildErr := psql.Insert("products").
			Columns("name", "description", "price", "image_url").
			Values(p.Name, p.Description, p.Price, p.ImageURL).
			Suffix(productReturning).
			ToSql()
		if buildErr != nil {
			return nil, buildErr
		}
		err = tx.QueryRow(ctx, insertQ, insertArgs...).Scan(&out.ID, &out.Name, &out.Description, &out.Price, &out.ImageURL, &out.CreatedAt)
	}
	if err != nil {
		r.logger.Printf("product repo: upsert name=%q error=%v", p.Name, err)
		return nil, db.Classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, db.Classify(err)
	}
	r.logger.Printf("product repo: upsert id=%d name=%q", out.ID, out.Name)
	return &out, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
