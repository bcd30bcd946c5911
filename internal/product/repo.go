// Package product provides the catalog repository and its PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Name string
	Page pagination.Params
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, int, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	SoftDelete(ctx context.Context, id, merchantID int64) (bool, error)
	ActiveByIDs(ctx context.Context, ids []int64) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectColumns = `id, merchant_id, name, description, price::text, is_deleted, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.MerchantID, &p.Name, &p.Description, &price, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = d
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (merchant_id, name, description, price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, p.MerchantID, p.Name, p.Description, p.Price.String()).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM products WHERE id=$1 AND NOT is_deleted
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page := q.Page.Normalize()
	search := strings.TrimSpace(q.Name)

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM products
		WHERE NOT is_deleted AND ($1 = '' OR name ILIKE '%'||$1||'%')
	`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM products
		WHERE NOT is_deleted AND ($1 = '' OR name ILIKE '%'||$1||'%')
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, search, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Update changes a product owned by p.MerchantID, or any product when
// p.MerchantID is 0. Empty name/description keep the stored value; price is
// only written when updatePrice is set.
func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		tag pgconn.CommandTag
		err error
	)
	if updatePrice {
		tag, err = r.db.Exec(ctx, `
			UPDATE products
			SET name = COALESCE(NULLIF($3,''), name),
			    description = COALESCE(NULLIF($4,''), description),
			    price = $5,
			    updated_at = NOW()
			WHERE id = $1 AND ($2 = 0 OR merchant_id = $2) AND NOT is_deleted
		`, p.ID, p.MerchantID, p.Name, p.Description, p.Price.String())
	} else {
		tag, err = r.db.Exec(ctx, `
			UPDATE products
			SET name = COALESCE(NULLIF($3,''), name),
			    description = COALESCE(NULLIF($4,''), description),
			    updated_at = NOW()
			WHERE id = $1 AND ($2 = 0 OR merchant_id = $2) AND NOT is_deleted
		`, p.ID, p.MerchantID, p.Name, p.Description)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete flags the product as deleted; merchantID 0 skips the owner
// check. Existing orders keep their price snapshots, new orders can no longer
// reference it.
func (r *PGRepo) SoftDelete(ctx context.Context, id, merchantID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE products SET is_deleted = TRUE, updated_at = NOW()
		WHERE id=$1 AND ($2 = 0 OR merchant_id = $2) AND NOT is_deleted
	`, id, merchantID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// ActiveByIDs returns the non-deleted products among ids with their current price.
func (r *PGRepo) ActiveByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM products WHERE id = ANY($1) AND NOT is_deleted
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
