package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

type Repository interface {
	ListByUser(ctx context.Context, userID int64, q Query) ([]Transaction, int, error)
	GetByID(ctx context.Context, id, userID int64) (*Transaction, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectColumns = `id, order_id, order_return_id, user_id, amount::text, type, payment_method, created_at`

func (r *PGRepo) ListByUser(ctx context.Context, userID int64, q Query) ([]Transaction, int, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR type = $2)
	`, userID, string(q.Type)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY `+q.orderBy()+`
		LIMIT $3 OFFSET $4
	`, userID, string(q.Type), q.Page.Limit, q.Page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		t, err := ScanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id, userID int64) (*Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	t, err := ScanTransaction(r.db.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM transactions WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ScanTransaction reads one row selected with the column list used by this
// package (amount as text).
func ScanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		t      Transaction
		amount string
	)
	if err := row.Scan(&t.ID, &t.OrderID, &t.OrderReturnID, &t.UserID, &amount, &t.Type, &t.PaymentMethod, &t.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = d
	return &t, nil
}

// Columns is the select list understood by ScanTransaction.
func Columns() string { return selectColumns }
