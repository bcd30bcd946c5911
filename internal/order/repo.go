package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/ledger"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
	"github.com/MikeMC777/ecom-returns/internal/product"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) FindByID(ctx context.Context, id, userID int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, order_status, created_at, updated_at
		FROM orders WHERE id=$1 AND user_id=$2
	`, id, userID).Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	orders := []Order{o}
	if err := loadDetails(ctx, s.db, orders, true); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, order_status, created_at, updated_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
	`, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := loadDetails(ctx, s.db, out, false); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// loadDetails fills lines, transactions and returns of every order with one
// query per relation. withProducts joins the catalog row onto lines and items.
func loadDetails(ctx context.Context, q querier, orders []Order, withProducts bool) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]*Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Products = []LineItem{}
		orders[i].Transactions = []ledger.Transaction{}
		orders[i].Returns = []Return{}
		index[orders[i].ID] = &orders[i]
	}

	lines, err := queryLines(ctx, q, `op.order_id = ANY($1)`, withProducts, ids)
	if err != nil {
		return err
	}
	for _, l := range lines {
		o := index[l.OrderID]
		o.Products = append(o.Products, l)
	}

	rows, err := q.Query(ctx, `
		SELECT `+ledger.Columns()+`
		FROM transactions WHERE order_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		t, err := ledger.ScanTransaction(rows)
		if err != nil {
			rows.Close()
			return err
		}
		o := index[t.OrderID]
		o.Transactions = append(o.Transactions, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	returns, err := queryReturns(ctx, q, `order_id = ANY($1)`, withProducts, ids)
	if err != nil {
		return err
	}
	for _, r := range returns {
		o := index[r.OrderID]
		o.Returns = append(o.Returns, r)
	}
	return nil
}

const productColumns = `p.id, p.merchant_id, p.name, p.description, p.price::text, p.is_deleted, p.created_at, p.updated_at`

func queryLines(ctx context.Context, q querier, where string, withProducts bool, args ...any) ([]LineItem, error) {
	sql := `SELECT op.order_id, op.product_id, op.price_per_item::text, op.total_qty FROM order_products op`
	if withProducts {
		sql = `SELECT op.order_id, op.product_id, op.price_per_item::text, op.total_qty, ` + productColumns + `
			FROM order_products op JOIN products p ON p.id = op.product_id`
	}
	rows, err := q.Query(ctx, sql+` WHERE `+where+` ORDER BY op.order_id, op.product_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var (
			l     LineItem
			price string
		)
		dest := []any{&l.OrderID, &l.ProductID, &price, &l.TotalQty}
		var finish func() error
		if withProducts {
			var p *product.Product
			p, finish, dest = productDest(dest)
			l.Product = p
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if l.PricePerItem, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if finish != nil {
			if err := finish(); err != nil {
				return nil, err
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// productDest appends scan targets for productColumns and returns a hook that
// converts the scanned price.
func productDest(dest []any) (*product.Product, func() error, []any) {
	var (
		p     product.Product
		price string
	)
	dest = append(dest, &p.ID, &p.MerchantID, &p.Name, &p.Description, &price, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	return &p, func() error {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return err
		}
		p.Price = d
		return nil
	}, dest
}

func queryReturns(ctx context.Context, q querier, where string, withProducts bool, args ...any) ([]Return, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, status, created_at, updated_at
		FROM order_returns WHERE `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, err
	}
	var (
		out []Return
		ids []int64
	)
	for rows.Next() {
		var r Return
		if err := rows.Scan(&r.ID, &r.OrderID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.Items = []ReturnedItem{}
		out = append(out, r)
		ids = append(ids, r.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	sql := `SELECT ri.return_id, ri.product_id, ri.qty FROM returned_items ri`
	if withProducts {
		sql = `SELECT ri.return_id, ri.product_id, ri.qty, ` + productColumns + `
			FROM returned_items ri JOIN products p ON p.id = ri.product_id`
	}
	itemRows, err := q.Query(ctx, sql+` WHERE ri.return_id = ANY($1) ORDER BY ri.return_id, ri.product_id`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	index := make(map[int64]*Return, len(out))
	for i := range out {
		index[out[i].ID] = &out[i]
	}
	for itemRows.Next() {
		var it ReturnedItem
		dest := []any{&it.ReturnID, &it.ProductID, &it.Qty}
		var finish func() error
		if withProducts {
			var p *product.Product
			p, finish, dest = productDest(dest)
			it.Product = p
		}
		if err := itemRows.Scan(dest...); err != nil {
			return nil, err
		}
		if finish != nil {
			if err := finish(); err != nil {
				return nil, err
			}
		}
		r := index[it.ReturnID]
		r.Items = append(r.Items, it)
	}
	return out, itemRows.Err()
}

// pgTx implements Tx on an open pgx transaction.
type pgTx struct{ tx pgx.Tx }

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, order_status, created_at, updated_at)
		VALUES ($1,$2,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, o.UserID, o.Status).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (t *pgTx) InsertLineItems(ctx context.Context, orderID int64, items []LineItem) error {
	for i := range items {
		items[i].OrderID = orderID
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_products (order_id, product_id, price_per_item, total_qty)
			VALUES ($1,$2,$3,$4)
		`, orderID, items[i].ProductID, items[i].PricePerItem.String(), items[i].TotalQty); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr *ledger.Transaction) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO transactions (order_id, order_return_id, user_id, amount, type, payment_method, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING id, created_at
	`, tr.OrderID, tr.OrderReturnID, tr.UserID, tr.Amount.String(), tr.Type, tr.PaymentMethod).Scan(&tr.ID, &tr.CreatedAt)
}

func (t *pgTx) LockOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, order_status, created_at, updated_at
		FROM orders WHERE id=$1
		FOR UPDATE
	`, id).Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *pgTx) LineItems(ctx context.Context, orderID int64, productIDs []int64) ([]LineItem, error) {
	return queryLines(ctx, t.tx, `op.order_id = $1 AND op.product_id = ANY($2)`, false, orderID, productIDs)
}

func (t *pgTx) InsertReturn(ctx context.Context, r *Return) error {
	if err := t.tx.QueryRow(ctx, `
		INSERT INTO order_returns (order_id, status, created_at, updated_at)
		VALUES ($1,$2,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, r.OrderID, r.Status).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return err
	}
	for i := range r.Items {
		r.Items[i].ReturnID = r.ID
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO returned_items (return_id, product_id, qty)
			VALUES ($1,$2,$3)
		`, r.ID, r.Items[i].ProductID, r.Items[i].Qty); err != nil {
			return err
		}
	}
	return nil
}

// DecrementLineQty is a single conditional UPDATE, so concurrent returns can
// never take a line below zero.
func (t *pgTx) DecrementLineQty(ctx context.Context, orderID, productID int64, qty int) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE order_products
		SET total_qty = total_qty - $3
		WHERE order_id = $1 AND product_id = $2 AND total_qty >= $3
	`, orderID, productID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) SetOrderStatus(ctx context.Context, id int64, s Status) (time.Time, error) {
	var updated time.Time
	err := t.tx.QueryRow(ctx, `
		UPDATE orders SET order_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, id, s).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, ErrNotFound
	}
	return updated, err
}

func (t *pgTx) LockReturn(ctx context.Context, id int64) (*Return, error) {
	var r Return
	err := t.tx.QueryRow(ctx, `
		SELECT id, order_id, status, created_at, updated_at
		FROM order_returns WHERE id=$1
		FOR UPDATE
	`, id).Scan(&r.ID, &r.OrderID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx, `
		SELECT return_id, product_id, qty FROM returned_items
		WHERE return_id=$1 ORDER BY product_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	r.Items = []ReturnedItem{}
	for rows.Next() {
		var it ReturnedItem
		if err := rows.Scan(&it.ReturnID, &it.ProductID, &it.Qty); err != nil {
			return nil, err
		}
		r.Items = append(r.Items, it)
	}
	return &r, rows.Err()
}

func (t *pgTx) SetReturnStatus(ctx context.Context, id int64, s ReturnStatus) (time.Time, error) {
	var updated time.Time
	err := t.tx.QueryRow(ctx, `
		UPDATE order_returns SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, id, s).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, ErrNotFound
	}
	return updated, err
}
