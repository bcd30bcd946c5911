package order

import (
	"context"
	"time"

	"github.com/MikeMC777/ecom-returns/internal/events"
	"github.com/MikeMC777/ecom-returns/internal/ledger"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
	"github.com/MikeMC777/ecom-returns/internal/product"
)

// Catalog is the part of the product component the engine reads.
type Catalog interface {
	// ActiveByIDs returns the non-deleted products among ids.
	ActiveByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}

// Publisher receives domain events after a successful commit.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Store is the storage session owned by a Service.
type Store interface {
	// InTx runs fn inside one transaction. Everything fn writes is committed
	// when it returns nil and discarded otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// FindByID loads an order of userID with line items (joined with their
	// product), transactions and returns. Missing or foreign orders give ErrNotFound.
	FindByID(ctx context.Context, id, userID int64) (*Order, error)
	// ListByUser returns a newest-first page of the user's orders and the total count.
	ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]Order, int, error)
}

// Tx is the set of statements the engines issue inside Store.InTx.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertLineItems(ctx context.Context, orderID int64, items []LineItem) error
	InsertTransaction(ctx context.Context, t *ledger.Transaction) error
	// LockOrder reads an order header and holds its row until the transaction ends.
	LockOrder(ctx context.Context, id int64) (*Order, error)
	LineItems(ctx context.Context, orderID int64, productIDs []int64) ([]LineItem, error)
	InsertReturn(ctx context.Context, r *Return) error
	// DecrementLineQty subtracts qty from a line only if the result stays
	// non-negative. It reports false when the line had less than qty left.
	DecrementLineQty(ctx context.Context, orderID, productID int64, qty int) (bool, error)
	SetOrderStatus(ctx context.Context, id int64, s Status) (time.Time, error)
	// LockReturn reads a return with its items and holds its row.
	LockReturn(ctx context.Context, id int64) (*Return, error)
	SetReturnStatus(ctx context.Context, id int64, s ReturnStatus) (time.Time, error)
}
