package order

import (
	"context"
	"fmt"
	"log"

	"github.com/MikeMC777/ecom-returns/internal/events"
	"github.com/MikeMC777/ecom-returns/internal/ledger"
	"github.com/MikeMC777/ecom-returns/internal/money"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

type Service struct {
	store         Store
	catalog       Catalog
	events        Publisher
	paymentMethod ledger.PaymentMethod
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithPaymentMethod(m ledger.PaymentMethod) Option {
	return func(s *Service) { s.paymentMethod = m }
}

func NewService(store Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		store:         store,
		catalog:       catalog,
		events:        events.Noop{},
		paymentMethod: ledger.PaymentCashOnDelivery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// validateItems checks the request shape and returns the product ids in
// request order.
func validateItems(items []ItemRequest) ([]int64, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, fmt.Errorf("%w: productId must be positive", ErrValidation)
		}
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: qty must be positive for product %d", ErrValidation, it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, fmt.Errorf("%w: product %d listed more than once", ErrValidation, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids, nil
}

// CreateOrder prices the requested items from the live catalog and stores the
// order, its lines and the DEBIT transaction in one transaction.
func (s *Service) CreateOrder(ctx context.Context, userID int64, items []ItemRequest) (*Order, error) {
	ids, err := validateItems(items)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.ActiveByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("fetch products", err)
	}
	if len(products) != len(ids) {
		return nil, fmt.Errorf("%w: one or more products are invalid", ErrInvalidReference)
	}
	prices := make(map[int64]LineItem, len(products))
	for _, p := range products {
		prices[p.ID] = LineItem{ProductID: p.ID, PricePerItem: p.Price}
	}

	lines := make([]LineItem, 0, len(items))
	amounts := make([]money.Line, 0, len(items))
	for _, it := range items {
		l, ok := prices[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidReference, it.ProductID)
		}
		l.TotalQty = it.Qty
		lines = append(lines, l)
		amounts = append(amounts, money.Line{Price: l.PricePerItem, Quantity: l.TotalQty})
	}
	total := money.TotalAmount(amounts)

	var orderID int64
	err = s.store.InTx(ctx, func(tx Tx) error {
		o := &Order{UserID: userID, Status: StatusPending}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, o.ID, lines); err != nil {
			return err
		}
		debit := &ledger.Transaction{
			OrderID:       o.ID,
			UserID:        userID,
			Amount:        total,
			Type:          ledger.TypeDebit,
			PaymentMethod: s.paymentMethod,
		}
		if err := tx.InsertTransaction(ctx, debit); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, storageErr("create order", err)
	}
	log.Printf("[order] created id=%d user=%d lines=%d total=%s", orderID, userID, len(lines), total)

	s.publish(ctx, events.Event{Type: events.OrderCreated, OrderID: orderID, UserID: userID, Amount: total.String()})
	return s.GetOrder(ctx, orderID, userID)
}

// CreateReturn records a return against one of the user's orders and takes
// the returned quantities off the order lines, all in one transaction.
func (s *Service) CreateReturn(ctx context.Context, userID, orderID int64, items []ItemRequest) (*Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: orderId must be positive", ErrValidation)
	}
	ids, err := validateItems(items)
	if err != nil {
		return nil, err
	}

	var returnID int64
	err = s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}

		lines, err := tx.LineItems(ctx, orderID, ids)
		if err != nil {
			return err
		}
		if len(lines) != len(ids) {
			return fmt.Errorf("%w: invalid return products", ErrInvalidReference)
		}
		remaining := make(map[int64]int, len(lines))
		for _, l := range lines {
			remaining[l.ProductID] = l.TotalQty
		}
		for _, it := range items {
			if it.Qty > remaining[it.ProductID] {
				return fmt.Errorf("%w: product %d has %d left, %d requested",
					ErrInsufficientQuantity, it.ProductID, remaining[it.ProductID], it.Qty)
			}
		}

		r := &Return{OrderID: orderID, Status: ReturnPending}
		for _, it := range items {
			r.Items = append(r.Items, ReturnedItem{ProductID: it.ProductID, Qty: it.Qty})
		}
		if err := tx.InsertReturn(ctx, r); err != nil {
			return err
		}

		for _, it := range items {
			ok, err := tx.DecrementLineQty(ctx, orderID, it.ProductID, it.Qty)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: product %d", ErrInsufficientQuantity, it.ProductID)
			}
		}
		returnID = r.ID
		return nil
	})
	if err != nil {
		return nil, storageErr("create return", err)
	}
	log.Printf("[order] return id=%d created for order=%d user=%d items=%d", returnID, orderID, userID, len(items))

	s.publish(ctx, events.Event{Type: events.ReturnCreated, OrderID: orderID, ReturnID: returnID, UserID: userID})
	return s.GetOrder(ctx, orderID, userID)
}

func (s *Service) GetOrder(ctx context.Context, orderID, userID int64) (*Order, error) {
	o, err := s.store.FindByID(ctx, orderID, userID)
	if err != nil {
		return nil, storageErr("find order", err)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64, p pagination.Params) ([]Order, pagination.Meta, error) {
	p = p.Normalize()
	orders, total, err := s.store.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, pagination.Meta{}, storageErr("list orders", err)
	}
	return orders, pagination.NewMeta(p, total), nil
}

// UpdateOrderStatus is the administrative order transition. It is not scoped
// to a user. The returned order carries only header fields.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*Order, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var out *Order
	err = s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, orderID, o.Status)
		}
		if o.Status != to {
			updated, err := tx.SetOrderStatus(ctx, orderID, to)
			if err != nil {
				return err
			}
			o.Status, o.UpdatedAt = to, updated
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, storageErr("update order status", err)
	}
	log.Printf("[order] order=%d status=%s", orderID, out.Status)
	return out, nil
}

// UpdateReturnStatus is the administrative return transition. Entering REFUND
// writes one CREDIT transaction worth the returned items at their order prices.
func (s *Service) UpdateReturnStatus(ctx context.Context, returnID int64, status string) (*Return, error) {
	to, err := ParseReturnStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		out    *Return
		credit *ledger.Transaction
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.LockReturn(ctx, returnID)
		if err != nil {
			return err
		}
		if !CanTransitionReturn(r.Status, to) {
			return fmt.Errorf("%w: return %d is %s", ErrInvalidTransition, returnID, r.Status)
		}
		out = r
		if r.Status == to {
			return nil
		}
		updated, err := tx.SetReturnStatus(ctx, returnID, to)
		if err != nil {
			return err
		}
		r.Status, r.UpdatedAt = to, updated

		if to == ReturnRefund {
			credit, err = s.refund(ctx, tx, r)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("update return status", err)
	}
	log.Printf("[order] return=%d status=%s", returnID, out.Status)

	if credit != nil {
		s.publish(ctx, events.Event{
			Type:     events.ReturnRefunded,
			OrderID:  credit.OrderID,
			ReturnID: returnID,
			UserID:   credit.UserID,
			Amount:   credit.Amount.String(),
		})
	}
	return out, nil
}

func (s *Service) refund(ctx context.Context, tx Tx, r *Return) (*ledger.Transaction, error) {
	o, err := tx.LockOrder(ctx, r.OrderID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ProductID)
	}
	lines, err := tx.LineItems(ctx, r.OrderID, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[int64]LineItem, len(lines))
	for _, l := range lines {
		prices[l.ProductID] = l
	}
	amounts := make([]money.Line, 0, len(r.Items))
	for _, it := range r.Items {
		l, ok := prices[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: returned product %d is not in order %d", ErrInvalidReference, it.ProductID, r.OrderID)
		}
		amounts = append(amounts, money.Line{Price: l.PricePerItem, Quantity: it.Qty})
	}

	returnID := r.ID
	credit := &ledger.Transaction{
		OrderID:       r.OrderID,
		OrderReturnID: &returnID,
		UserID:        o.UserID,
		Amount:        money.TotalAmount(amounts),
		Type:          ledger.TypeCredit,
		PaymentMethod: s.paymentMethod,
	}
	if err := tx.InsertTransaction(ctx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("[events] publish %s order=%d failed: %v", e.Type, e.OrderID, err)
	}
}
