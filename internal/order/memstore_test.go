package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/ledger"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
	"github.com/MikeMC777/ecom-returns/internal/product"
)

var errBoom = errors.New("boom")

// memCatalog implements Catalog over a map; tests mutate it directly.
type memCatalog struct {
	mu       sync.Mutex
	products map[int64]*product.Product
	err      error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[int64]*product.Product{}}
}

func (c *memCatalog) add(id int64, price string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id] = &product.Product{ID: id, Name: "product", Price: decimal.RequireFromString(price)}
}

func (c *memCatalog) setPrice(id int64, price string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id].Price = decimal.RequireFromString(price)
}

func (c *memCatalog) softDelete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id].IsDeleted = true
}

func (c *memCatalog) get(id int64) *product.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (c *memCatalog) ActiveByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []product.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memState struct {
	nextOrder  int64
	nextReturn int64
	nextTx     int64
	orders     map[int64]Order
	lines      map[int64][]LineItem
	txs        []ledger.Transaction
	returns    map[int64]Return
}

func (s memState) clone() memState {
	c := memState{
		nextOrder:  s.nextOrder,
		nextReturn: s.nextReturn,
		nextTx:     s.nextTx,
		orders:     make(map[int64]Order, len(s.orders)),
		lines:      make(map[int64][]LineItem, len(s.lines)),
		txs:        append([]ledger.Transaction(nil), s.txs...),
		returns:    make(map[int64]Return, len(s.returns)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]LineItem(nil), v...)
	}
	for k, v := range s.returns {
		v.Items = append([]ReturnedItem(nil), v.Items...)
		c.returns[k] = v
	}
	return c
}

// memStore is a Store whose transactions work on a copy of the state that
// replaces the committed state only when fn succeeds. failOn makes the named
// Tx method fail, to exercise rollback.
type memStore struct {
	mu      sync.Mutex
	state   memState
	catalog *memCatalog
	failOn  string
}

func newMemStore(catalog *memCatalog) *memStore {
	return &memStore{
		catalog: catalog,
		state: memState{
			orders:  map[int64]Order{},
			lines:   map[int64][]LineItem{},
			returns: map[int64]Return{},
		},
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{s: &work, failOn: m.failOn}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memStore) snapshot() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *memStore) materialize(s memState, o Order, withProducts bool) Order {
	o.Products = []LineItem{}
	for _, l := range s.lines[o.ID] {
		if withProducts {
			l.Product = m.catalog.get(l.ProductID)
		}
		o.Products = append(o.Products, l)
	}
	o.Transactions = []ledger.Transaction{}
	for _, t := range s.txs {
		if t.OrderID == o.ID {
			o.Transactions = append(o.Transactions, t)
		}
	}
	o.Returns = []Return{}
	ids := make([]int64, 0)
	for id, r := range s.returns {
		if r.OrderID == o.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		r := s.returns[id]
		items := make([]ReturnedItem, 0, len(r.Items))
		for _, it := range r.Items {
			if withProducts {
				it.Product = m.catalog.get(it.ProductID)
			}
			items = append(items, it)
		}
		r.Items = items
		o.Returns = append(o.Returns, r)
	}
	return o
}

func (m *memStore) FindByID(_ context.Context, id, userID int64) (*Order, error) {
	s := m.snapshot()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	out := m.materialize(s, o, true)
	return &out, nil
}

func (m *memStore) ListByUser(_ context.Context, userID int64, p pagination.Params) ([]Order, int, error) {
	s := m.snapshot()
	var all []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	out := []Order{}
	for _, o := range all[start:end] {
		out = append(out, m.materialize(s, o, false))
	}
	return out, total, nil
}

type memTx struct {
	s      *memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return errBoom
	}
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	t.s.nextOrder++
	o.ID = t.s.nextOrder
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	t.s.orders[o.ID] = *o
	return nil
}

func (t *memTx) InsertLineItems(_ context.Context, orderID int64, items []LineItem) error {
	if err := t.fail("InsertLineItems"); err != nil {
		return err
	}
	for _, it := range items {
		it.OrderID = orderID
		t.s.lines[orderID] = append(t.s.lines[orderID], it)
	}
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr *ledger.Transaction) error {
	if err := t.fail("InsertTransaction"); err != nil {
		return err
	}
	t.s.nextTx++
	tr.ID = t.s.nextTx
	tr.CreatedAt = time.Now().UTC()
	t.s.txs = append(t.s.txs, *tr)
	return nil
}

func (t *memTx) LockOrder(_ context.Context, id int64) (*Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (t *memTx) LineItems(_ context.Context, orderID int64, productIDs []int64) ([]LineItem, error) {
	want := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	var out []LineItem
	for _, l := range t.s.lines[orderID] {
		if want[l.ProductID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (t *memTx) InsertReturn(_ context.Context, r *Return) error {
	if err := t.fail("InsertReturn"); err != nil {
		return err
	}
	t.s.nextReturn++
	r.ID = t.s.nextReturn
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	for i := range r.Items {
		r.Items[i].ReturnID = r.ID
	}
	stored := *r
	stored.Items = append([]ReturnedItem(nil), r.Items...)
	t.s.returns[r.ID] = stored
	return nil
}

func (t *memTx) DecrementLineQty(_ context.Context, orderID, productID int64, qty int) (bool, error) {
	if err := t.fail("DecrementLineQty"); err != nil {
		return false, err
	}
	lines := t.s.lines[orderID]
	for i := range lines {
		if lines[i].ProductID == productID {
			if lines[i].TotalQty < qty {
				return false, nil
			}
			lines[i].TotalQty -= qty
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) SetOrderStatus(_ context.Context, id int64, s Status) (time.Time, error) {
	if err := t.fail("SetOrderStatus"); err != nil {
		return time.Time{}, err
	}
	o, ok := t.s.orders[id]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	o.Status = s
	o.UpdatedAt = time.Now().UTC()
	t.s.orders[id] = o
	return o.UpdatedAt, nil
}

func (t *memTx) LockReturn(_ context.Context, id int64) (*Return, error) {
	r, ok := t.s.returns[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Items = append([]ReturnedItem(nil), r.Items...)
	return &r, nil
}

func (t *memTx) SetReturnStatus(_ context.Context, id int64, s ReturnStatus) (time.Time, error) {
	if err := t.fail("SetReturnStatus"); err != nil {
		return time.Time{}, err
	}
	r, ok := t.s.returns[id]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	r.Status = s
	r.UpdatedAt = time.Now().UTC()
	t.s.returns[id] = r
	return r.UpdatedAt, nil
}
