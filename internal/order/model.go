package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/ledger"
	"github.com/MikeMC777/ecom-returns/internal/product"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
)

type ReturnStatus string

const (
	ReturnPending ReturnStatus = "PENDING"
	ReturnPicked  ReturnStatus = "PICKED"
	ReturnRefund  ReturnStatus = "REFUND"
)

type Order struct {
	ID           int64                `json:"id"`
	UserID       int64                `json:"userId"`
	Status       Status               `json:"orderStatus"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
	Products     []LineItem           `json:"orderProducts"`
	Transactions []ledger.Transaction `json:"transactions"`
	Returns      []Return             `json:"orderReturns"`
}

// LineItem is a product within an order. PricePerItem is copied from the
// catalog when the order is created and never changes afterwards.
type LineItem struct {
	OrderID      int64            `json:"orderId"`
	ProductID    int64            `json:"productId"`
	PricePerItem decimal.Decimal  `json:"pricePerItem"`
	TotalQty     int              `json:"totalQty"`
	Product      *product.Product `json:"product,omitempty"`
}

type Return struct {
	ID        int64          `json:"id"`
	OrderID   int64          `json:"orderId"`
	Status    ReturnStatus   `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Items     []ReturnedItem `json:"returnedItems"`
}

type ReturnedItem struct {
	ReturnID  int64            `json:"returnId"`
	ProductID int64            `json:"productId"`
	Qty       int              `json:"qty"`
	Product   *product.Product `json:"product,omitempty"`
}

// Line returns the order line with the given product, if any.
func (o *Order) Line(productID int64) (LineItem, bool) {
	for _, l := range o.Products {
		if l.ProductID == productID {
			return l, true
		}
	}
	return LineItem{}, false
}

// Debit returns the transaction that paid for the order.
func (o *Order) Debit() (ledger.Transaction, bool) {
	for _, t := range o.Transactions {
		if t.Type == ledger.TypeDebit {
			return t, true
		}
	}
	return ledger.Transaction{}, false
}
