package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

type Type string

const (
	TypeDebit  Type = "DEBIT"
	TypeCredit Type = "CREDIT"
)

func (t Type) Valid() bool { return t == TypeDebit || t == TypeCredit }

// PaymentMethod is a placeholder; no gateway is involved.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCard           PaymentMethod = "CARD"
)

func ParsePaymentMethod(s string) PaymentMethod {
	if PaymentMethod(s) == PaymentCard {
		return PaymentCard
	}
	return PaymentCashOnDelivery
}

// Transaction is an immutable ledger entry. DEBIT rows are written when an
// order is created, CREDIT rows when one of its returns is refunded.
type Transaction struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	OrderReturnID *int64          `json:"orderReturnId"`
	UserID        int64           `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Type          Type            `json:"type"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListResponse is a page of transactions.
// swagger:model TransactionListResponse
type ListResponse struct {
	Data []Transaction   `json:"data"`
	Meta pagination.Meta `json:"meta"`
}
