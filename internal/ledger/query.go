package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

var ErrInvalidQuery = errors.New("invalid transaction query")

// sortColumns is the closed set of sortable fields and their columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
	"type":      "type",
}

type Query struct {
	Page      pagination.Params
	SortBy    string
	SortOrder string
	Type      Type
}

// Normalize fills defaults and rejects anything outside the enumerated options.
func (q Query) Normalize() (Query, error) {
	q.Page = q.Page.Normalize()
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		return q, fmt.Errorf("%w: sortBy must be one of createdAt, amount, type", ErrInvalidQuery)
	}
	q.SortOrder = strings.ToLower(q.SortOrder)
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return q, fmt.Errorf("%w: sortOrder must be asc or desc", ErrInvalidQuery)
	}
	if q.Type != "" && !q.Type.Valid() {
		return q, fmt.Errorf("%w: type must be DEBIT or CREDIT", ErrInvalidQuery)
	}
	return q, nil
}

// orderBy renders the ORDER BY clause of a normalized query. Only values from
// sortColumns ever reach the SQL text.
func (q Query) orderBy() string {
	return sortColumns[q.SortBy] + " " + strings.ToUpper(q.SortOrder) + ", id " + strings.ToUpper(q.SortOrder)
}
