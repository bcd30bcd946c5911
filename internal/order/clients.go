package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MikeMC777/ecom-returns/internal/product"
)

// HTTPCatalog reads live prices from the product service instead of the
// shared database.
type HTTPCatalog struct {
	HTTP    *http.Client
	BaseURL string
}

func NewHTTPCatalog(baseURL string) *HTTPCatalog {
	return &HTTPCatalog{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchProduct returns the product, or nil when the service answers 404
// (missing or soft deleted).
func (c *HTTPCatalog) FetchProduct(ctx context.Context, id int64) (*product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%d", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("product service: GET product %d: %s", id, res.Status)
	}
	var p product.Product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("product service: decode product %d: %w", id, err)
	}
	return &p, nil
}

func (c *HTTPCatalog) ActiveByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := c.FetchProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}
