package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecom-returns/internal/auth"
	"github.com/MikeMC777/ecom-returns/internal/ledger"
	ord "github.com/MikeMC777/ecom-returns/internal/order"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUBS ----------
//

// stubOrders records the arguments it was called with and answers with the
// configured order/return or error.
type stubOrders struct {
	err error

	gotUser   int64
	gotOrder  int64
	gotItems  []ord.ItemRequest
	gotStatus string
	gotPage   pagination.Params
}

func sampleOrder(userID int64) *ord.Order {
	return &ord.Order{
		ID:     1,
		UserID: userID,
		Status: ord.StatusPending,
		Products: []ord.LineItem{{
			OrderID: 1, ProductID: 7, PricePerItem: decimal.RequireFromString("19.99"), TotalQty: 3,
		}},
		Transactions: []ledger.Transaction{{
			ID: 1, OrderID: 1, UserID: userID, Amount: decimal.RequireFromString("59.97"),
			Type: ledger.TypeDebit, PaymentMethod: ledger.PaymentCashOnDelivery,
		}},
		Returns: []ord.Return{},
	}
}

func (s *stubOrders) CreateOrder(_ context.Context, userID int64, items []ord.ItemRequest) (*ord.Order, error) {
	s.gotUser, s.gotItems = userID, items
	if s.err != nil {
		return nil, s.err
	}
	return sampleOrder(userID), nil
}

func (s *stubOrders) CreateReturn(_ context.Context, userID, orderID int64, items []ord.ItemRequest) (*ord.Order, error) {
	s.gotUser, s.gotOrder, s.gotItems = userID, orderID, items
	if s.err != nil {
		return nil, s.err
	}
	o := sampleOrder(userID)
	o.Products[0].TotalQty -= items[0].Qty
	o.Returns = []ord.Return{{ID: 3, OrderID: orderID, Status: ord.ReturnPending,
		Items: []ord.ReturnedItem{{ReturnID: 3, ProductID: items[0].ProductID, Qty: items[0].Qty}}}}
	return o, nil
}

func (s *stubOrders) GetOrder(_ context.Context, orderID, userID int64) (*ord.Order, error) {
	s.gotUser, s.gotOrder = userID, orderID
	if s.err != nil {
		return nil, s.err
	}
	return sampleOrder(userID), nil
}

func (s *stubOrders) ListOrders(_ context.Context, userID int64, p pagination.Params) ([]ord.Order, pagination.Meta, error) {
	s.gotUser, s.gotPage = userID, p
	if s.err != nil {
		return nil, pagination.Meta{}, s.err
	}
	return []ord.Order{*sampleOrder(userID)}, pagination.NewMeta(p, 1), nil
}

func (s *stubOrders) UpdateOrderStatus(_ context.Context, orderID int64, status string) (*ord.Order, error) {
	s.gotOrder, s.gotStatus = orderID, status
	if s.err != nil {
		return nil, s.err
	}
	return &ord.Order{ID: orderID, UserID: 5, Status: ord.Status(status)}, nil
}

func (s *stubOrders) UpdateReturnStatus(_ context.Context, returnID int64, status string) (*ord.Return, error) {
	s.gotOrder, s.gotStatus = returnID, status
	if s.err != nil {
		return nil, s.err
	}
	return &ord.Return{ID: returnID, OrderID: 1, Status: ord.ReturnStatus(status)}, nil
}

// stubLedger implements ledger.Repository over a fixed slice.
type stubLedger struct {
	txs     []ledger.Transaction
	gotUser int64
	gotQ    ledger.Query
}

func (s *stubLedger) ListByUser(_ context.Context, userID int64, q ledger.Query) ([]ledger.Transaction, int, error) {
	s.gotUser, s.gotQ = userID, q
	var out []ledger.Transaction
	for _, t := range s.txs {
		if t.UserID == userID && (q.Type == "" || t.Type == q.Type) {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (s *stubLedger) GetByID(_ context.Context, id, userID int64) (*ledger.Transaction, error) {
	for _, t := range s.txs {
		if t.ID == id && t.UserID == userID {
			return &t, nil
		}
	}
	return nil, ledger.ErrNotFound
}

type stubTokens map[string]*auth.Claims

func (s stubTokens) Parse(raw string) (*auth.Claims, error) {
	if c, ok := s[raw]; ok {
		return c, nil
	}
	return nil, errors.New("invalid")
}

var tokens = stubTokens{
	"customer": {UserID: 5, Role: "CUSTOMER"},
	"admin":    {UserID: 1, Role: "ADMIN"},
}

func send(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return e.Error
}

//
// ---------- TESTS ----------
//

func TestCreateOrder_HappyPath(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	w := send(r, http.MethodPost, "/orders", "customer", `{"items":[{"productId":7,"qty":3}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotUser != 5 || len(svc.gotItems) != 1 || svc.gotItems[0] != (ord.ItemRequest{ProductID: 7, Qty: 3}) {
		t.Fatalf("service called with user=%d items=%+v", svc.gotUser, svc.gotItems)
	}
	body := w.Body.String()
	for _, want := range []string{`"orderStatus":"PENDING"`, `"pricePerItem":"19.99"`, `"amount":"59.97"`, `"type":"DEBIT"`, `"orderReturns":[]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body lacks %s: %s", want, body)
		}
	}
}

func TestCreateOrder_UserComesFromToken(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	w := send(r, http.MethodPost, "/orders", "customer", `{"userId":99,"items":[{"productId":7,"qty":1}]}`)
	if w.Code != http.StatusCreated || svc.gotUser != 5 {
		t.Fatalf("status=%d user=%d", w.Code, svc.gotUser)
	}
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	if w := send(r, http.MethodPost, "/orders", "", `{"items":[]}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotUser != 0 {
		t.Fatal("service must not be reached")
	}
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubOrders{}, &stubLedger{}, tokens)
	if w := send(r, http.MethodPost, "/orders", "customer", `{"items":`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: items must not be empty", ord.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: one or more products are invalid", ord.ErrInvalidReference), http.StatusBadRequest},
		{fmt.Errorf("%w: order 9", ord.ErrNotFound), http.StatusNotFound},
		{ord.ErrInsufficientQuantity, http.StatusConflict},
		{ord.ErrInvalidTransition, http.StatusConflict},
		{&ord.StorageError{Op: "create order", Err: errors.New("conn reset by peer")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newRouter(&stubOrders{err: tc.err}, &stubLedger{}, tokens)
		w := send(r, http.MethodPost, "/orders/returns", "customer", `{"orderId":1,"items":[{"productId":7,"qty":1}]}`)
		if w.Code != tc.code {
			t.Errorf("%v: status=%d want %d", tc.err, w.Code, tc.code)
		}
		if tc.code == http.StatusInternalServerError && strings.Contains(w.Body.String(), "conn reset") {
			t.Errorf("storage detail leaked: %s", w.Body.String())
		}
	}
}

func TestCreateReturn(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	w := send(r, http.MethodPost, "/orders/returns", "customer", `{"orderId":1,"items":[{"productId":7,"qty":1}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotOrder != 1 || svc.gotUser != 5 {
		t.Fatalf("order=%d user=%d", svc.gotOrder, svc.gotUser)
	}
	var o ord.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatal(err)
	}
	if o.Products[0].TotalQty != 2 || len(o.Returns) != 1 || o.Returns[0].Status != ord.ReturnPending {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestGetOrder(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	if w := send(r, http.MethodGet, "/orders/12", "customer", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotOrder != 12 || svc.gotUser != 5 {
		t.Fatalf("order=%d user=%d", svc.gotOrder, svc.gotUser)
	}
	if w := send(r, http.MethodGet, "/orders/abc", "customer", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", w.Code)
	}

	r = newRouter(&stubOrders{err: ord.ErrNotFound}, &stubLedger{}, tokens)
	w := send(r, http.MethodGet, "/orders/12", "customer", "")
	if w.Code != http.StatusNotFound || errorBody(t, w) == "" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	w := send(r, http.MethodGet, "/orders?page=2&limit=500", "customer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotPage != (pagination.Params{Page: 2, Limit: pagination.MaxLimit}) {
		t.Fatalf("page=%+v", svc.gotPage)
	}
	var got ord.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Data) != 1 || got.Meta.Page != 2 || got.Meta.Limit != 100 || got.Meta.Total != 1 {
		t.Fatalf("unexpected %+v", got.Meta)
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()
	svc := &stubOrders{}
	r := newRouter(svc, &stubLedger{}, tokens)

	if w := send(r, http.MethodPatch, "/admin/orders/4/status", "customer", `{"status":"SUCCESS"}`); w.Code != http.StatusForbidden {
		t.Fatalf("customer: status=%d", w.Code)
	}
	if svc.gotStatus != "" {
		t.Fatal("service must not be reached by a customer")
	}

	w := send(r, http.MethodPatch, "/admin/orders/4/status", "admin", `{"status":"SUCCESS"}`)
	if w.Code != http.StatusOK || svc.gotOrder != 4 || svc.gotStatus != "SUCCESS" {
		t.Fatalf("status=%d order=%d st=%s", w.Code, svc.gotOrder, svc.gotStatus)
	}

	w = send(r, http.MethodPatch, "/admin/returns/3/status", "admin", `{"status":"REFUND"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"REFUND"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	r = newRouter(&stubOrders{err: ord.ErrInvalidTransition}, &stubLedger{}, tokens)
	if w := send(r, http.MethodPatch, "/admin/returns/3/status", "admin", `{"status":"PENDING"}`); w.Code != http.StatusConflict {
		t.Fatalf("backwards: status=%d", w.Code)
	}
}

func TestTransactions(t *testing.T) {
	t.Parallel()
	rid := int64(3)
	txs := &stubLedger{txs: []ledger.Transaction{
		{ID: 1, OrderID: 1, UserID: 5, Amount: decimal.RequireFromString("59.97"), Type: ledger.TypeDebit},
		{ID: 2, OrderID: 1, OrderReturnID: &rid, UserID: 5, Amount: decimal.RequireFromString("19.99"), Type: ledger.TypeCredit},
		{ID: 3, OrderID: 2, UserID: 6, Amount: decimal.RequireFromString("1.00"), Type: ledger.TypeDebit},
	}}
	r := newRouter(&stubOrders{}, txs, tokens)

	w := send(r, http.MethodGet, "/transactions?type=CREDIT&sortBy=amount&sortOrder=ASC", "customer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got ledger.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Data) != 1 || got.Data[0].ID != 2 || got.Meta.Total != 1 {
		t.Fatalf("unexpected %+v", got)
	}
	if txs.gotQ.SortBy != "amount" || txs.gotQ.SortOrder != "asc" || txs.gotQ.Page.Limit != pagination.DefaultLimit {
		t.Fatalf("query not normalized: %+v", txs.gotQ)
	}

	if w := send(r, http.MethodGet, "/transactions?sortBy=user_id", "customer", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad sortBy: status=%d", w.Code)
	}
	if w := send(r, http.MethodGet, "/transactions?type=REFUND", "customer", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad type: status=%d", w.Code)
	}

	if w := send(r, http.MethodGet, "/transactions/1", "customer", ""); w.Code != http.StatusOK {
		t.Fatalf("own transaction: status=%d", w.Code)
	}
	if w := send(r, http.MethodGet, "/transactions/3", "customer", ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign transaction: status=%d", w.Code)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubOrders{}, &stubLedger{}, tokens)
	if w := send(r, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
}
