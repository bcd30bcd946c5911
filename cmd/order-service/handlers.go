package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecom-returns/internal/httpx"
	"github.com/MikeMC777/ecom-returns/internal/ledger"
	ord "github.com/MikeMC777/ecom-returns/internal/order"
	"github.com/MikeMC777/ecom-returns/internal/pagination"
)

type orderService interface {
	CreateOrder(ctx context.Context, userID int64, items []ord.ItemRequest) (*ord.Order, error)
	CreateReturn(ctx context.Context, userID, orderID int64, items []ord.ItemRequest) (*ord.Order, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*ord.Order, error)
	ListOrders(ctx context.Context, userID int64, p pagination.Params) ([]ord.Order, pagination.Meta, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*ord.Order, error)
	UpdateReturnStatus(ctx context.Context, returnID int64, status string) (*ord.Return, error)
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	Error string `json:"error" example:"not found"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, HTTPError{Error: msg})
}

// writeOrderError maps engine errors onto status codes. Storage failures are
// logged and reported without detail.
func writeOrderError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ord.ErrValidation), errors.Is(err, ord.ErrInvalidReference):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ord.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ord.ErrInsufficientQuantity), errors.Is(err, ord.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err.Error())
	default:
		rid, _ := c.Get("rid")
		log.Printf("[order] rid=%v %s: %v", rid, op, err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func caller(c *gin.Context) (int64, bool) {
	uid, ok := httpx.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthenticated")
	}
	return uid, ok
}

// createOrderHandler godoc
// @Summary      Create an order
// @Description  Prices the items from the live catalog and records the order with its DEBIT transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ord.CreateOrderRequest  true  "Items"
// @Success      201   {object}  ord.Order
// @Failure      400   {object}  HTTPError
// @Failure      401   {object}  HTTPError
// @Failure      500   {object}  HTTPError
// @Router       /orders [post]
func createOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		var in ord.CreateOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.CreateOrder(c.Request.Context(), uid, in.Items)
		httpx.RecordOperation("create_order", err == nil)
		if err != nil {
			writeOrderError(c, "create order", err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler godoc
// @Summary   List my orders
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     page   query     int  false  "Page (1-based)"
// @Param     limit  query     int  false  "Page size (max 100)"
// @Success   200    {object}  ord.ListResponse
// @Failure   401    {object}  HTTPError
// @Router    /orders [get]
func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		p := pagination.Parse(c.Query("page"), c.Query("limit"))
		orders, meta, err := svc.ListOrders(c.Request.Context(), uid, p)
		if err != nil {
			writeOrderError(c, "list orders", err)
			return
		}
		c.JSON(http.StatusOK, ord.ListResponse{Data: orders, Meta: meta})
	}
}

// getOrderHandler godoc
// @Summary   Get one of my orders
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Order ID"
// @Success   200  {object}  ord.Order
// @Failure   404  {object}  HTTPError
// @Router    /orders/{id} [get]
func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		o, err := svc.GetOrder(c.Request.Context(), id, uid)
		if err != nil {
			writeOrderError(c, "get order", err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// createReturnHandler godoc
// @Summary      Return items of an order
// @Description  Records a PENDING return and takes the quantities off the order lines.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ord.CreateReturnRequest  true  "Order and items"
// @Success      201   {object}  ord.Order
// @Failure      400   {object}  HTTPError
// @Failure      404   {object}  HTTPError
// @Failure      409   {object}  HTTPError
// @Router       /orders/returns [post]
func createReturnHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		var in ord.CreateReturnRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.CreateReturn(c.Request.Context(), uid, in.OrderID, in.Items)
		httpx.RecordOperation("create_return", err == nil)
		if err != nil {
			writeOrderError(c, "create return", err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// updateOrderStatusHandler godoc
// @Summary   Move an order to a new status
// @Tags      admin
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      int                      true  "Order ID"
// @Param     body  body      ord.UpdateStatusRequest  true  "PENDING or SUCCESS"
// @Success   200   {object}  ord.Order
// @Failure   400   {object}  HTTPError
// @Failure   403   {object}  HTTPError
// @Failure   404   {object}  HTTPError
// @Failure   409   {object}  HTTPError
// @Router    /admin/orders/{id}/status [patch]
func updateOrderStatusHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in ord.UpdateStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.UpdateOrderStatus(c.Request.Context(), id, in.Status)
		httpx.RecordOperation("update_order_status", err == nil)
		if err != nil {
			writeOrderError(c, "update order status", err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateReturnStatusHandler godoc
// @Summary      Move a return to a new status
// @Description  REFUND writes one CREDIT transaction worth the returned items at their order prices.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Return ID"
// @Param        body  body      ord.UpdateStatusRequest  true  "PENDING, PICKED or REFUND"
// @Success      200   {object}  ord.Return
// @Failure      400   {object}  HTTPError
// @Failure      403   {object}  HTTPError
// @Failure      404   {object}  HTTPError
// @Failure      409   {object}  HTTPError
// @Router       /admin/returns/{id}/status [patch]
func updateReturnStatusHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in ord.UpdateStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		r, err := svc.UpdateReturnStatus(c.Request.Context(), id, in.Status)
		httpx.RecordOperation("update_return_status", err == nil)
		if err != nil {
			writeOrderError(c, "update return status", err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// listTransactionsHandler godoc
// @Summary   List my transactions
// @Tags      transactions
// @Produce   json
// @Security  BearerAuth
// @Param     page       query     int     false  "Page (1-based)"
// @Param     limit      query     int     false  "Page size (max 100)"
// @Param     sortBy     query     string  false  "createdAt, amount or type"
// @Param     sortOrder  query     string  false  "asc or desc"
// @Param     type       query     string  false  "DEBIT or CREDIT"
// @Success   200        {object}  ledger.ListResponse
// @Failure   400        {object}  HTTPError
// @Router    /transactions [get]
func listTransactionsHandler(repo ledger.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		q, err := ledger.Query{
			Page:      pagination.Parse(c.Query("page"), c.Query("limit")),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			Type:      ledger.Type(c.Query("type")),
		}.Normalize()
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		items, total, err := repo.ListByUser(c.Request.Context(), uid, q)
		if err != nil {
			log.Printf("[ledger] list user=%d: %v", uid, err)
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, ledger.ListResponse{Data: items, Meta: pagination.NewMeta(q.Page, total)})
	}
}

// getTransactionHandler godoc
// @Summary   Get one of my transactions
// @Tags      transactions
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Transaction ID"
// @Success   200  {object}  ledger.Transaction
// @Failure   404  {object}  HTTPError
// @Router    /transactions/{id} [get]
func getTransactionHandler(repo ledger.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := caller(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		t, err := repo.GetByID(c.Request.Context(), id, uid)
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(c, http.StatusNotFound, "transaction not found")
			return
		}
		if err != nil {
			log.Printf("[ledger] get id=%d: %v", id, err)
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, t)
	}
}
