package order

import "github.com/MikeMC777/ecom-returns/internal/pagination"

// ItemRequest is one requested product and quantity.
// swagger:model ItemRequest
type ItemRequest struct {
	ProductID int64 `json:"productId" example:"7"`
	Qty       int   `json:"qty"       example:"3"`
}

// CreateOrderRequest payload of order creation. The user comes from the token.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items []ItemRequest `json:"items"`
}

// CreateReturnRequest payload of return creation.
// swagger:model CreateReturnRequest
type CreateReturnRequest struct {
	OrderID int64         `json:"orderId" example:"1"`
	Items   []ItemRequest `json:"items"`
}

// UpdateStatusRequest payload of the administrative status updates.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"SUCCESS"`
}

// ListResponse is a page of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Data []Order         `json:"data"`
	Meta pagination.Meta `json:"meta"`
}
