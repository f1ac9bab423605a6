package transport

type CreateOrderItem struct {
	ProductID  int64   `json:"product_id" validate:"gte=0"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"    validate:"gte=1"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
}

// CreateOrderRequest is sent by the gateway; User is the identity it stamped.
type CreateOrderRequest struct {
	User  string            `json:"user"  validate:"required"`
	Items []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	Message string  `json:"message"`
	Status  string  `json:"status"`
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}
