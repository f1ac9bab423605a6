package httpserver

import (
	"net/http"
	"strconv"

	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/Skotchmaster/shopsplit/pkg/validation"
	"github.com/Skotchmaster/shopsplit/services/order/internal/service"
	"github.com/Skotchmaster/shopsplit/services/order/internal/transport"
	"github.com/labstack/echo/v4"
)

// OrderHTTP trusts the user field set by the gateway and performs no
// authentication of its own.
type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return err
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, transport.CreateOrderResponse{
		Message: "order recorded",
		Status:  "ok",
		OrderID: order.ID,
		Total:   order.Total,
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	orders, err := h.Svc.ListOrders(c.Request().Context(), c.QueryParam("user"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	order, err := h.Svc.GetOrder(c.Request().Context(), c.QueryParam("user"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
