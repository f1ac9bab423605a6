package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	"github.com/Skotchmaster/shopsplit/pkg/events"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/Skotchmaster/shopsplit/services/order/internal/models"
	"github.com/Skotchmaster/shopsplit/services/order/internal/payment"
	"github.com/Skotchmaster/shopsplit/services/order/internal/repo"
	"github.com/Skotchmaster/shopsplit/services/order/internal/transport"
	"github.com/google/uuid"
)

type Payments interface {
	Charge(ctx context.Context, user string, amount float64) error
}

type Indexer interface {
	IndexOrder(ctx context.Context, order *models.Order) error
}

type OrderService struct {
	Repo     *repo.GormRepo
	Payments Payments
	Events   events.Publisher
	// Indexer is optional.
	Indexer Indexer
	Now     func() time.Time
	// MaxPageSize caps ListOrders. Zero means 100.
	MaxPageSize int
}

type OrderCreated struct {
	OrderID string  `json:"order_id"`
	User    string  `json:"user"`
	Total   float64 `json:"total"`
	Items   int     `json:"items"`
}

// RoundTotal sums line totals and rounds to cents.
func RoundTotal(items []transport.CreateOrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.TotalPrice
	}
	return math.Round(sum*100) / 100
}

func (svc *OrderService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now()
}

func (svc *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user", req.User)

	if req.User == "" || len(req.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "user and items are required")
	}

	total := RoundTotal(req.Items)

	if err := svc.Payments.Charge(ctx, req.User, total); err != nil {
		if errors.Is(err, payment.ErrRejected) {
			l.Warn("payment_rejected", "total", total)
			return nil, apperr.New(apperr.KindPaymentRejected, "payment rejected")
		}
		l.Error("payment_error", "error", err)
		return nil, apperr.Wrap(apperr.KindServiceUnavailable, "payment unavailable", err)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice,
		})
	}

	order, err := svc.Repo.CreateOrder(ctx, &models.Order{
		ID:        uuid.NewString(),
		Username:  req.User,
		Total:     total,
		Status:    models.OrderStatusPaid,
		CreatedAt: svc.now().UTC(),
		Items:     items,
	})
	if err != nil {
		l.Error("create_order_error", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	svc.announce(ctx, order)
	return order, nil
}

// announce publishes and indexes a stored order. Failures are logged only.
func (svc *OrderService) announce(ctx context.Context, order *models.Order) {
	l := logging.FromContext(ctx)

	if svc.Events != nil {
		ev := events.Event{
			Type:       "order_created",
			OccurredAt: order.CreatedAt,
			Data: OrderCreated{
				OrderID: order.ID,
				User:    order.Username,
				Total:   order.Total,
				Items:   len(order.Items),
			},
		}
		if err := svc.Events.Publish(ctx, events.TopicOrderEvents, order.Username, ev); err != nil {
			l.Warn("event_publish_failed", "order_id", order.ID, "error", err)
		}
	}

	if svc.Indexer != nil {
		if err := svc.Indexer.IndexOrder(ctx, order); err != nil {
			l.Warn("order_index_failed", "order_id", order.ID, "error", err)
		}
	}
}

func (svc *OrderService) GetOrder(ctx context.Context, user, id string) (*models.Order, error) {
	order, err := svc.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	// another user's order is reported as missing
	if order.Username != user {
		return nil, apperr.New(apperr.KindNotFound, "order not found")
	}
	return order, nil
}

func (svc *OrderService) ListOrders(ctx context.Context, user string, limit, offset int) ([]models.Order, error) {
	if user == "" {
		return nil, apperr.New(apperr.KindValidation, "user is required")
	}
	maxPage := svc.MaxPageSize
	if maxPage <= 0 {
		maxPage = 100
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPage {
		limit = maxPage
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := svc.Repo.ListOrders(ctx, user, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}
	return orders, nil
}
