package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skotchmaster/shopsplit/pkg/apperr"
	pkgdb "github.com/Skotchmaster/shopsplit/pkg/db"
	"github.com/Skotchmaster/shopsplit/pkg/events"
	"github.com/Skotchmaster/shopsplit/services/order/internal/models"
	"github.com/Skotchmaster/shopsplit/services/order/internal/payment"
	"github.com/Skotchmaster/shopsplit/services/order/internal/repo"
	"github.com/Skotchmaster/shopsplit/services/order/internal/service"
	"github.com/Skotchmaster/shopsplit/services/order/internal/transport"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, pay service.Payments) *echo.Echo {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), ":memory:", &models.Order{}, &models.OrderItem{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	return NewEcho(&Deps{
		OrderHandler: &OrderHTTP{Svc: &service.OrderService{
			Repo:     &repo.GormRepo{DB: db},
			Payments: pay,
			Events:   events.Nop{},
		}},
	})
}

func postOrder(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validOrder = `{"user":"alice","items":[{"product_id":1,"name":"tea","quantity":2,"total_price":3.333},{"product_id":2,"name":"cup","quantity":1,"total_price":1}]}`

func TestOrderHTTP_CreateAndRead(t *testing.T) {
	e := newTestServer(t, payment.Always{})

	rec := postOrder(e, validOrder)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created transport.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "ok", created.Status)
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, 4.33, created.Total)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+created.OrderID+"?user=alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "alice", order.Username)
	assert.Len(t, order.Items, 2)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+created.OrderID+"?user=bob", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?user=alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestOrderHTTP_Rejections(t *testing.T) {
	tests := []struct {
		name string
		pay  service.Payments
		body string
		code int
		kind apperr.Kind
	}{
		{"missing user", payment.Always{}, `{"items":[{"product_id":1,"quantity":1,"total_price":1}]}`, 400, apperr.KindValidation},
		{"no items", payment.Always{}, `{"user":"alice","items":[]}`, 400, apperr.KindValidation},
		{"zero quantity", payment.Always{}, `{"user":"alice","items":[{"product_id":1,"quantity":0,"total_price":1}]}`, 400, apperr.KindValidation},
		{"not json", payment.Always{}, `{"user":`, 400, apperr.KindValidation},
		{"payment rejected", payment.Always{Err: payment.ErrRejected}, validOrder, 402, apperr.KindPaymentRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, tt.pay)
			rec := postOrder(e, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			var body apperr.Body
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error)
		})
	}
}
