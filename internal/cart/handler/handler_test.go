package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/repository"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/usecase"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/fekuna/omnipos-ordering-service/pkg/cache"
	"github.com/fekuna/omnipos-ordering-service/pkg/i18n"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct{}

func (catalog) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	if id != 3 {
		return nil, product.ErrNotFound
	}
	return &model.Product{ID: 3, Name: "Chocolate", Price: decimal.NewFromInt(30)}, nil
}

type orders struct{ calls int }

func (o *orders) CreateOrder(_ context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	o.calls++
	return &model.Order{ID: 8, CustomerName: sub.CustomerName, Status: model.OrderStatusPending}, nil
}

func setup(t *testing.T) (*gin.Engine, *miniredis.Miniredis, *orders) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tr, err := i18n.New("es")
	require.NoError(t, err)

	o := &orders{}
	uc := usecase.NewCartUseCase(repository.NewRedisRepository(client), catalog{}, o, cache.Wrap(client),
		usecase.Options{SessionTTL: time.Hour, SubmitLockTTL: time.Second}, logger.NewNop())

	r := gin.New()
	NewCartHandler(uc, response.New(tr, logger.NewNop()), logger.NewNop()).Register(r.Group("/api"))
	return r, mr, o
}

func call(t *testing.T, r http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func openCart(t *testing.T, r http.Handler, mode string) string {
	t.Helper()
	code, body := call(t, r, http.MethodPost, "/api/carritos", `{"modo":"`+mode+`"}`)
	require.Equal(t, http.StatusCreated, code)
	return body["id"].(string)
}

func TestCartFlow(t *testing.T) {
	r, _, o := setup(t)
	id := openCart(t, r, "waiter")

	code, body := call(t, r, http.MethodPost, "/api/carritos/"+id+"/items", `{"productoId":3}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Chocolate agregado al carrito", body["message"])

	code, body = call(t, r, http.MethodPatch, "/api/carritos/"+id+"/items/0", `{"delta":2,"notas":"sin azúcar"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["totalItems"])
	assert.Equal(t, "90", body["total"])

	code, body = call(t, r, http.MethodPost, "/api/carritos/"+id+"/pedido", `{"clienteNombre":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Por favor ingresa el nombre del cliente", body["error"])
	assert.Equal(t, 0, o.calls)

	code, body = call(t, r, http.MethodPost, "/api/carritos/"+id+"/pedido", `{"clienteNombre":"Mesa 1","metodoPago":"Efectivo"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Pedido enviado", body["message"])

	code, body = call(t, r, http.MethodGet, "/api/carritos/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])
}

func TestSubmit_CustomerModeMessage(t *testing.T) {
	r, _, _ := setup(t)
	id := openCart(t, r, "customer")
	call(t, r, http.MethodPost, "/api/carritos/"+id+"/items", `{"productoId":3}`)

	_, body := call(t, r, http.MethodPost, "/api/carritos/"+id+"/pedido", `{"clienteNombre":""}`)
	assert.Equal(t, "Por favor ingresa tu nombre", body["error"])
}

func TestSubmit_ConcurrentIsConflict(t *testing.T) {
	r, mr, o := setup(t)
	id := openCart(t, r, "customer")
	call(t, r, http.MethodPost, "/api/carritos/"+id+"/items", `{"productoId":3}`)
	require.NoError(t, mr.Set("carritos:lock:"+id, "other-request"))

	code, _ := call(t, r, http.MethodPost, "/api/carritos/"+id+"/pedido", `{"clienteNombre":"Ana"}`)

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 0, o.calls)
}

func TestErrors(t *testing.T) {
	r, _, _ := setup(t)
	id := openCart(t, r, "customer")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown cart", http.MethodGet, "/api/carritos/nope", "", http.StatusNotFound},
		{"bad mode", http.MethodPost, "/api/carritos", `{"modo":"robot"}`, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/carritos/" + id + "/items", `{"productoId":77}`, http.StatusNotFound},
		{"missing product id", http.MethodPost, "/api/carritos/" + id + "/items", `{}`, http.StatusBadRequest},
		{"bad index", http.MethodPatch, "/api/carritos/" + id + "/items/x", `{"delta":1}`, http.StatusBadRequest},
		{"empty cart submit", http.MethodPost, "/api/carritos/" + id + "/pedido", `{"clienteNombre":"Ana"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := call(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
		})
	}
}
