package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/easyorder/internal/handlers"
	"github.com/imrishuroy/easyorder/internal/idempotency"
	"github.com/imrishuroy/easyorder/internal/notify"
	"github.com/imrishuroy/easyorder/internal/store"
	"github.com/imrishuroy/easyorder/internal/store/storetest"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeSender struct {
	mu     sync.Mutex
	fail   bool
	bodies []string
}

func (f *fakeSender) Configured() bool { return true }

func (f *fakeSender) Send(_ context.Context, body string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("queue unreachable")
	}
	f.bodies = append(f.bodies, body)
	return fmt.Sprintf("msg-%d", len(f.bodies)), nil
}

// memDynamo keeps idempotency items in memory; conditions are approximated
// by key presence.
type memDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMemDynamo() *memDynamo {
	return &memDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyString(key map[string]types.AttributeValue) string {
	return key["idempotency_key"].(*types.AttributeValueMemberS).Value
}

func (m *memDynamo) PutItem(_ context.Context, in *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyString(in.Item)
	if _, ok := m.items[k]; ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	m.items[k] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *memDynamo) GetItem(_ context.Context, in *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &dyn.GetItemOutput{Item: m.items[keyString(in.Key)]}, nil
}

func (m *memDynamo) UpdateItem(_ context.Context, in *dyn.UpdateItemInput, _ ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[keyString(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	vals := in.ExpressionAttributeValues
	item["status"] = vals[":done"]
	item["order_id"] = vals[":oid"]
	item["response_body"] = vals[":rb"]
	item["response_status"] = vals[":rs"]
	return &dyn.UpdateItemOutput{}, nil
}

func (m *memDynamo) DeleteItem(_ context.Context, in *dyn.DeleteItemInput, _ ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, keyString(in.Key))
	return &dyn.DeleteItemOutput{}, nil
}

type fixture struct {
	router *gin.Engine
	sender *fakeSender
	dynamo *memDynamo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sender := &fakeSender{}
	dynamo := newMemDynamo()
	cfg := handlers.HandlerConfig{
		DB:          storetest.Open(t),
		Paging:      store.Paging{DefaultLimit: 10, MaxLimit: 100},
		Dispatcher:  notify.NewDispatcher(sender, time.Second, nil, zerolog.Nop()),
		Idempotency: idempotency.NewStore(dynamo, "idempotency", time.Hour),
		Logger:      zerolog.Nop(),
	}
	return &fixture{router: handlers.NewRouter(cfg), sender: sender, dynamo: dynamo}
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (f *fixture) createCustomer(t *testing.T, name, email string) int64 {
	t.Helper()
	w := f.do(t, http.MethodPost, "/customers", fmt.Sprintf(`{"name":%q,"email":%q}`, name, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decode[map[string]any](t, w)["id"].(float64))
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")

	w = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCustomers_Lifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.createCustomer(t, "Alice Souza", "alice@example.com")

	w := f.do(t, http.MethodPost, "/customers", `{"name":"Other","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	w = f.do(t, http.MethodPost, "/customers", `{"name":"","email":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/customers/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Souza", decode[map[string]any](t, w)["name"])

	w = f.do(t, http.MethodPut, fmt.Sprintf("/customers/%d", id), `{"name":"Alice S.","email":"alice@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice S.", decode[map[string]any](t, w)["name"])

	w = f.do(t, http.MethodGet, "/customers/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/customers/%d", id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/customers/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/customers/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomers_Paging(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.createCustomer(t, fmt.Sprintf("c%d", i), fmt.Sprintf("c%d@example.com", i))
	}

	w := f.do(t, http.MethodGet, "/customers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 10)

	w = f.do(t, http.MethodGet, "/customers?offset=10&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = f.do(t, http.MethodGet, "/customers?offset=-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrders_CreateNotifies(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Alice Souza", "alice@example.com")

	w := f.do(t, http.MethodPost, fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":"Compra Notebook e Mouse","total_value":"3650.00"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[map[string]any](t, w)
	oid := int64(order["id"].(float64))
	assert.Equal(t, float64(cid), order["customer_id"])
	assert.Equal(t, fmt.Sprintf("/orders/%d", oid), w.Header().Get("Location"))

	require.Len(t, f.sender.bodies, 1)
	msg, err := notify.Decode(f.sender.bodies[0])
	require.NoError(t, err)
	assert.Equal(t, oid, msg.OrderID)
	assert.Equal(t, cid, msg.CustomerID)
	assert.Equal(t, "3650.00", msg.TotalValue.StringFixed(2))

	w = f.do(t, http.MethodPost, fmt.Sprintf("/customers/%d/orders", cid), `{"description":"Compra Mouse"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, f.sender.bodies, 2)
}

func TestOrders_QueueFailureStillCreates(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Alice Souza", "alice@example.com")
	f.sender.fail = true

	w := f.do(t, http.MethodPost, "/orders", fmt.Sprintf(`{"customer_id":%d,"description":"Compra"}`, cid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	oid := int64(decode[map[string]any](t, w)["id"].(float64))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", oid), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrders_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders?customer_id=99", `{"description":"Compra"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.sender.bodies)

	w = f.do(t, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestOrders_Validation(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Alice Souza", "alice@example.com")

	for name, tc := range map[string]struct{ path, body string }{
		"no customer":       {"/orders", `{"description":"Compra"}`},
		"bad query":         {"/orders?customer_id=zero", `{"description":"Compra"}`},
		"no description":    {fmt.Sprintf("/orders?customer_id=%d", cid), `{}`},
		"negative total":    {fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":"Compra","total_value":"-1"}`},
		"malformed body":    {fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":`},
		"bad path customer": {"/customers/0/orders", `{"description":"Compra"}`},
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, f.sender.bodies)
}

func TestOrders_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Alice Souza", "alice@example.com")
	path := fmt.Sprintf("/orders?customer_id=%d", cid)
	body := `{"description":"Compra Teclado","total_value":400}`

	first := f.do(t, http.MethodPost, path, body, handlers.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := f.do(t, http.MethodPost, path, body, handlers.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, f.sender.bodies, 1, "replay does not notify again")

	reused := f.do(t, http.MethodPost, path, `{"description":"something else"}`, handlers.IdempotencyKeyHeader, "key-1")
	assert.Equal(t, http.StatusUnprocessableEntity, reused.Code)

	w := f.do(t, http.MethodGet, "/orders", "")
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestOrders_IdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders?customer_id=42", `{"description":"Compra"}`, handlers.IdempotencyKeyHeader, "key-2")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.dynamo.items, "failed attempt frees the key")
}

func TestOrders_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Alice Souza", "alice@example.com")

	w := f.do(t, http.MethodPost, fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":"Compra"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	oid := int64(decode[map[string]any](t, w)["id"].(float64))

	w = f.do(t, http.MethodPost, "/payments", fmt.Sprintf(`{"order_id":%d,"amount":"10.00","payment_method":"pix"}`, oid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pid := int64(decode[map[string]any](t, w)["id"].(float64))

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/customers/%d", cid), "")
	assert.Equal(t, http.StatusConflict, w.Code, "customer with orders is kept")

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/orders/%d", oid), "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/payments/%d", pid), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayments_StatusTransitions(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Bruno Lima", "bruno@example.com")
	w := f.do(t, http.MethodPost, fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":"Compra"}`)
	oid := int64(decode[map[string]any](t, w)["id"].(float64))

	w = f.do(t, http.MethodPost, "/payments", fmt.Sprintf(`{"order_id":%d,"amount":400,"payment_method":"boleto"}`, oid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[map[string]any](t, w)
	assert.Equal(t, "pending", p["status"])
	assert.NotEmpty(t, p["created_at"])
	pid := int64(p["id"].(float64))

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/payments/%d/status", pid), `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode[map[string]any](t, w)["status"])

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/payments/%d/status", pid), `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/payments/%d/status", pid), `{"status":"refunded"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPost, "/payments", `{"order_id":9999,"amount":1,"payment_method":"pix"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductsAndLowStockReport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/products", `{"name":"Mouse Gamer","price":"150.00","category":"Acessórios","stock_quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = f.do(t, http.MethodPost, "/products", `{"name":"Notebook","price":"3500.00","category":"Eletrônicos","stock_quantity":10}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/products", `{"name":"Bad","price":"1.00","category":"x","stock_quantity":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodGet, "/reports/low-stock", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mouse Gamer", rows[0]["name"])

	w = f.do(t, http.MethodGet, "/reports/low-stock?threshold=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = f.do(t, http.MethodGet, "/reports/low-stock?threshold=11", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = f.do(t, http.MethodGet, "/reports/low-stock?threshold=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeliveriesAndReports(t *testing.T) {
	f := newFixture(t)
	cid := f.createCustomer(t, "Carla Mendes", "carla@example.com")
	f.createCustomer(t, "Bruno Lima", "bruno@example.com")
	w := f.do(t, http.MethodPost, fmt.Sprintf("/orders?customer_id=%d", cid), `{"description":"Compra"}`)
	oid := int64(decode[map[string]any](t, w)["id"].(float64))

	w = f.do(t, http.MethodPost, "/deliveries", fmt.Sprintf(`{"address":"Av. Paulista, 500","status":"em transporte","order_id":%d}`, oid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[map[string]any](t, w)["delivery_date"])

	w = f.do(t, http.MethodGet, "/reports/orders-per-customer", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["total_orders"])
	assert.Equal(t, float64(0), rows[1]["total_orders"])

	today := time.Now().UTC().Format("2006-01-02")
	w = f.do(t, http.MethodGet, fmt.Sprintf("/reports/revenue?start=%s&end=%s", today, today), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "total_revenue")

	w = f.do(t, http.MethodGet, "/reports/revenue?start=2025-02-01&end=2025-01-01", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
