package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fornace/kitchen-panel/internal/dashboard"
	"github.com/fornace/kitchen-panel/internal/domain/order"
	"github.com/fornace/kitchen-panel/internal/orderstore"
)

type fakeStore struct {
	orders    []order.Order
	listErr   error
	updateErr error
	updatedTo order.Status
}

func (f *fakeStore) ListOrders(context.Context) ([]order.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orders, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, target order.Status) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedTo = target
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = target
		}
	}
	return nil
}

type fakeSpooler struct {
	enqueued []int64
}

func (f *fakeSpooler) Enqueue(o order.Order) bool {
	f.enqueued = append(f.enqueued, o.ID)
	return true
}

func boardOrder(id int64, status order.Status, minute int) order.Order {
	return order.Order{
		ID:        id,
		Status:    status,
		CreatedAt: time.Date(2025, 11, 12, 20, minute, 0, 0, time.UTC),
		Items: []order.LineItem{{
			Name: "Hawaiana", Quantity: 2, UnitPrice: order.NewMoney(19600),
			Size: &order.Size{Name: "grande"},
		}},
		Subtotal: order.NewMoney(39200),
		Shipping: order.NewMoney(2000),
		Tax:      order.NewMoney(3000),
		Total:    order.NewMoney(44200),
		Address:  "Calle 1",
		Phone:    "+56912345678",
	}
}

func newTestServer(t *testing.T, store *fakeStore, sp *fakeSpooler) *httptest.Server {
	t.Helper()

	h := NewHandler(dashboard.NewController(store), sp)
	r := chi.NewRouter()
	r.Route("/api", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type listResponse struct {
	Orders []struct {
		ID          int64  `json:"id"`
		Status      string `json:"status"`
		StatusLabel string `json:"statusLabel"`
		Actionable  bool   `json:"actionable"`
		Actions     []struct {
			Label  string `json:"label"`
			Target string `json:"target"`
		} `json:"actions"`
	} `json:"orders"`
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestListOrders(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		boardOrder(1, order.StatusPending, 1),
		boardOrder(2, order.StatusDelivered, 2),
		boardOrder(3, order.StatusOutForDelivery, 3),
	}}
	srv := newTestServer(t, store, &fakeSpooler{})

	var got listResponse
	resp := getJSON(t, srv.URL+"/api/orders", &got)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Orders, 2) // delivered excluded from the all view
	assert.Equal(t, int64(3), got.Orders[0].ID)
	assert.Equal(t, "En camino", got.Orders[0].StatusLabel)
	require.Len(t, got.Orders[0].Actions, 2)
	assert.Equal(t, "delivered", got.Orders[0].Actions[1].Target)
}

func TestListOrdersExactFilter(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		boardOrder(1, order.StatusPending, 1),
		boardOrder(2, order.StatusDelivered, 2),
	}}
	srv := newTestServer(t, store, &fakeSpooler{})

	var got listResponse
	resp := getJSON(t, srv.URL+"/api/orders?filter=delivered", &got)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, int64(2), got.Orders[0].ID)
	assert.False(t, got.Orders[0].Actionable)
}

func TestListOrdersStoreDown(t *testing.T) {
	store := &fakeStore{listErr: &orderstore.StatusError{Code: 503, Message: "mantenimiento"}}
	srv := newTestServer(t, store, &fakeSpooler{})

	resp := getJSON(t, srv.URL+"/api/orders", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListOrdersSessionExpired(t *testing.T) {
	store := &fakeStore{listErr: orderstore.ErrSessionExpired}
	srv := newTestServer(t, store, &fakeSpooler{})

	resp := getJSON(t, srv.URL+"/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdvanceOrder(t *testing.T) {
	store := &fakeStore{orders: []order.Order{boardOrder(1, order.StatusPending, 1)}}
	srv := newTestServer(t, store, &fakeSpooler{})

	// Prime the controller list.
	getJSON(t, srv.URL+"/api/orders", nil)

	resp, err := http.Post(srv.URL+"/api/orders/1/status", "application/json",
		strings.NewReader(`{"status": "confirmed"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.StatusConfirmed, store.updatedTo)

	var got listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Orders, 1)
	assert.Equal(t, "confirmed", got.Orders[0].Status)
}

func TestAdvanceOrderInvalidTransition(t *testing.T) {
	store := &fakeStore{orders: []order.Order{boardOrder(1, order.StatusPending, 1)}}
	srv := newTestServer(t, store, &fakeSpooler{})
	getJSON(t, srv.URL+"/api/orders", nil)

	resp, err := http.Post(srv.URL+"/api/orders/1/status", "application/json",
		strings.NewReader(`{"status": "delivered"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAdvanceOrderBadBody(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, &fakeSpooler{})

	resp, err := http.Post(srv.URL+"/api/orders/1/status", "application/json",
		strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdvanceOrderStoreFailure(t *testing.T) {
	store := &fakeStore{
		orders:    []order.Order{boardOrder(1, order.StatusPending, 1)},
		updateErr: errors.New("conflict"),
	}
	srv := newTestServer(t, store, &fakeSpooler{})
	getJSON(t, srv.URL+"/api/orders", nil)

	resp, err := http.Post(srv.URL+"/api/orders/1/status", "application/json",
		strings.NewReader(`{"status": "confirmed"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestOrderTicket(t *testing.T) {
	store := &fakeStore{orders: []order.Order{boardOrder(77, order.StatusPending, 1)}}
	srv := newTestServer(t, store, &fakeSpooler{})

	resp, err := http.Get(srv.URL + "/api/orders/77/ticket")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "2x Hawaiana (grande)")
	assert.Contains(t, string(body), "TOTAL: $44.200")
}

func TestOrderTicketNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, &fakeSpooler{})

	resp := getJSON(t, srv.URL+"/api/orders/404/ticket", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderPrintDocumentEnqueuesJournal(t *testing.T) {
	store := &fakeStore{orders: []order.Order{boardOrder(77, order.StatusPending, 1)}}
	sp := &fakeSpooler{}
	srv := newTestServer(t, store, sp)

	resp, err := http.Get(srv.URL + "/api/orders/77/print")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "window.print()")
	assert.Contains(t, string(body), "2x Hawaiana (grande)")
	assert.Equal(t, []int64{77}, sp.enqueued)
}
