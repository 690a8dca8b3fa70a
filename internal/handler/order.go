package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/fornace/kitchen-panel/internal/dashboard"
	"github.com/fornace/kitchen-panel/internal/domain/order"
	"github.com/fornace/kitchen-panel/internal/orderstore"
	"github.com/fornace/kitchen-panel/internal/ticket"
)

// listOrders reloads the list from the store and returns the filtered,
// sorted view. The ?filter= query defaults to the kitchen "all" view.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.ctrl.Refresh(ctx); err != nil {
		h.storeError(w, err)
		return
	}

	filter := r.URL.Query().Get("filter")
	orders := h.ctrl.View(filter)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("orders")
	e.ArrStart()
	for _, o := range orders {
		order.Encode(&e, o)
	}
	e.ArrEnd()
	e.ObjEnd()

	writeJSON(w, http.StatusOK, &e)
}

// advanceOrder proposes a status transition. On success the list has already
// been reloaded, so the fresh view is returned; on failure the last
// known-good list stays untouched and the error is reported inline.
func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := orderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	target, err := decodeTarget(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"status\": \"...\"}")
		return
	}

	if err := h.ctrl.Advance(ctx, id, target); err != nil {
		var ite *dashboard.InvalidTransitionError
		if errors.As(err, &ite) {
			writeError(w, http.StatusUnprocessableEntity, ite.Error())
			return
		}
		h.storeError(w, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("orders")
	e.ArrStart()
	for _, o := range h.ctrl.View(order.FilterAll) {
		order.Encode(&e, o)
	}
	e.ArrEnd()
	e.ObjEnd()

	writeJSON(w, http.StatusOK, &e)
}

// orderTicket returns the plain-text kitchen ticket for one order.
func (h *Handler) orderTicket(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetchOrder(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, ticket.Render(o))
}

// orderPrintDocument returns the standalone print page and journals the
// print. Journaling is fire and forget; a full queue does not fail the
// request.
func (h *Handler) orderPrintDocument(w http.ResponseWriter, r *http.Request) {
	o, ok := h.fetchOrder(w, r)
	if !ok {
		return
	}

	text := ticket.Render(o)
	if h.spooler != nil {
		h.spooler.Enqueue(o)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, ticket.PrintDocument(text))
}

// fetchOrder reloads the list and resolves the order from the path id,
// writing the error response itself when it reports false.
func (h *Handler) fetchOrder(w http.ResponseWriter, r *http.Request) (order.Order, bool) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return order.Order{}, false
	}

	if err := h.ctrl.Refresh(r.Context()); err != nil {
		h.storeError(w, err)
		return order.Order{}, false
	}

	o, ok := h.ctrl.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return order.Order{}, false
	}
	return o, true
}

// storeError maps collaborator failures to panel responses: 401 stays 401
// (session expiry), everything else becomes 502 with the upstream message.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, orderstore.ErrSessionExpired) {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	var se *orderstore.StatusError
	if errors.As(err, &se) {
		writeError(w, http.StatusBadGateway, se.Message)
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeTarget(body io.Reader) (order.Status, error) {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return "", err
	}

	var target string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "status" {
			var err error
			target, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", err
	}
	if target == "" {
		return "", errors.New("status required")
	}
	return order.Status(target), nil
}
