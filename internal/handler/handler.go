// Package handler exposes the kitchen panel HTTP API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/fornace/kitchen-panel/internal/dashboard"
	"github.com/fornace/kitchen-panel/internal/domain/order"
)

// Enqueuer schedules a print-journal entry; see printer.Spooler.
type Enqueuer interface {
	Enqueue(o order.Order) bool
}

// Handler wires the panel routes to the dashboard controller and the print
// spooler.
type Handler struct {
	ctrl    *dashboard.Controller
	spooler Enqueuer
}

// NewHandler constructs a Handler.
func NewHandler(ctrl *dashboard.Controller, sp Enqueuer) *Handler {
	return &Handler{ctrl: ctrl, spooler: sp}
}

// Routes mounts the panel API on r. Callers apply auth and the common
// middleware stack around it.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders/{id}/status", h.advanceOrder)
	r.Get("/orders/{id}/ticket", h.orderTicket)
	r.Get("/orders/{id}/print", h.orderPrintDocument)
}

// writeJSON sends an encoded body with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError sends the panel's JSON error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, &e)
}
