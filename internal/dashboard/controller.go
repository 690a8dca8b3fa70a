// Package dashboard owns the kitchen panel's view of the order list.
//
// The list has one owner and is replaced wholesale on every successful fetch;
// nothing is ever patched in place. Responses resolving out of order are
// handled with fetch sequencing: only the newest fetch may publish its
// result, so a stale response can never overwrite a newer list.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"

	"github.com/fornace/kitchen-panel/internal/domain/order"
)

// Store is the order-store surface the controller needs.
type Store interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, target order.Status) error
}

// InvalidTransitionError reports a proposed transition the status engine
// does not allow for the order's current status.
type InvalidTransitionError struct {
	OrderID int64
	From    order.Status
	To      order.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: no transition %s -> %s", e.OrderID, e.From, e.To)
}

// Controller coordinates list refreshes and transition proposals.
type Controller struct {
	store Store

	mu      sync.Mutex
	seq     uint64 // last issued fetch sequence
	applied uint64 // sequence of the currently published list
	orders  []order.Order
}

// NewController returns a Controller with an empty list.
func NewController(store Store) *Controller {
	return &Controller{store: store}
}

// Refresh fetches the list from the store and publishes it if no newer fetch
// has resolved meanwhile. On fetch failure the published list is emptied:
// the panel shows nothing rather than stale data.
func (c *Controller) Refresh(ctx context.Context) error {
	seq := c.begin()

	orders, err := c.store.ListOrders(ctx)
	if !c.publish(seq, orders, err) {
		// A newer fetch already resolved; this result is obsolete either way.
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "refresh orders")
	}
	return nil
}

// begin issues the next fetch sequence number.
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// publish installs a fetch result. It reports false when a newer fetch has
// already published, in which case the result is dropped.
func (c *Controller) publish(seq uint64, orders []order.Order, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.applied {
		return false
	}
	c.applied = seq

	if err != nil {
		c.orders = nil
		return true
	}
	c.orders = orders
	return true
}

// View returns the published orders selected by filter, newest first.
// The returned slice is the caller's to keep.
func (c *Controller) View(filter string) []order.Order {
	c.mu.Lock()
	orders := c.orders
	c.mu.Unlock()

	return order.Arrange(orders, filter)
}

// Lookup finds a published order by id.
func (c *Controller) Lookup(id int64) (order.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.orders {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}

// Advance proposes a status transition through the store. When the order is
// in the published list the target must be one the status engine exposes.
// On store failure the list is left untouched so the user can retry; on
// success the full list is reloaded from the source of truth.
func (c *Controller) Advance(ctx context.Context, id int64, target order.Status) error {
	if o, ok := c.Lookup(id); ok && !allowedTarget(o.Status, target) {
		return &InvalidTransitionError{OrderID: id, From: o.Status, To: target}
	}

	if err := c.store.UpdateStatus(ctx, id, target); err != nil {
		return errors.Wrapf(err, "advance order %d", id)
	}
	return c.Refresh(ctx)
}

func allowedTarget(from order.Status, to order.Status) bool {
	for _, a := range order.Describe(from).Actions {
		if a.Target == to {
			return true
		}
	}
	return false
}
