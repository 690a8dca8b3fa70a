package dashboard

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"github.com/fornace/kitchen-panel/internal/domain/order"
)

// Seen-order capacity for a long service day; false positives only cost a
// missed notification, never a wrong one.
const (
	watcherCapacity = 100_000
	watcherFPR      = 0.001
)

// Watcher polls the order store and reports kitchen-relevant orders it has
// not seen before. Seen IDs are tracked in a bloom filter so memory stays
// bounded across a long-running shift.
type Watcher struct {
	store    Store
	interval time.Duration
	lg       *zap.Logger
	onNew    func(order.Order)

	seen *bloom.BloomFilter
}

// NewWatcher builds a Watcher. onNew may be nil; new orders are always
// logged regardless.
func NewWatcher(store Store, interval time.Duration, lg *zap.Logger, onNew func(order.Order)) *Watcher {
	return &Watcher{
		store:    store,
		interval: interval,
		lg:       lg,
		onNew:    onNew,
		seen:     bloom.NewWithEstimates(watcherCapacity, watcherFPR),
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and skipped;
// the watcher never gives up on a transient store error.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the filter so orders already on the board at startup are not
	// announced as new.
	w.poll(ctx, false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx, true)
		}
	}
}

func (w *Watcher) poll(ctx context.Context, announce bool) {
	orders, err := w.store.ListOrders(ctx)
	if err != nil {
		w.lg.Warn("order poll failed", zap.Error(err))
		return
	}

	for _, o := range orders {
		if !order.KitchenActive(o.Status) {
			continue
		}
		if w.markSeen(o.ID) || !announce {
			continue
		}

		w.lg.Info("new order",
			zap.Int64("order_id", o.ID),
			zap.String("status", string(o.Status)),
			zap.String("total", o.Total.Format()),
		)
		if w.onNew != nil {
			w.onNew(o)
		}
	}
}

// markSeen records the id and reports whether it was already present.
func (w *Watcher) markSeen(id int64) bool {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(id))
	return w.seen.TestOrAdd(key[:])
}
