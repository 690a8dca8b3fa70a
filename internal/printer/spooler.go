package printer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fornace/kitchen-panel/internal/domain/order"
	"github.com/fornace/kitchen-panel/internal/ticket"
)

// Spooler journals print requests off the request path. Printing is fire and
// forget for the caller: Enqueue never blocks, and a full queue just drops
// the journal entry (the ticket itself was already handed to the browser).
type Spooler struct {
	journal Journal
	lg      *zap.Logger
	jobs    chan order.Order
}

// NewSpooler builds a Spooler with the given queue depth.
func NewSpooler(journal Journal, lg *zap.Logger, depth int) *Spooler {
	if depth <= 0 {
		depth = 64
	}
	return &Spooler{
		journal: journal,
		lg:      lg,
		jobs:    make(chan order.Order, depth),
	}
}

// Enqueue schedules a journal entry for the order's ticket. It reports false
// when the queue is full and the request was dropped.
func (s *Spooler) Enqueue(o order.Order) bool {
	select {
	case s.jobs <- o:
		return true
	default:
		s.lg.Warn("print journal queue full, dropping entry", zap.Int64("order_id", o.ID))
		return false
	}
}

// Run consumes the queue until ctx is cancelled, draining what is already
// queued before returning.
func (s *Spooler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			// Drain without blocking; remaining entries get a final chance.
			for {
				select {
				case o := <-s.jobs:
					s.record(context.WithoutCancel(ctx), o)
				default:
					return ctx.Err()
				}
			}
		case o := <-s.jobs:
			s.record(ctx, o)
		}
	}
}

func (s *Spooler) record(ctx context.Context, o order.Order) {
	now := time.Now()
	e := Entry{
		OrderID:     o.ID,
		OrderStatus: order.Describe(o.Status).Label,
		Total:       o.Total.Decimal(),
		Body:        ticket.Render(o),
		State:       StatePrinted,
		PrintedAt:   &now,
	}

	if err := s.journal.Record(ctx, e); err != nil {
		s.lg.Error("journal print job",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}
