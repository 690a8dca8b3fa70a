package printer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fornace/kitchen-panel/internal/domain/order"
)

type memJournal struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memJournal) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) ListSince(_ context.Context, since time.Time) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memJournal) snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

func testOrder(id int64) order.Order {
	return order.Order{
		ID:        id,
		Status:    order.StatusPreparing,
		CreatedAt: time.Date(2025, 11, 12, 20, 30, 0, 0, time.UTC),
		Total:     order.NewMoney(44200),
		Address:   "Calle 1",
		Phone:     "+56912345678",
	}
}

func TestSpoolerJournalsEnqueuedTickets(t *testing.T) {
	journal := &memJournal{}
	s := NewSpooler(journal, zaptest.NewLogger(t), 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	require.True(t, s.Enqueue(testOrder(77)))

	require.Eventually(t, func() bool {
		return len(journal.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	e := journal.snapshot()[0]
	assert.Equal(t, int64(77), e.OrderID)
	assert.Equal(t, "En preparación", e.OrderStatus)
	assert.Equal(t, StatePrinted, e.State)
	assert.Contains(t, e.Body, "TOTAL: $44.200")
	require.NotNil(t, e.PrintedAt)
}

func TestSpoolerDrainsQueueOnShutdown(t *testing.T) {
	journal := &memJournal{}
	s := NewSpooler(journal, zaptest.NewLogger(t), 8)

	for i := int64(1); i <= 3; i++ {
		require.True(t, s.Enqueue(testOrder(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = s.Run(ctx)

	assert.Len(t, journal.snapshot(), 3)
}

func TestSpoolerEnqueueNeverBlocks(t *testing.T) {
	journal := &memJournal{}
	s := NewSpooler(journal, zaptest.NewLogger(t), 1)

	// No consumer running: the first fits, the second is dropped.
	assert.True(t, s.Enqueue(testOrder(1)))
	assert.False(t, s.Enqueue(testOrder(2)))
}
