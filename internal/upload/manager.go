package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrItemProcessing is returned when removing an item that is mid-flight.
	ErrItemProcessing = errors.New("item is currently processing")
	// ErrItemNotFound is returned when no queued item has the given ID.
	ErrItemNotFound = errors.New("item not found")
)

// Processor runs one document through the extraction pipeline. It reports
// coarse progress through the callback and returns a human-readable summary
// of what was extracted.
type Processor interface {
	ProcessDocument(ctx context.Context, doc Document, progress func(int)) (string, error)
}

// Manager owns the upload queue. Documents are drained strictly one at a
// time in submission order; at most one item is ever processing. Sequential
// draining is a correctness decision, not a performance one: the model call
// dominates latency and a single worker keeps per-item status deterministic.
type Manager struct {
	mu        sync.Mutex
	processor Processor
	items     []*queueItem
	draining  bool
}

// NewManager creates a Manager that drains documents through the processor.
func NewManager(processor Processor) *Manager {
	return &Manager{processor: processor}
}

// Enqueue appends documents to the queue in submission order and returns
// their item snapshots. Processing does not start until Start is called.
func (m *Manager) Enqueue(docs ...Document) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshots := make([]Item, 0, len(docs))
	for _, doc := range docs {
		item := &queueItem{
			Item: Item{
				ID:          uuid.NewString(),
				Filename:    doc.Filename,
				ContentType: doc.ContentType,
				Status:      StatusPending,
				AddedAt:     time.Now(),
			},
			doc: doc,
		}
		m.items = append(m.items, item)
		snapshots = append(snapshots, item.Item)
	}
	return snapshots
}

// Start begins draining the queue. It is a no-op if a drain is already
// running or nothing is pending.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.draining || m.nextPendingLocked() == nil {
		return
	}
	m.draining = true
	go m.drain(ctx)
}

// Remove deletes a non-processing item from the queue. Removing an item that
// is mid-flight fails with ErrItemProcessing and leaves it untouched.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range m.items {
		if item.ID != id {
			continue
		}
		if item.Status == StatusProcessing {
			return ErrItemProcessing
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		return nil
	}
	return ErrItemNotFound
}

// ClearTerminal removes every completed or errored item and returns how many
// were removed.
func (m *Manager) ClearTerminal() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	removed := 0
	for _, item := range m.items {
		if item.Status.Terminal() {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	return removed
}

// Items returns a snapshot of the queue in submission order.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshots := make([]Item, len(m.items))
	for i, item := range m.items {
		snapshots[i] = item.Item
	}
	return snapshots
}

// drain pulls pending items off the head of the queue one at a time until
// none remain. Pipeline failures downgrade to the item's terminal error
// status; nothing here is fatal to the process.
func (m *Manager) drain(ctx context.Context) {
	for {
		m.mu.Lock()
		item := m.nextPendingLocked()
		if item == nil || ctx.Err() != nil {
			m.draining = false
			m.mu.Unlock()
			return
		}
		item.Status = StatusProcessing
		item.Progress = 0
		doc := item.doc
		id := item.ID
		m.mu.Unlock()

		slog.Info("processing document", "id", id, "filename", doc.Filename)
		description, err := m.processor.ProcessDocument(ctx, doc, func(p int) {
			m.reportProgress(id, p)
		})

		m.mu.Lock()
		if err != nil {
			slog.Error("processing failed", "id", id, "filename", doc.Filename, "error", err)
			item.Status = StatusError
		} else {
			item.Status = StatusCompleted
			item.Description = description
		}
		item.Progress = 100
		item.doc = Document{} // release the file bytes
		m.mu.Unlock()
	}
}

// nextPendingLocked returns the first pending item in FIFO order.
func (m *Manager) nextPendingLocked() *queueItem {
	for _, item := range m.items {
		if item.Status == StatusPending {
			return item
		}
	}
	return nil
}

// reportProgress applies a progress update to a processing item. Updates are
// monotonic and capped below 100; only the terminal transition reaches 100.
func (m *Manager) reportProgress(id string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.ID != id || item.Status != StatusProcessing {
			continue
		}
		if progress > 99 {
			progress = 99
		}
		if progress > item.Progress {
			item.Progress = progress
		}
		return
	}
}
