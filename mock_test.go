package sqsconsumer

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockTransport implements QueueTransport with optional per-operation
// hooks and call counters, for testing purposes.
type mockTransport struct {
	mu sync.Mutex

	receiveFn func(params ReceiveParams) ([]Message, error)
	extendFn  func(receiptHandle string) error
	deleteFn  func(receiptHandle string) error
	batchFn   func(entries []AckEntry) ([]AckEntry, error)

	receives     int
	extends      int
	deletes      int
	batchDeletes int

	batches [][]AckEntry
	deleted []AckEntry
}

func (m *mockTransport) Receive(ctx context.Context, params ReceiveParams) ([]Message, error) {
	m.mu.Lock()
	m.receives++
	fn := m.receiveFn
	m.mu.Unlock()

	if fn == nil {
		// Pretend to long-poll an empty queue.
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msgs, err := fn(params)
	if len(msgs) == 0 && err == nil {
		time.Sleep(time.Millisecond)
	}
	return msgs, err
}

func (m *mockTransport) ExtendLease(ctx context.Context, receiptHandle string, visibilityTimeout int32) error {
	m.mu.Lock()
	m.extends++
	fn := m.extendFn
	m.mu.Unlock()

	if fn != nil {
		return fn(receiptHandle)
	}
	return nil
}

func (m *mockTransport) Delete(ctx context.Context, receiptHandle string) error {
	m.mu.Lock()
	m.deletes++
	fn := m.deleteFn
	m.mu.Unlock()

	if fn != nil {
		if err := fn(receiptHandle); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.deleted = append(m.deleted, AckEntry{ReceiptHandle: receiptHandle})
	m.mu.Unlock()
	return nil
}

func (m *mockTransport) BatchDelete(ctx context.Context, entries []AckEntry) ([]AckEntry, error) {
	m.mu.Lock()
	m.batchDeletes++
	fn := m.batchFn
	m.mu.Unlock()

	var failed []AckEntry
	if fn != nil {
		var err error
		failed, err = fn(entries)
		if err != nil {
			return nil, err
		}
	}

	failedIDs := make(map[string]struct{}, len(failed))
	for _, f := range failed {
		failedIDs[f.ID] = struct{}{}
	}

	m.mu.Lock()
	m.batches = append(m.batches, entries)
	for _, e := range entries {
		if _, ok := failedIDs[e.ID]; !ok {
			m.deleted = append(m.deleted, e)
		}
	}
	m.mu.Unlock()
	return failed, nil
}

func (m *mockTransport) receiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receives
}

func (m *mockTransport) extendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extends
}

func (m *mockTransport) deleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

func (m *mockTransport) deletedEntries() []AckEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AckEntry, len(m.deleted))
	copy(out, m.deleted)
	return out
}

func (m *mockTransport) deletedIDs() map[string]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]struct{}, len(m.deleted))
	for _, e := range m.deleted {
		ids[e.ID] = struct{}{}
	}
	return ids
}

func (m *mockTransport) batchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.batches))
	for i, b := range m.batches {
		sizes[i] = len(b)
	}
	return sizes
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v: %v", timeout, desc)
}

func testMessage(id string) Message {
	return Message{
		ID:            id,
		ReceiptHandle: "rh-" + id,
		Body:          "body-" + id,
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}
