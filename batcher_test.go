package sqsconsumer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func entries(n int) []AckEntry {
	out := make([]AckEntry, n)
	for i := range out {
		out[i] = AckEntry{ID: fmt.Sprintf("msg-%02d", i), ReceiptHandle: fmt.Sprintf("rh-%02d", i)}
	}
	return out
}

//flush

func TestFlush_DrainsInBoundedBatches(t *testing.T) {
	mock := &mockTransport{}
	b := newAckBatcher(mock, NopLogger{}, time.Minute)

	for _, e := range entries(25) {
		b.buf = append(b.buf, e)
	}
	b.flush(context.Background())

	sizes := b.transport.(*mockTransport).batchSizes()
	if len(sizes) != 3 {
		t.Fatalf("expected 3 batches, got %v", len(sizes))
	}
	for i, s := range sizes {
		if s > SQSMaxBatchSize {
			t.Errorf("batch %v exceeds maximum size: %v", i, s)
		}
	}
	if b.pending() != 0 {
		t.Errorf("buffer not drained: %v entries left", b.pending())
	}
	if len(mock.deletedEntries()) != 25 {
		t.Errorf("expected 25 deletions, got %v", len(mock.deletedEntries()))
	}
}

func TestFlush_ReinsertsWholeBatchOnError(t *testing.T) {
	calls := 0
	mock := &mockTransport{
		batchFn: func([]AckEntry) ([]AckEntry, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("mocking generic error response")
			}
			return nil, nil
		},
	}
	b := newAckBatcher(mock, NopLogger{}, time.Minute)
	in := entries(10)
	for _, e := range in {
		b.buf = append(b.buf, e)
	}

	b.flush(context.Background())

	if b.pending() != 10 {
		t.Fatalf("failed batch not reinserted: %v entries pending", b.pending())
	}

	b.flush(context.Background())

	deleted := mock.deletedEntries()
	if len(deleted) != 10 {
		t.Fatalf("expected 10 deletions after retry, got %v", len(deleted))
	}
	for i, e := range deleted {
		if e.ID != in[i].ID {
			t.Errorf("reinsertion broke ordering at %v: %v", i, e.ID)
		}
	}
}

func TestFlush_ReinsertsOnlyFailedEntriesOnPartialFailure(t *testing.T) {
	calls := 0
	mock := &mockTransport{
		batchFn: func(batch []AckEntry) ([]AckEntry, error) {
			calls++
			if calls == 1 {
				return batch[:2], nil
			}
			return nil, nil
		},
	}
	b := newAckBatcher(mock, NopLogger{}, time.Minute)
	for _, e := range entries(10) {
		b.buf = append(b.buf, e)
	}

	b.flush(context.Background())

	if b.pending() != 2 {
		t.Fatalf("expected 2 failed entries pending, got %v", b.pending())
	}

	b.flush(context.Background())

	if ids := mock.deletedIDs(); len(ids) != 10 {
		t.Errorf("expected all 10 entries deleted eventually, got %v", len(ids))
	}
}

//add

func TestAdd_FullBufferTriggersImmediateFlush(t *testing.T) {
	mock := &mockTransport{}
	b := newAckBatcher(mock, NopLogger{}, time.Minute)
	go b.run(context.Background())
	defer b.stop()

	for _, e := range entries(SQSMaxBatchSize) {
		b.add(e)
	}

	waitUntil(t, time.Second, func() bool {
		return len(mock.deletedEntries()) == SQSMaxBatchSize
	}, "full buffer flushed")

	if b.pending() != 0 {
		t.Errorf("buffer not empty after size-triggered flush: %v", b.pending())
	}
}

func TestAdd_TimerFlushesPartialBuffer(t *testing.T) {
	mock := &mockTransport{}
	b := newAckBatcher(mock, NopLogger{}, 10*time.Millisecond)
	go b.run(context.Background())
	defer b.stop()

	for _, e := range entries(3) {
		b.add(e)
	}

	waitUntil(t, time.Second, func() bool {
		return len(mock.deletedEntries()) == 3
	}, "timer flushed partial buffer")
}

//stop

func TestStop_ForcesFinalFlush(t *testing.T) {
	mock := &mockTransport{}
	b := newAckBatcher(mock, NopLogger{}, time.Minute)
	go b.run(context.Background())

	for _, e := range entries(4) {
		b.add(e)
	}
	b.stop()

	if got := len(mock.deletedEntries()); got != 4 {
		t.Errorf("final flush incomplete: %v of 4 deleted", got)
	}
}

func TestStop_Idempotent(t *testing.T) {
	b := newAckBatcher(&mockTransport{}, NopLogger{}, time.Minute)
	go b.run(context.Background())

	b.stop()
	b.stop()
}
