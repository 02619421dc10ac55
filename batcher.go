package sqsconsumer

import (
	"context"
	"sync"
	"time"
)

// SQSMaxBatchSize is the maximum number of entries accepted by a
// single DeleteMessageBatch call.
const SQSMaxBatchSize = 10

// ackBatcher buffers acknowledgments of settled messages and flushes
// them to the transport in bounded batches, either when the buffer
// reaches SQSMaxBatchSize or on a periodic timer. The buffer is the
// only state shared between concurrently settling processors, so all
// mutation paths (append, drain, reinsert) run under one mutex.
type ackBatcher struct {
	transport QueueTransport
	logger    Logger
	interval  time.Duration

	mu  sync.Mutex
	buf []AckEntry

	wake     chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func newAckBatcher(transport QueueTransport, logger Logger, interval time.Duration) *ackBatcher {
	return &ackBatcher{
		transport: transport,
		logger:    logger,
		interval:  interval,
		wake:      make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (b *ackBatcher) run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			// Final forced flush before the consumer reaches Stopped.
			b.flush(ctx)
			return
		case <-b.wake:
			b.flush(ctx)
		case <-ticker.C:
			b.flush(ctx)
		}
	}
}

// add buffers one entry and triggers an immediate flush once the
// buffer holds a full batch.
func (b *ackBatcher) add(e AckEntry) {
	b.mu.Lock()
	b.buf = append(b.buf, e)
	full := len(b.buf) >= SQSMaxBatchSize
	b.mu.Unlock()

	if full {
		select {
		case b.wake <- struct{}{}:
		default:
		}
	}
}

// flush drains the buffer in batches of at most SQSMaxBatchSize. On
// failure the affected entries are reinserted at the front of the
// buffer and flushing pauses until the next trigger; retried
// indefinitely, a delete is never given up on.
func (b *ackBatcher) flush(ctx context.Context) {
	for {
		b.mu.Lock()
		if len(b.buf) == 0 {
			b.mu.Unlock()
			return
		}
		n := len(b.buf)
		if n > SQSMaxBatchSize {
			n = SQSMaxBatchSize
		}
		batch := make([]AckEntry, n)
		copy(batch, b.buf[:n])
		b.buf = b.buf[n:]
		b.mu.Unlock()

		failed, err := b.transport.BatchDelete(ctx, batch)
		if err != nil {
			b.reinsert(batch)
			b.logger.Warn("batch delete failed, entries queued for retry",
				"count", len(batch), "error", err)
			return
		}
		if len(failed) > 0 {
			b.reinsert(failed)
			b.logger.Warn("batch delete partially failed, entries queued for retry",
				"count", len(failed))
			return
		}
		b.logger.Debug("batch delete flushed", "count", len(batch))
	}
}

func (b *ackBatcher) reinsert(entries []AckEntry) {
	b.mu.Lock()
	b.buf = append(entries, b.buf...)
	b.mu.Unlock()
}

// pending reports the current buffer size.
func (b *ackBatcher) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// stop triggers the final flush and waits for the run loop to exit.
// Idempotent.
func (b *ackBatcher) stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
	<-b.done
}
