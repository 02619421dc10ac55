package sqsconsumer

import (
	"context"
	"fmt"
	"time"
)

// processor owns one message's lifecycle: lease heartbeat, handler
// execution, retries and the terminal ack. One processor instance is
// shared by all messages of a consumer; per-message state lives on
// the stack of process.
type processor struct {
	transport QueueTransport
	batcher   *ackBatcher
	handler   Handler
	backoff   BackOff

	strategy          AckStrategy
	heartbeatInterval time.Duration
	visibility        int32

	callbacks Callbacks
	logger    Logger
}

// process runs msg to a terminal outcome. The heartbeat is stopped
// strictly before the ack is issued, on every path.
func (p *processor) process(ctx context.Context, msg Message) Outcome {
	hb := startHeartbeat(ctx, p.transport, msg, p.heartbeatInterval, p.visibility, p.callbacks, p.logger)

	if p.strategy == AckImmediate {
		return p.processOnce(ctx, msg, hb)
	}
	return p.processWithRetry(ctx, msg, hb)
}

// processOnce runs the handler a single time. Success deletes the
// message immediately; failure leaves it for the queue to redeliver
// once its lease expires.
func (p *processor) processOnce(ctx context.Context, msg Message, hb *leaseHeartbeat) Outcome {
	err := p.runHandler(ctx, msg)
	hb.stop()

	if err != nil {
		p.logger.Warn("message failed, left for redelivery",
			"messageId", msg.ID, "receiveCount", msg.ReceiveCount(), "error", err)
		p.callbacks.processingError(msg, err)
		return Outcome{Message: msg, Status: Failure, Attempts: 1, Err: err}
	}

	if err := p.transport.Delete(ctx, msg.ReceiptHandle); err != nil {
		p.logger.Warn("delete failed for processed message",
			"messageId", msg.ID, "error", err)
	}
	return Outcome{Message: msg, Status: Success, Attempts: 1}
}

// processWithRetry runs the handler under the backoff policy, then
// unconditionally hands the message to the ack batcher: even an
// exhausted failure is deleted rather than left for redelivery.
func (p *processor) processWithRetry(ctx context.Context, msg Message, hb *leaseHeartbeat) Outcome {
	var err error
	attempts := 0

	for attempt := 0; ; attempt++ {
		attempts++
		err = p.runHandler(ctx, msg)
		if err == nil || attempt >= p.backoff.MaxRetries {
			break
		}
		p.logger.Debug("handler attempt failed, retrying",
			"messageId", msg.ID, "attempt", attempt, "error", err)
		if !sleep(ctx, p.backoff.Delay(attempt)) {
			// Cancelled mid-retry: abandon the message un-acked and
			// let the lease expire instead of deleting a message that
			// still had attempts left.
			hb.stop()
			p.logger.Warn("context cancelled during retry wait, message abandoned",
				"messageId", msg.ID, "attempts", attempts, "error", err)
			return Outcome{Message: msg, Status: Failure, Attempts: attempts, Err: err}
		}
	}

	hb.stop()

	outcome := Outcome{Message: msg, Status: Success, Attempts: attempts}
	if err != nil {
		p.logger.Warn("retries exhausted, message acked anyway",
			"messageId", msg.ID, "attempts", attempts, "error", err)
		p.callbacks.processingError(msg, err)
		outcome.Status = Exhausted
		outcome.Err = err
	}

	p.batcher.add(AckEntry{ID: msg.ID, ReceiptHandle: msg.ReceiptHandle})
	return outcome
}

// runHandler wraps the user handler in order to recover from panics.
func (p *processor) runHandler(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic:\n%v", r)
		}
	}()
	return p.handler.Handle(ctx, msg)
}

// sleep waits for d or until ctx is cancelled, reporting whether the
// full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
