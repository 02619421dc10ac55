package sqsconsumer

import (
	"context"
	"sync"
	"time"
)

// leaseHeartbeat keeps one in-flight message invisible to other
// consumers by periodically extending its visibility window while the
// handler runs. At most one heartbeat exists per message, and it is
// always stopped before the message's ack is issued.
type leaseHeartbeat struct {
	transport  QueueTransport
	msg        Message
	interval   time.Duration
	visibility int32
	callbacks  Callbacks
	logger     Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// startHeartbeat launches the extension loop for msg and returns a
// handle used to stop it deterministically.
func startHeartbeat(ctx context.Context, transport QueueTransport, msg Message, interval time.Duration, visibility int32, callbacks Callbacks, logger Logger) *leaseHeartbeat {
	h := &leaseHeartbeat{
		transport:  transport,
		msg:        msg,
		interval:   interval,
		visibility: visibility,
		callbacks:  callbacks,
		logger:     logger,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go h.run(ctx)
	return h
}

func (h *leaseHeartbeat) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.transport.ExtendLease(ctx, h.msg.ReceiptHandle, h.visibility); err != nil {
				// The extension itself is not retried. Processing
				// continues under whatever lease time remains, at the
				// risk of redelivery if the handler outruns it.
				h.logger.Warn("lease extension failed, heartbeat halted",
					"messageId", h.msg.ID, "error", err)
				h.callbacks.visibilityError(h.msg, err)
				return
			}
			h.logger.Debug("lease extended",
				"messageId", h.msg.ID, "visibilityTimeout", h.visibility)
		}
	}
}

// stop cancels the heartbeat and waits for its loop to exit, so that
// no extension call can race the message's ack. Idempotent.
func (h *leaseHeartbeat) stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	<-h.done
}
