/*
Package sqsconsumer implements a managed consumer for Amazon SQS,
turning raw long-polling receive calls into a concurrent,
fault-tolerant processing pipeline with automatic visibility
extension, bounded retries, batched acknowledgment and graceful
shutdown.

# Consuming a queue

A [Consumer] long-polls its queue in strictly serialized cycles. Each
cycle receives at most MaxNumberOfMessages messages, dispatches every
one to its own processor and waits for the whole batch to settle
before polling again, so one batch is the natural admission-control
unit. Within a batch, messages are processed concurrently and
independently: one message's failure never aborts its siblings.

While a handler runs, a per-message heartbeat keeps extending the
message's visibility window, so slow handlers do not trigger
redelivery. Once a message settles, its heartbeat is cancelled and
the message is acknowledged according to the configured
[AckStrategy].

# Failure reporting

Every failure is recovered internally and routed to one of the
optional hooks in [Callbacks]; nothing propagates across the
Start/Stop boundary. The single exception is a receive failure that
denotes an immutable misconfiguration (the queue does not exist, the
credentials are rejected): it fires OnConfigurationError and halts
the consumer.

# Shutdown

[Consumer.Stop] is cooperative. It flips the running flag and waits:
the in-flight receive cycle finishes, its processors settle, buffered
acks are flushed, and only then does Stop return. Handlers are never
aborted mid-execution.
*/
package sqsconsumer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Consumer states. Running flips to Draining when Stop is called or
// a fatal receive error occurs; Draining flips to Stopped once the
// in-flight cycle has settled and the ack buffer is flushed.
const (
	stateStopped int32 = iota
	stateRunning
	stateDraining
)

// Consumer drives the receive loop for one queue. Construct with
// [New], then call [Consumer.Start]. A stopped Consumer can be
// started again.
type Consumer struct {
	cfg       Config
	transport QueueTransport
	callbacks Callbacks
	logger    Logger

	// mu serializes Start/Stop transitions; state is additionally
	// atomic so the run loop and processors can read it tear-free.
	mu      sync.Mutex
	state   atomic.Int32
	batcher *ackBatcher
	drained chan struct{}
}

// New validates cfg, fills its defaults and builds a Consumer.
// Configuration problems are the one kind of failure reported
// synchronously; everything later is routed through [Callbacks].
func New(ctx context.Context, cfg Config) (*Consumer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid consumer config: %w", err)
	}

	transport := cfg.Transport
	if transport == nil {
		t, err := NewSQSTransport(ctx, cfg.QueueURL)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	return &Consumer{
		cfg:       cfg,
		transport: transport,
		callbacks: cfg.Callbacks,
		logger:    cfg.Logger,
	}, nil
}

// Start launches the receive loop. Non-blocking; a no-op if the
// consumer is already running or draining.
func (c *Consumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CompareAndSwap(stateStopped, stateRunning) {
		return
	}

	c.drained = make(chan struct{})
	c.batcher = newAckBatcher(c.transport, c.logger, c.cfg.FlushInterval)
	go c.batcher.run(ctx)

	c.logger.Info("consumer started", "queueUrl", c.cfg.QueueURL,
		"strategy", string(c.cfg.Strategy))
	go c.run(ctx)
}

// Stop requests a graceful shutdown and waits for the drain to
// complete: the current receive cycle and every processor it
// dispatched settle, then buffered acks are flushed. Returns early
// with ctx's error if ctx expires first; the drain itself keeps
// going. A no-op returning nil if the consumer is already stopped.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Load() == stateStopped {
		c.mu.Unlock()
		return nil
	}
	c.state.CompareAndSwap(stateRunning, stateDraining)
	drained := c.drained
	c.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the poll loop. The running flag is observed at the top of
// each cycle only; in-flight work is never cancelled.
func (c *Consumer) run(ctx context.Context) {
	defer c.settle()

	proc := &processor{
		transport:         c.transport,
		batcher:           c.batcher,
		handler:           c.cfg.Handler,
		backoff:           BackOff{MaxRetries: c.cfg.MaxRetries, BaseDelay: c.cfg.BaseDelay},
		strategy:          c.cfg.Strategy,
		heartbeatInterval: c.cfg.HeartbeatInterval,
		visibility:        c.cfg.VisibilityTimeout,
		callbacks:         c.callbacks,
		logger:            c.logger,
	}

	for c.state.Load() == stateRunning {
		msgs, err := c.transport.Receive(ctx, ReceiveParams{
			MaxMessages:       c.cfg.MaxNumberOfMessages,
			WaitSeconds:       c.cfg.WaitTimeSeconds,
			VisibilityTimeout: c.cfg.VisibilityTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				c.state.Store(stateDraining)
				return
			}
			c.callbacks.receiveError(err)
			if classifyReceive(err) == CategoryConfiguration {
				c.logger.Error("fatal receive error, stopping consumer", "error", err)
				c.callbacks.configurationError(err)
				c.state.Store(stateDraining)
				return
			}
			c.logger.Warn("receive failed, backing off", "error", err,
				"delay", c.cfg.TimeoutTemporaryError)
			c.callbacks.temporaryError(err)
			sleep(ctx, c.cfg.TimeoutTemporaryError)
			continue
		}
		if ctx.Err() != nil {
			c.state.Store(stateDraining)
			return
		}
		if len(msgs) == 0 {
			continue
		}

		c.dispatch(ctx, proc, msgs)
	}
}

// dispatch fans a batch out to processors under the concurrency
// bound and waits for every one of them to settle.
func (c *Consumer) dispatch(ctx context.Context, proc *processor, msgs []Message) {
	ch := make(chan Outcome, len(msgs))
	sem := make(chan struct{}, c.cfg.Concurrency)
	dispatched := 0

	for _, msg := range msgs {
		if msg.ReceiptHandle == "" {
			// Nothing to extend or ack against.
			c.logger.Warn("message without receipt handle skipped", "messageId", msg.ID)
			continue
		}
		dispatched++
		sem <- struct{}{}
		go func(m Message) {
			defer func() { <-sem }()
			ch <- proc.process(ctx, m)
		}(msg)
	}

	report := cycleReport{BatchSize: len(msgs)}
	for i := 0; i < dispatched; i++ {
		report.observe(<-ch)
	}
	c.logReport(report)
}

// settle performs the draining step: the ack batcher is stopped (and
// force-flushed) and the consumer reaches Stopped.
func (c *Consumer) settle() {
	c.batcher.stop()

	c.mu.Lock()
	drained := c.drained
	c.state.Store(stateStopped)
	c.mu.Unlock()

	c.logger.Info("consumer stopped", "queueUrl", c.cfg.QueueURL)
	close(drained)
}
