package sqsconsumer

import (
	"time"

	"gopkg.in/go-playground/validator.v9"
)

/*
AckStrategy selects how a message that keeps failing is ultimately
dealt with:

# ACK_ON_EXHAUSTION

The handler runs under the configured [BackOff] policy; whether it
eventually succeeds or exhausts every retry, the message is handed to
the ack batcher and deleted from the queue. Exhausted messages are
deleted anyway, trading at-least-once strictness for bounded
redelivery: configure a redrive policy (DLQ) on the queue if those
messages must not be silently lost. This is the default.

# ACK_IMMEDIATE

The handler runs exactly once. Success deletes the message right
away; failure leaves it un-acked so the queue redelivers it once its
lease expires, with the queue's own redrive policy deciding when it
becomes a dead letter.
*/
type AckStrategy string

const (
	AckOnExhaustion AckStrategy = "ACK_ON_EXHAUSTION"
	AckImmediate    AckStrategy = "ACK_IMMEDIATE"
)

// Config default values
const (
	DefaultMaxNumberOfMessages   = 10
	DefaultWaitTimeSeconds       = 20
	DefaultVisibilityTimeout     = 30
	DefaultConcurrency           = 10
	DefaultTemporaryErrorTimeout = 5 * time.Second
	DefaultFlushInterval         = 5 * time.Second
)

/*
Config defines a [Consumer]. QueueURL and Handler are required;
every other field falls back to a default when left at its zero
value.

# Transport

The queue capability to consume from. When nil, an [SQSTransport]
with a default SDK client is built for QueueURL.

# HeartbeatInterval

How often an in-flight message's visibility window is reset to
VisibilityTimeout. Defaults to half the visibility timeout, so a
single missed extension does not lose the lease.

# Concurrency

The maximum number of messages of one received batch processed in
parallel under [AckOnExhaustion].

# MaxRetries and BaseDelay

The [BackOff] retry policy applied to failing handlers under
[AckOnExhaustion].
*/
type Config struct {
	QueueURL  string `validate:"required,url"`
	Handler   Handler
	Transport QueueTransport

	MaxNumberOfMessages int32 `validate:"min=1,max=10"`
	WaitTimeSeconds     int32 `validate:"min=0,max=20"`
	VisibilityTimeout   int32 `validate:"min=1,max=43200"`

	HeartbeatInterval     time.Duration `validate:"min=0"`
	TimeoutTemporaryError time.Duration `validate:"min=0"`
	FlushInterval         time.Duration `validate:"min=0"`

	Strategy    AckStrategy `validate:"oneof=ACK_ON_EXHAUSTION ACK_IMMEDIATE"`
	Concurrency int         `validate:"min=1"`
	MaxRetries  int         `validate:"min=0"`
	BaseDelay   time.Duration

	Callbacks Callbacks
	Logger    Logger
}

func (c Config) withDefaults() Config {
	if c.MaxNumberOfMessages == 0 {
		c.MaxNumberOfMessages = DefaultMaxNumberOfMessages
	}
	if c.WaitTimeSeconds == 0 {
		c.WaitTimeSeconds = DefaultWaitTimeSeconds
	}
	if c.VisibilityTimeout == 0 {
		c.VisibilityTimeout = DefaultVisibilityTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = time.Duration(c.VisibilityTimeout) * time.Second / 2
	}
	if c.TimeoutTemporaryError <= 0 {
		c.TimeoutTemporaryError = DefaultTemporaryErrorTimeout
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.Strategy == "" {
		c.Strategy = AckOnExhaustion
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	return c
}

// Validates ranges after defaults are applied. The Handler field is
// checked by hand because validator cannot dive into interface
// values.
func (c *Config) validate() error {
	if c.Handler == nil {
		return errNilHandler
	}
	v := validator.New()
	return v.Struct(c)
}
