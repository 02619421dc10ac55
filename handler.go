package sqsconsumer

import "context"

// Handler processes a single received message. A nil return signals
// that the message can be deleted from the queue; an error signals a
// failed attempt, to be retried or reported according to the
// configured [AckStrategy].
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

// Handle implements Handler.
func (fn HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return fn(ctx, msg)
}
