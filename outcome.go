package sqsconsumer

/*
Status defines the three terminal states a message can reach once its
processor settles. These states are:

# SUCCESS

The handler completed without error and the message has been (or is
about to be) deleted from the queue.

# FAILURE

The handler failed and the message was left un-acked. Its lease will
expire and the queue will redeliver it. Only produced under
[AckImmediate].

# EXHAUSTED

The handler failed on every attempt allowed by the retry policy. The
message is still deleted from the queue to bound redelivery storms,
so a redrive policy (DLQ) should be configured on the queue itself if
these messages must not be lost. Only produced under
[AckOnExhaustion].
*/
type Status string

const (
	Success   Status = "SUCCESS"
	Failure   Status = "FAILURE"
	Exhausted Status = "EXHAUSTED"
)

// Outcome aggregates the terminal processing state of a single
// message, as settled by its processor.
type Outcome struct {
	Message  Message
	Status   Status
	Attempts int
	Err      error
}
