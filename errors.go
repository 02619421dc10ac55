package sqsconsumer

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

/*
Category classifies every failure the consumer can encounter, for
routing to the matching callback:

  - RECEIVING: a receive call failed.
  - VISIBILITY_EXTENSION: a lease extension failed. Non-fatal; the
    affected message's heartbeat stops and processing continues under
    whatever lease time remains.
  - PROCESSING: the handler failed for a message.
  - CONFIGURATION: the queue does not exist, the credentials are
    invalid, or a similarly immutable condition. The only category
    that halts the entire consumer.
  - TEMPORARY: a transient failure, retried after a fixed delay while
    the consumer keeps running.
*/
type Category string

const (
	CategoryReceiving     Category = "RECEIVING"
	CategoryVisibility    Category = "VISIBILITY_EXTENSION"
	CategoryProcessing    Category = "PROCESSING"
	CategoryConfiguration Category = "CONFIGURATION"
	CategoryTemporary     Category = "TEMPORARY"
)

var errNilHandler = errors.New("config: Handler is required")

// Operation names used to tag transport errors.
const (
	opReceive     = "ReceiveMessage"
	opExtendLease = "ChangeMessageVisibility"
	opDelete      = "DeleteMessage"
	opBatchDelete = "DeleteMessageBatch"
)

// TransportError tags a failed queue operation with the operation
// name and the machine-readable error code reported by the service.
// It is produced exactly once, at the transport boundary, so that
// classification never needs to re-inspect SDK error shapes at the
// call sites.
type TransportError struct {
	Op   string
	Code string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%v: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%v (%v): %v", e.Op, e.Code, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func wrapTransportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae smithy.APIError
	code := ""
	if errors.As(err, &ae) {
		code = ae.ErrorCode()
	}
	return &TransportError{Op: op, Code: code, Err: err}
}

// Error codes that denote an immutable misconfiguration rather than a
// transient condition. `AWS.SimpleQueueService.NonExistentQueue` is
// what SQS actually returns for a missing queue; `QueueDoesNotExist`
// is the modeled exception name in newer SDK revisions.
var configurationCodes = map[string]struct{}{
	"AWS.SimpleQueueService.NonExistentQueue": {},
	"QueueDoesNotExist":                       {},
	"QueueDoesNotExistException":              {},
	"InvalidAddress":                          {},
	"AccessDenied":                            {},
	"AccessDeniedException":                   {},
	"InvalidClientTokenId":                    {},
	"UnrecognizedClientException":             {},
}

// classifyReceive maps a failed receive call to either the fatal
// CONFIGURATION category or TEMPORARY. Anything that is not provably
// a misconfiguration is treated as transient and retried.
func classifyReceive(err error) Category {
	var te *TransportError
	if errors.As(err, &te) {
		if _, ok := configurationCodes[te.Code]; ok {
			return CategoryConfiguration
		}
	}
	return CategoryTemporary
}
