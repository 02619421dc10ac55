package sqsconsumer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ReceiveParams carries the per-call knobs of a receive operation.
type ReceiveParams struct {
	MaxMessages       int32
	WaitSeconds       int32
	VisibilityTimeout int32
}

/*
QueueTransport is the capability the consumer requires from the
underlying queue. The shipped implementation is [SQSTransport]; tests
or alternative backends can substitute their own.

All errors returned by a transport should be tagged as
[TransportError] so that classification works without inspecting
backend-specific shapes.
*/
type QueueTransport interface {
	// Receive long-polls the queue for up to params.WaitSeconds and
	// returns at most params.MaxMessages messages.
	Receive(ctx context.Context, params ReceiveParams) ([]Message, error)
	// ExtendLease resets the visibility window of the delivery
	// identified by receiptHandle to visibilityTimeout seconds.
	ExtendLease(ctx context.Context, receiptHandle string, visibilityTimeout int32) error
	// Delete removes a single delivery from the queue.
	Delete(ctx context.Context, receiptHandle string) error
	// BatchDelete removes up to 10 deliveries in one call. Entries the
	// service rejected individually are returned; err is non-nil only
	// when the call as a whole failed.
	BatchDelete(ctx context.Context, entries []AckEntry) (failed []AckEntry, err error)
}

// Interface to enable mocking of a SQSClient, usually for testing purposes.
type SQSClient interface {
	ReceiveMessage(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	ChangeMessageVisibility(context.Context, *sqs.ChangeMessageVisibilityInput, ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
	DeleteMessage(context.Context, *sqs.DeleteMessageInput, ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	DeleteMessageBatch(context.Context, *sqs.DeleteMessageBatchInput, ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// SQSTransport implements QueueTransport over a single SQS queue.
type SQSTransport struct {
	Client   SQSClient
	QueueURL string
}

/*
NewSQSTransport creates an [SQSTransport] for the given queue URL with
an [sqs.Client] built from the default configuration chain, as per the
following:

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SQSTransport{Client: sqs.NewFromConfig(cfg), QueueURL: queueURL}, nil
*/
func NewSQSTransport(ctx context.Context, queueURL string) (*SQSTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &SQSTransport{
		Client:   sqs.NewFromConfig(cfg),
		QueueURL: queueURL,
	}, nil
}

// Receive implements QueueTransport. System and message attributes
// are requested in full so that handlers can inspect delivery counts
// and user metadata.
func (t *SQSTransport) Receive(ctx context.Context, params ReceiveParams) ([]Message, error) {
	out, err := t.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              &t.QueueURL,
		MaxNumberOfMessages:   params.MaxMessages,
		WaitTimeSeconds:       params.WaitSeconds,
		VisibilityTimeout:     params.VisibilityTimeout,
		AttributeNames:        []types.QueueAttributeName{types.QueueAttributeNameAll},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, wrapTransportErr(opReceive, err)
	}

	msgs := make([]Message, len(out.Messages))
	for i, m := range out.Messages {
		msgs[i] = messageFromSQS(m)
	}
	return msgs, nil
}

// ExtendLease implements QueueTransport.
func (t *SQSTransport) ExtendLease(ctx context.Context, receiptHandle string, visibilityTimeout int32) error {
	_, err := t.Client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          &t.QueueURL,
		ReceiptHandle:     &receiptHandle,
		VisibilityTimeout: visibilityTimeout,
	})
	return wrapTransportErr(opExtendLease, err)
}

// Delete implements QueueTransport.
func (t *SQSTransport) Delete(ctx context.Context, receiptHandle string) error {
	_, err := t.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &t.QueueURL,
		ReceiptHandle: &receiptHandle,
	})
	return wrapTransportErr(opDelete, err)
}

// BatchDelete implements QueueTransport.
func (t *SQSTransport) BatchDelete(ctx context.Context, entries []AckEntry) ([]AckEntry, error) {
	batch := make([]types.DeleteMessageBatchRequestEntry, len(entries))
	for i, e := range entries {
		batch[i] = types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(e.ID),
			ReceiptHandle: aws.String(e.ReceiptHandle),
		}
	}

	out, err := t.Client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: &t.QueueURL,
		Entries:  batch,
	})
	if err != nil {
		return nil, wrapTransportErr(opBatchDelete, err)
	}
	if len(out.Failed) == 0 {
		return nil, nil
	}

	byID := make(map[string]AckEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	failed := make([]AckEntry, 0, len(out.Failed))
	for _, f := range out.Failed {
		if e, ok := byID[aws.ToString(f.Id)]; ok {
			failed = append(failed, e)
		}
	}
	return failed, nil
}
