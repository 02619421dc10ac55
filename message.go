package sqsconsumer

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

/*
Message represents a single message received from the queue.

# ID

The unique identifier assigned by SQS when the message was sent.

# ReceiptHandle

The lease token for this delivery of the message. Every interaction
with the queue regarding this message (extending its visibility,
deleting it) must present this handle. A new handle is issued on
every redelivery, and only the most recent one is valid.

# Body and Attributes

The message payload and its system attributes (such as
`ApproximateReceiveCount`), plus any user defined message attributes,
delivered as-is from the SQS API.
*/
type Message struct {
	ID                string
	ReceiptHandle     string
	Body              string
	Attributes        map[string]string
	MessageAttributes map[string]types.MessageAttributeValue
}

// ReceiveCount returns how many times this message has been delivered,
// as reported by the `ApproximateReceiveCount` attribute, or 0 if the
// attribute is absent or unparsable.
func (m Message) ReceiveCount() int {
	att, ok := m.Attributes["ApproximateReceiveCount"]
	if !ok {
		return 0
	}
	d, err := strconv.Atoi(att)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// AckEntry identifies a processed message pending deletion from the
// queue. Entries are owned exclusively by the ack batcher until their
// batch delete succeeds.
type AckEntry struct {
	ID            string
	ReceiptHandle string
}

func messageFromSQS(m types.Message) Message {
	return Message{
		ID:                aws.ToString(m.MessageId),
		ReceiptHandle:     aws.ToString(m.ReceiptHandle),
		Body:              aws.ToString(m.Body),
		Attributes:        m.Attributes,
		MessageAttributes: m.MessageAttributes,
	}
}
