package sqsconsumer

import "testing"

//ReceiveCount

func TestReceiveCount_ParsesAttribute(t *testing.T) {
	msg := Message{Attributes: map[string]string{"ApproximateReceiveCount": "4"}}

	if got := msg.ReceiveCount(); got != 4 {
		t.Errorf("receive count: %v", got)
	}
}

func TestReceiveCount_MissingOrBrokenAttributeIsZero(t *testing.T) {
	cases := []Message{
		{},
		{Attributes: map[string]string{}},
		{Attributes: map[string]string{"ApproximateReceiveCount": "many"}},
		{Attributes: map[string]string{"ApproximateReceiveCount": "-2"}},
	}

	for i, msg := range cases {
		if got := msg.ReceiveCount(); got != 0 {
			t.Errorf("case %v: receive count %v, want 0", i, got)
		}
	}
}
