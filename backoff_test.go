package sqsconsumer

import (
	"math"
	"testing"
	"time"
)

//Delay

func FuzzDelay_RespectsUpperBound(f *testing.F) {
	testCases := []uint8{0, 1, 2, 5, 10}
	for _, tc := range testCases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, v uint8) {
		attempt := int(v % 30)
		backOff := NewBackOff()

		d := backOff.Delay(attempt)

		bound := time.Duration(float64(backOff.BaseDelay) * math.Pow(2, float64(attempt)))
		if d < 0 {
			t.Errorf("negative delay for attempt %v: %v", attempt, d)
		}
		if d >= bound {
			t.Errorf("delay ceiling of %v was breached for attempt %v: %v", bound, attempt, d)
		}
	})
}

func TestDelay_FirstAttemptBoundedByBaseDelay(t *testing.T) {
	backOff := BackOff{MaxRetries: 5, BaseDelay: 100 * time.Millisecond}

	for i := 0; i < 100; i++ {
		if d := backOff.Delay(0); d >= 100*time.Millisecond {
			t.Fatalf("delay for attempt 0 breached BaseDelay: %v", d)
		}
	}
}

func TestDelay_NegativeAttemptClampedToZero(t *testing.T) {
	backOff := NewBackOff()

	if d := backOff.Delay(-3); d >= backOff.BaseDelay {
		t.Errorf("negative attempt not clamped, got delay %v", d)
	}
}

//NewBackOff

func TestNewBackOff_UsesDefaults(t *testing.T) {
	backOff := NewBackOff()

	if backOff.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries default mismatch: %v", backOff.MaxRetries)
	}
	if backOff.BaseDelay != DefaultBaseDelay {
		t.Errorf("BaseDelay default mismatch: %v", backOff.BaseDelay)
	}
}
