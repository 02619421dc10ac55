package sqsconsumer

import (
	"math"
	"math/rand"
	"time"
)

/*
BackOff defines the retry policy applied to a failing handler under
[AckOnExhaustion]. Each failed attempt is followed by an
exponentially growing, fully jittered wait before the next one:

	delay_n = rand[0, BaseDelay * 2^n)

where n is the zero-based index of the attempt that just failed.
Full jitter keeps a fleet of consumers from retrying in lockstep
after a shared downstream outage.

# MaxRetries

How many additional attempts are made after the first failure,
ranging from 0 (a single attempt, no retries) upward.

# BaseDelay

The upper bound of the wait after the first failed attempt. Each
subsequent failure doubles the bound.

# Example

For the default values MaxRetries=5, BaseDelay=1s:

	n	Bound		Wait
	0	1s  		[0s, 1s)
	1	2s  		[0s, 2s)
	2	4s  		[0s, 4s)
	3	8s  		[0s, 8s)
	4	16s 		[0s, 16s)

Based on `https://github.com/cenkalti/backoff/blob/v4/exponential.go#L149`,
reduced to the full-jitter variant.
*/
type BackOff struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// BackOff default values
const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = time.Second
)

// NewBackOff creates an instance of BackOff using default values.
func NewBackOff() BackOff {
	return BackOff{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// Delay returns the jittered wait to observe after failed attempt n
// (zero-based), a uniformly random duration in [0, BaseDelay * 2^n).
func (b BackOff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	bound := float64(b.BaseDelay) * math.Pow(2, float64(attempt))
	if bound > float64(math.MaxInt64) {
		bound = float64(math.MaxInt64)
	}
	return time.Duration(rand.Float64() * bound)
}
