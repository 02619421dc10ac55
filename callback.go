package sqsconsumer

/*
Callbacks holds the optional hooks invoked at each failure boundary.
Every field may be left nil, in which case the corresponding event is
a no-op. Each hook fires exactly once per event, from the goroutine
that observed the failure.

# OnReceiveError

Fires for every failed receive call, regardless of how the failure is
classified.

# OnVisibilityError

Fires when a message's lease extension fails. That message's
heartbeat stops, but its handler keeps running.

# OnProcessingError

Fires when a handler reaches a terminal failure for a message: after
retries are exhausted under [AckOnExhaustion], or after the single
attempt under [AckImmediate].

# OnConfigurationError

Fires when a receive failure is classified as an immutable
misconfiguration (missing queue, invalid credentials). The consumer
drains and stops right after.

# OnTemporaryError

Fires when a receive failure is classified as transient, before the
consumer waits out its fixed delay and polls again.
*/
type Callbacks struct {
	OnReceiveError       func(err error)
	OnVisibilityError    func(msg Message, err error)
	OnProcessingError    func(msg Message, err error)
	OnConfigurationError func(err error)
	OnTemporaryError     func(err error)
}

func (c Callbacks) receiveError(err error) {
	if c.OnReceiveError != nil {
		c.OnReceiveError(err)
	}
}

func (c Callbacks) visibilityError(msg Message, err error) {
	if c.OnVisibilityError != nil {
		c.OnVisibilityError(msg, err)
	}
}

func (c Callbacks) processingError(msg Message, err error) {
	if c.OnProcessingError != nil {
		c.OnProcessingError(msg, err)
	}
}

func (c Callbacks) configurationError(err error) {
	if c.OnConfigurationError != nil {
		c.OnConfigurationError(err)
	}
}

func (c Callbacks) temporaryError(err error) {
	if c.OnTemporaryError != nil {
		c.OnTemporaryError(err)
	}
}
