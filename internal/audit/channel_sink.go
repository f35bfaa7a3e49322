package audit

// ChannelSink publishes every event onto a buffered channel. Intended for
// tests and for hosts that want to consume the audit stream themselves
// (e.g. to write it to a dedicated audit log file) rather than go through
// structured logging.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink builds a ChannelSink with the given buffer size. A full
// channel causes Emit to drop the event rather than block the mediator —
// the audit stream is best-effort, never a backpressure mechanism for the
// protocol proxy's hot path.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (c *ChannelSink) Emit(e Event) {
	select {
	case c.events <- e:
	default:
	}
}

// Events exposes the receive side of the channel for a consumer goroutine.
func (c *ChannelSink) Events() <-chan Event { return c.events }
