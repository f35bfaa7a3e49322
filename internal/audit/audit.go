// Package audit defines the structured audit event stream the core emits:
// listener lifecycle, client lifecycle, listing/signing decisions, and
// errors. The core only produces events; it never decides how they are
// persisted — that is the host's job, via whichever Sink it wires in.
package audit

import "time"

// Kind enumerates the audit event kinds the core is specified to emit.
type Kind string

const (
	KindListenerBound      Kind = "listener_bound"
	KindClientConnected    Kind = "client_connected"
	KindClientDisconnected Kind = "client_disconnected"
	KindIdentitiesReturned Kind = "identities_returned"
	KindSignDecided        Kind = "sign_decided"
	KindError              Kind = "error"
)

// Event is one audit record. Fields not relevant to a given Kind are left
// at their zero value.
type Event struct {
	Kind        Kind
	Endpoint    string
	SessionID   string // correlates every event emitted during one client session
	Time        time.Time
	Original    int    // identities_returned: count before filtering
	Filtered    int    // identities_returned: count after filtering
	Allowed     bool   // sign_decided: whether the sign-request was forwarded
	Fingerprint string // sign_decided: the blob's fingerprint
	Message     string // error, and free-form detail for any kind
}

// Sink receives audit events. The core emits one event per notable
// transition; a Sink must not block the mediator for long since Emit is
// called from the same goroutine handling the client session.
type Sink interface {
	Emit(Event)
}

// NopSink discards every event. Used when no audit sink is configured.
type NopSink struct{}

func (NopSink) Emit(Event) {}
