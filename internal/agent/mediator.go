package agent

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/authsock/proxy/internal/audit"
	"github.com/authsock/proxy/internal/filter"
	"github.com/authsock/proxy/internal/identity"
	"github.com/authsock/proxy/internal/metrics"
	"github.com/authsock/proxy/internal/protocol"
)

// Mediator is the per-endpoint protocol state machine: it owns the rule
// set, the upstream connector, and the allow-set, and enforces the two
// invariants (listing correctness, sign gating) for every client session.
type Mediator struct {
	name     string
	rules    filter.RuleSet
	upstream *Upstream
	allow    *AllowSet
	audit    audit.Sink
	metrics  *metrics.Metrics
}

// NewMediator builds a mediator for one endpoint. sink and m may be nil, in
// which case audit events are dropped and metrics are not recorded.
func NewMediator(name string, rules filter.RuleSet, upstream *Upstream, sink audit.Sink, m *metrics.Metrics) *Mediator {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Mediator{name: name, rules: rules, upstream: upstream, allow: NewAllowSet(), audit: sink, metrics: m}
}

// AllowSet exposes the mediator's allow-set, e.g. for metrics or tests.
func (m *Mediator) AllowSet() *AllowSet { return m.allow }

// HandleClient runs the read-dispatch-write loop for one accepted client
// connection until the client disconnects or an unrecoverable I/O error
// occurs. It never panics on malformed input.
func (m *Mediator) HandleClient(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	sessionID := uuid.New().String()

	if m.metrics != nil {
		m.metrics.SessionsAccepted.WithLabelValues(m.name).Inc()
	}
	m.audit.Emit(audit.Event{Kind: audit.KindClientConnected, Endpoint: m.name, SessionID: sessionID})
	defer m.audit.Emit(audit.Event{Kind: audit.KindClientDisconnected, Endpoint: m.name, SessionID: sessionID})

	for {
		req, err := protocol.ReadMessage(conn)
		if err != nil {
			slog.Warn("client frame error, terminating session", "endpoint", m.name, "session_id", sessionID, "error", err)
			m.audit.Emit(audit.Event{Kind: audit.KindError, Endpoint: m.name, SessionID: sessionID, Message: err.Error()})
			return
		}
		if req == nil {
			return
		}

		resp, abort := m.dispatch(ctx, req, sessionID)
		if abort {
			return
		}

		if err := protocol.WriteMessage(conn, resp); err != nil {
			slog.Warn("failed writing response to client", "endpoint", m.name, "session_id", sessionID, "error", err)
			return
		}
	}
}

// dispatch routes req by message type. The second return value is true
// when the session must be aborted outright (a pass-through upstream
// failure, which cannot be safely turned into a synthetic response).
func (m *Mediator) dispatch(ctx context.Context, req *protocol.Message, sessionID string) (*protocol.Message, bool) {
	switch req.Type {
	case protocol.MessageRequestIdentities:
		return m.handleRequestIdentities(ctx, req, sessionID), false
	case protocol.MessageSignRequest:
		return m.handleSignRequest(ctx, req, sessionID), false
	default:
		resp, err := m.sendReceiveTimed(ctx, req)
		if err != nil {
			slog.Warn("pass-through upstream round trip failed, aborting session",
				"endpoint", m.name, "session_id", sessionID, "type", req.Type, "error", err)
			m.audit.Emit(audit.Event{Kind: audit.KindError, Endpoint: m.name, SessionID: sessionID, Message: err.Error()})
			return nil, true
		}
		return resp, false
	}
}

// sendReceiveTimed wraps Upstream.SendReceive with upstream-latency metrics.
func (m *Mediator) sendReceiveTimed(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	start := time.Now()
	resp, err := m.upstream.SendReceive(ctx, req)
	if m.metrics != nil {
		m.metrics.ObserveUpstreamRoundTrip(m.name, start)
	}
	return resp, err
}

func (m *Mediator) handleRequestIdentities(ctx context.Context, req *protocol.Message, sessionID string) *protocol.Message {
	raw, err := m.sendReceiveTimed(ctx, req)
	if err != nil {
		slog.Warn("upstream round trip failed for request-identities", "endpoint", m.name, "session_id", sessionID, "error", err)
		return protocol.Failure()
	}

	if raw.Type != protocol.MessageIdentitiesAnswer {
		slog.Warn("unexpected response type for request-identities", "endpoint", m.name, "session_id", sessionID, "type", raw.Type)
		return raw
	}

	rawIdentities, err := protocol.ParseIdentitiesAnswer(raw)
	if err != nil {
		slog.Warn("failed to parse identities from upstream", "endpoint", m.name, "session_id", sessionID, "error", err)
		return protocol.Failure()
	}

	identities := make([]identity.Identity, len(rawIdentities))
	for i, ri := range rawIdentities {
		identities[i] = identity.New(ri.Blob, ri.Comment)
	}

	filtered := m.rules.FilterIdentities(identities)

	slog.Info("filtered identities", "endpoint", m.name, "session_id", sessionID, "original", len(identities), "filtered", len(filtered))
	m.audit.Emit(audit.Event{
		Kind: audit.KindIdentitiesReturned, Endpoint: m.name, SessionID: sessionID,
		Original: len(identities), Filtered: len(filtered),
	})
	if m.metrics != nil {
		m.metrics.IdentitiesTotal.WithLabelValues(m.name, "original").Add(float64(len(identities)))
		m.metrics.IdentitiesTotal.WithLabelValues(m.name, "filtered").Add(float64(len(filtered)))
	}

	m.allow.Replace(filtered)

	out := make([]protocol.RawIdentity, len(filtered))
	for i, id := range filtered {
		out[i] = protocol.RawIdentity{Blob: id.Blob, Comment: id.Comment}
	}
	return protocol.BuildIdentitiesAnswer(out)
}

func (m *Mediator) handleSignRequest(ctx context.Context, req *protocol.Message, sessionID string) *protocol.Message {
	blob, err := protocol.ParseSignRequestKey(req)
	if err != nil {
		slog.Warn("failed to parse sign-request", "endpoint", m.name, "session_id", sessionID, "error", err)
		return protocol.Failure()
	}

	if !m.allow.Contains(blob) {
		synthetic := identity.New(blob, "")
		if !m.rules.Matches(synthetic) {
			slog.Info("sign request denied: key not allowed", "endpoint", m.name, "session_id", sessionID, "fingerprint", synthetic.Fingerprint())
			m.recordSignDecision(sessionID, false, synthetic.Fingerprint())
			return protocol.Failure()
		}
	}

	m.recordSignDecision(sessionID, true, identity.New(blob, "").Fingerprint())

	resp, err := m.sendReceiveTimed(ctx, req)
	if err != nil {
		slog.Warn("upstream round trip failed for sign-request", "endpoint", m.name, "session_id", sessionID, "error", err)
		return protocol.Failure()
	}
	return resp
}

func (m *Mediator) recordSignDecision(sessionID string, allowed bool, fingerprint string) {
	m.audit.Emit(audit.Event{
		Kind: audit.KindSignDecided, Endpoint: m.name, SessionID: sessionID,
		Allowed: allowed, Fingerprint: fingerprint,
	})
	if m.metrics == nil {
		return
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.metrics.SignDecisions.WithLabelValues(m.name, decision).Inc()
}
