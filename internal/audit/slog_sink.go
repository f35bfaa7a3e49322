package audit

import "log/slog"

// SlogSink emits every event as a structured log/slog record, the way the
// rest of the proxy logs. This is the default sink wired by the
// composition root when no richer persistence is configured.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink builds a SlogSink writing through logger, or the default
// logger if logger is nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(e Event) {
	attrs := []any{"endpoint", e.Endpoint, "session_id", e.SessionID}
	switch e.Kind {
	case KindIdentitiesReturned:
		attrs = append(attrs, "original", e.Original, "filtered", e.Filtered)
	case KindSignDecided:
		attrs = append(attrs, "allowed", e.Allowed, "fingerprint", e.Fingerprint)
	case KindError:
		attrs = append(attrs, "message", e.Message)
	}
	if e.Message != "" && e.Kind != KindError {
		attrs = append(attrs, "message", e.Message)
	}
	s.logger.Info(string(e.Kind), attrs...)
}
