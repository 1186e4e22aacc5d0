package tokengrip

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventTokenReissued    = "token_reissued"
	auditEventSignatureInvalid = "signature_invalid"
	auditEventTokenMalformed   = "token_malformed"
)

func (g *Grip) emitAudit(event AuditEvent) {
	if g.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	g.audit.Emit(context.Background(), event)
}

// observeFailure records metrics, audit events and logs for a failed call.
func (g *Grip) observeFailure(op string, err error) {
	var e *Error
	if !errors.As(err, &e) {
		return
	}

	switch e.Kind {
	case KindConfiguration:
		g.metrics.Inc(MetricConfigurationError)
		g.logger.Warn("tokengrip: configuration error", "op", op, "error", e.Message)
	case KindMalformedToken:
		g.metrics.Inc(MetricMalformedToken)
		g.emitAudit(AuditEvent{
			EventType: auditEventTokenMalformed,
			Algorithm: e.Algorithm,
			Error:     e.Message,
		})
	case KindInvalidSignature:
		g.metrics.Inc(MetricInvalidSignature)
		g.emitAudit(AuditEvent{
			EventType: auditEventSignatureInvalid,
			Error:     e.Message,
		})
	}
}
