package audit

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindIssuance     Kind = "issuance"
	KindRedemption   Kind = "redemption"
	KindTransfer     Kind = "transfer"
	KindCompensation Kind = "compensation"
)

// Entry is one issuance or redemption decision, including rejections.
// The sink is append-only; storage and query tooling live elsewhere.
type Entry struct {
	Kind        Kind      `json:"kind"`
	TicketID    string    `json:"ticket_id,omitempty"`
	EventID     string    `json:"event_id,omitempty"`
	ActorUserID string    `json:"actor_user_id,omitempty"`
	Outcome     string    `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
	At          time.Time `json:"at"`
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// LogSink writes audit entries to the structured log. It is the fallback
// sink when no broker is configured and always succeeds.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, e Entry) error {
	s.logger.WithFields(log.Fields{
		"kind":      string(e.Kind),
		"ticket_id": e.TicketID,
		"event_id":  e.EventID,
		"actor":     e.ActorUserID,
		"outcome":   e.Outcome,
		"detail":    e.Detail,
		"at":        e.At,
	}).Info("audit")
	return nil
}
