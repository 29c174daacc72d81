package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/sidrxo/burner-ticketing/internal/audit"
	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
	"github.com/sidrxo/burner-ticketing/internal/pkg/metrics"
)

// RefundGateway is the slice of the payment gateway compensation needs.
type RefundGateway interface {
	RefundPayment(ctx context.Context, reference string, reason domain.RefundReason) error
}

// CompensationManager issues the reversing refund when issuance cannot
// complete after money has already moved. Best-effort: a refund that fails
// is an operational signal for reconciliation, never a change to the error
// the purchaser already received.
type CompensationManager struct {
	gateway RefundGateway
	sink    audit.Sink
	clock   clock.Clock
	logger  *log.Logger
}

func NewCompensationManager(gateway RefundGateway, sink audit.Sink, clk clock.Clock, logger *log.Logger) *CompensationManager {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &CompensationManager{
		gateway: gateway,
		sink:    sink,
		clock:   clk,
		logger:  logger,
	}
}

// Refund attempts the compensating refund. Refunding an already-refunded
// reference is a no-op at the gateway, so retried failure paths stay safe.
func (m *CompensationManager) Refund(ctx context.Context, reference string, reason domain.RefundReason) {
	metrics.CompensationAttempts.WithLabelValues(string(reason)).Inc()

	outcome := "refunded"
	if err := m.gateway.RefundPayment(ctx, reference, reason); err != nil {
		metrics.CompensationFailures.Inc()
		outcome = "refund_failed"
		m.logger.WithFields(log.Fields{
			"payment_reference": reference,
			"reason":            string(reason),
		}).WithError(err).Error("compensation_failure")
	}

	m.record(ctx, audit.Entry{
		Kind:    audit.KindCompensation,
		Outcome: outcome,
		Detail:  "payment_reference=" + reference + " reason=" + string(reason),
		At:      m.clock.Now(),
	})
}

func (m *CompensationManager) record(ctx context.Context, e audit.Entry) {
	if m.sink == nil {
		return
	}
	if err := m.sink.Record(ctx, e); err != nil {
		m.logger.WithError(err).Warn("audit sink record failed")
	}
}
