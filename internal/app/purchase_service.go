package app

import (
	"context"
	"errors"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/audit"
	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
	"github.com/sidrxo/burner-ticketing/internal/pkg/metrics"
)

// PaymentGateway is the slice of the gateway purchase flows need.
type PaymentGateway interface {
	GetPayment(ctx context.Context, reference string) (domain.Payment, error)
	CreateIntent(ctx context.Context, eventID, userID string) (domain.PaymentIntent, error)
}

type IssuanceRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// FindTicketByPaymentReference returns nil when no ticket exists for the reference.
	FindTicketByPaymentReference(ctx context.Context, reference string) (*domain.Ticket, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// ReserveCapacity atomically increments tickets_sold iff the event is
	// active and below capacity. Zero rows affected is classified as
	// ErrEventNotFound, ErrEventCancelled, or ErrCapacityExceeded.
	ReserveCapacity(ctx context.Context, eventID string) error
	CreateTicket(ctx context.Context, t domain.Ticket) error
}

// PurchaseService turns a succeeded payment into exactly one confirmed
// ticket under the capacity invariant, refunding when it cannot.
type PurchaseService struct {
	repo    IssuanceRepository
	gateway PaymentGateway
	comp    *CompensationManager
	sink    audit.Sink
	clock   clock.Clock
}

func NewPurchaseService(repo IssuanceRepository, gw PaymentGateway, comp *CompensationManager, sink audit.Sink, clk clock.Clock) *PurchaseService {
	return &PurchaseService{
		repo:    repo,
		gateway: gw,
		comp:    comp,
		sink:    sink,
		clock:   clk,
	}
}

// issuanceTimeout bounds the detached post-verification chain so a wedged
// store cannot hold the goroutine forever.
const issuanceTimeout = 30 * time.Second

type ConfirmPurchaseInput struct {
	PaymentReference string
	CallerUserID     string
}

type ConfirmPurchaseResult struct {
	Ticket domain.Ticket
	// Created is false on idempotent replays that resolved to an existing ticket.
	Created bool
}

// ConfirmPurchase runs the issuance chain: verify the payment with the
// gateway, reserve one capacity slot, and insert the ticket, all such that
// duplicate webhooks or client retries resolve to the same ticket. Failure
// after verification triggers a compensating refund because money has
// already moved.
func (s *PurchaseService) ConfirmPurchase(ctx context.Context, in ConfirmPurchaseInput) (ConfirmPurchaseResult, error) {
	payment, err := s.gateway.GetPayment(ctx, in.PaymentReference)
	if err != nil {
		return ConfirmPurchaseResult{}, err
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		return ConfirmPurchaseResult{}, domain.ErrPaymentNotVerified
	}
	if payment.UserID == "" || payment.UserID != in.CallerUserID {
		// A replayed reference from another account must not mint a ticket.
		return ConfirmPurchaseResult{}, domain.ErrPaymentOwnerMismatch
	}

	// Money has moved. From here the chain runs to completion even if the
	// caller disconnects: a cancelled request must never strand a captured
	// payment with neither a ticket nor a refund.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), issuanceTimeout)
	defer cancel()

	now := s.clock.Now()
	var result ConfirmPurchaseResult

	txErr := retryTransient(opCtx, func() error {
		result = ConfirmPurchaseResult{}
		return s.repo.WithTx(opCtx, func(txCtx context.Context) error {
			existing, err := s.repo.FindTicketByPaymentReference(txCtx, in.PaymentReference)
			if err != nil {
				return err
			}
			if existing != nil {
				result = ConfirmPurchaseResult{Ticket: *existing}
				return nil
			}

			if err := s.repo.ReserveCapacity(txCtx, payment.EventID); err != nil {
				return err
			}

			ticket := domain.Ticket{
				ID:               newID(),
				EventID:          payment.EventID,
				OwnerUserID:      payment.UserID,
				TicketNumber:     newTicketNumber(),
				PaymentReference: in.PaymentReference,
				Status:           domain.TicketStatusConfirmed,
				PurchasedAt:      now,
			}
			if err := s.repo.CreateTicket(txCtx, ticket); err != nil {
				return err
			}

			result = ConfirmPurchaseResult{Ticket: ticket, Created: true}
			return nil
		})
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrDuplicatePaymentRef) {
			// Lost the insert race to a concurrent confirmation for the
			// same payment. The reservation rolled back with the tx, so
			// re-read the winner and return it unchanged.
			winner, err := s.repo.FindTicketByPaymentReference(opCtx, in.PaymentReference)
			if err != nil {
				return ConfirmPurchaseResult{}, err
			}
			if winner == nil {
				return ConfirmPurchaseResult{}, domain.ErrStoreUnavailable
			}
			s.audit(opCtx, *winner, "replayed", "")
			return ConfirmPurchaseResult{Ticket: *winner}, nil
		}

		if reason, compensate := refundReasonFor(txErr); compensate {
			metrics.IssuanceFailures.WithLabelValues(string(reason)).Inc()
			s.comp.Refund(opCtx, in.PaymentReference, reason)
		}
		return ConfirmPurchaseResult{}, txErr
	}

	if result.Created {
		metrics.TicketsIssued.Inc()
		s.audit(opCtx, result.Ticket, "issued", "")
	} else {
		s.audit(opCtx, result.Ticket, "replayed", "")
	}
	return result, nil
}

// CreatePaymentIntent delegates intent creation to the gateway after a
// cheap availability check. The check is advisory: the authoritative
// capacity decision happens at confirmation time.
func (s *PurchaseService) CreatePaymentIntent(ctx context.Context, eventID, userID string) (domain.PaymentIntent, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	if event.Status == domain.EventStatusCancelled {
		return domain.PaymentIntent{}, domain.ErrEventCancelled
	}
	if event.SoldOut() {
		return domain.PaymentIntent{}, domain.ErrCapacityExceeded
	}
	return s.gateway.CreateIntent(ctx, eventID, userID)
}

// refundReasonFor maps issuance failures onto the compensation trigger
// set. Failures before payment verification never reach here.
func refundReasonFor(err error) (domain.RefundReason, bool) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return domain.RefundReasonEventNotFound, true
	case errors.Is(err, domain.ErrEventCancelled):
		return domain.RefundReasonEventCancelled, true
	case errors.Is(err, domain.ErrCapacityExceeded):
		return domain.RefundReasonCapacityExceeded, true
	case errors.Is(err, domain.ErrDuplicateTicketHolder):
		return domain.RefundReasonDuplicateHolder, true
	case errors.Is(err, domain.ErrStoreUnavailable):
		return domain.RefundReasonStoreFailure, true
	}
	return "", false
}

func (s *PurchaseService) audit(ctx context.Context, t domain.Ticket, outcome, detail string) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Record(ctx, audit.Entry{
		Kind:        audit.KindIssuance,
		TicketID:    t.ID,
		EventID:     t.EventID,
		ActorUserID: t.OwnerUserID,
		Outcome:     outcome,
		Detail:      detail,
		At:          s.clock.Now(),
	})
}
