package app

import (
	"context"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/audit"
	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
	"github.com/sidrxo/burner-ticketing/internal/pkg/metrics"
)

type TransferRepository interface {
	// Lookups return nil when no ticket matches.
	FindTicketByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindConfirmedTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	// ReassignOwner conditionally moves ownership while the ticket is still
	// confirmed and still held by fromUserID. False means zero rows were
	// affected. A unique violation on the one-confirmed-ticket index maps
	// to ErrDuplicateTicketHolder.
	ReassignOwner(ctx context.Context, ticketID, fromUserID, toUserID string, at time.Time) (bool, error)
}

// Directory resolves transfer recipients through the identity provider.
type Directory interface {
	LookupUserByEmail(ctx context.Context, email string) (string, error)
}

// TransferService reassigns ticket ownership while the ticket is still
// confirmed. The conditional write means a transfer racing a redemption
// either fully wins or fully fails; there is no partial state.
type TransferService struct {
	repo      TransferRepository
	directory Directory
	sink      audit.Sink
	clock     clock.Clock
}

func NewTransferService(repo TransferRepository, directory Directory, sink audit.Sink, clk clock.Clock) *TransferService {
	return &TransferService{
		repo:      repo,
		directory: directory,
		sink:      sink,
		clock:     clk,
	}
}

type TransferInput struct {
	TicketID       string
	FromUserID     string
	RecipientEmail string
}

func (s *TransferService) Transfer(ctx context.Context, in TransferInput) (domain.Ticket, error) {
	ticket, err := s.repo.FindTicketByID(ctx, in.TicketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if ticket == nil {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if ticket.OwnerUserID != in.FromUserID {
		return domain.Ticket{}, domain.ErrNotTicketOwner
	}
	if ticket.Status != domain.TicketStatusConfirmed {
		return domain.Ticket{}, domain.ErrTicketNotTransferable
	}

	toUserID, err := s.directory.LookupUserByEmail(ctx, in.RecipientEmail)
	if err != nil {
		return domain.Ticket{}, err
	}
	if toUserID == in.FromUserID {
		return domain.Ticket{}, domain.ErrSelfTransfer
	}

	// Pre-check keeps the common failure cheap and well-reported; the
	// partial unique index backstops the invariant under races.
	held, err := s.repo.FindConfirmedTicket(ctx, ticket.EventID, toUserID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if held != nil {
		return s.fail(ctx, *ticket, in.FromUserID, domain.ErrDuplicateTicketHolder)
	}

	now := s.clock.Now()
	var moved bool
	err = retryTransient(ctx, func() error {
		var err error
		moved, err = s.repo.ReassignOwner(ctx, ticket.ID, in.FromUserID, toUserID, now)
		return err
	})
	if err != nil {
		return s.fail(ctx, *ticket, in.FromUserID, err)
	}

	if !moved {
		// The ticket changed under us between check and write: redeemed,
		// cancelled, or already transferred. Re-read and classify.
		current, err := s.repo.FindTicketByID(ctx, ticket.ID)
		if err != nil {
			return domain.Ticket{}, err
		}
		switch {
		case current == nil:
			return s.fail(ctx, *ticket, in.FromUserID, domain.ErrTicketNotFound)
		case current.Status != domain.TicketStatusConfirmed:
			return s.fail(ctx, *current, in.FromUserID, domain.ErrTicketNotTransferable)
		default:
			return s.fail(ctx, *current, in.FromUserID, domain.ErrNotTicketOwner)
		}
	}

	result := *ticket
	result.OwnerUserID = toUserID
	result.TransferredFrom = in.FromUserID
	result.TransferredAt = &now

	metrics.TransfersTotal.WithLabelValues("success").Inc()
	s.audit(ctx, result, in.FromUserID, "transferred", "to="+toUserID)
	return result, nil
}

func (s *TransferService) fail(ctx context.Context, t domain.Ticket, actor string, err error) (domain.Ticket, error) {
	metrics.TransfersTotal.WithLabelValues("rejected").Inc()
	s.audit(ctx, t, actor, "rejected", err.Error())
	return domain.Ticket{}, err
}

func (s *TransferService) audit(ctx context.Context, t domain.Ticket, actor, outcome, detail string) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Record(ctx, audit.Entry{
		Kind:        audit.KindTransfer,
		TicketID:    t.ID,
		EventID:     t.EventID,
		ActorUserID: actor,
		Outcome:     outcome,
		Detail:      detail,
		At:          s.clock.Now(),
	})
}
