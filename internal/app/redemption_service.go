package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/audit"
	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
	"github.com/sidrxo/burner-ticketing/internal/pkg/metrics"
)

type RedemptionRepository interface {
	// Lookups return nil when no ticket matches.
	FindTicketByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindTicketByNumber(ctx context.Context, eventID, number string) (*domain.Ticket, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// MarkTicketUsed is the conditional confirmed→used transition. False
	// means zero rows were affected: someone else already transitioned it.
	MarkTicketUsed(ctx context.Context, ticketID, scannerID string, at time.Time) (bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedemptionService validates and redeems a ticket exactly once at the
// door. Every rejection is a normal outcome the scanning device displays,
// not an error; errors are reserved for store/limiter failures.
type RedemptionService struct {
	repo    RedemptionRepository
	limiter RateLimiter
	sink    audit.Sink
	clock   clock.Clock
}

func NewRedemptionService(repo RedemptionRepository, limiter RateLimiter, sink audit.Sink, clk clock.Clock) *RedemptionService {
	return &RedemptionService{
		repo:    repo,
		limiter: limiter,
		sink:    sink,
		clock:   clk,
	}
}

func (s *RedemptionService) Redeem(ctx context.Context, lookup domain.TicketLookup, identity domain.Identity) (domain.ScanResult, error) {
	allowed, err := s.limiter.Allow(ctx, "scan:"+identity.UserID)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		return s.finish(ctx, identity, domain.ScanResult{Outcome: domain.ScanRateLimited}, "")
	}

	ticket, err := s.lookupTicket(ctx, lookup)
	if err != nil {
		return domain.ScanResult{}, err
	}
	if ticket == nil {
		return s.finish(ctx, identity, domain.ScanResult{Outcome: domain.ScanNotFound}, "")
	}

	event, err := s.repo.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("load event for ticket %s: %w", ticket.ID, err)
	}

	base := domain.ScanResult{
		TicketID:      ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		ActualEventID: ticket.EventID,
	}

	if !Authorize(identity, ActionRedeemTicket, event.VenueID) {
		base.Outcome = domain.ScanPermissionDenied
		return s.finish(ctx, identity, base, "venue="+event.VenueID)
	}

	// Manual entry supplies a target event; a mismatch means the operator
	// is scanning for a different event than the ticket admits to.
	if lookup.EventID != "" && lookup.EventID != ticket.EventID {
		base.Outcome = domain.ScanWrongEvent
		return s.finish(ctx, identity, base, "target_event="+lookup.EventID)
	}

	switch ticket.Status {
	case domain.TicketStatusCancelled:
		base.Outcome = domain.ScanCancelled
		return s.finish(ctx, identity, base, "")
	case domain.TicketStatusRefunded:
		base.Outcome = domain.ScanRefunded
		return s.finish(ctx, identity, base, "")
	case domain.TicketStatusUsed:
		base.Outcome = domain.ScanAlreadyUsed
		base.ScannedBy = ticket.ScannedBy
		base.ScannedAt = ticket.UsedAt
		return s.finish(ctx, identity, base, "")
	case domain.TicketStatusConfirmed:
		return s.redeemConfirmed(ctx, identity, *ticket, base)
	}

	return domain.ScanResult{}, fmt.Errorf("ticket %s has unknown status %q", ticket.ID, ticket.Status)
}

func (s *RedemptionService) redeemConfirmed(ctx context.Context, identity domain.Identity, ticket domain.Ticket, base domain.ScanResult) (domain.ScanResult, error) {
	now := s.clock.Now()

	var won bool
	err := retryTransient(ctx, func() error {
		var err error
		won, err = s.repo.MarkTicketUsed(ctx, ticket.ID, identity.UserID, now)
		return err
	})
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("mark ticket used: %w", err)
	}

	if won {
		base.Outcome = domain.ScanSuccess
		base.ScannedBy = identity.UserID
		base.ScannedAt = &now
		return s.finish(ctx, identity, base, "")
	}

	// Zero rows affected: lost the race to a concurrent scanner, or an
	// administrative transition landed first. Re-read for the real state.
	current, err := s.repo.FindTicketByID(ctx, ticket.ID)
	if err != nil {
		return domain.ScanResult{}, err
	}
	if current == nil {
		base.Outcome = domain.ScanNotFound
		return s.finish(ctx, identity, base, "")
	}

	switch current.Status {
	case domain.TicketStatusCancelled:
		base.Outcome = domain.ScanCancelled
	case domain.TicketStatusRefunded:
		base.Outcome = domain.ScanRefunded
	default:
		base.Outcome = domain.ScanAlreadyUsed
		base.ScannedBy = current.ScannedBy
		base.ScannedAt = current.UsedAt
	}
	return s.finish(ctx, identity, base, "lost_race")
}

func (s *RedemptionService) lookupTicket(ctx context.Context, lookup domain.TicketLookup) (*domain.Ticket, error) {
	if lookup.TicketID != "" {
		return s.repo.FindTicketByID(ctx, lookup.TicketID)
	}
	if lookup.TicketNumber != "" && lookup.EventID != "" {
		return s.repo.FindTicketByNumber(ctx, lookup.EventID, lookup.TicketNumber)
	}
	return nil, nil
}

// finish records the decision and the outcome metric; every call path,
// including rejections and rate limits, exits through here.
func (s *RedemptionService) finish(ctx context.Context, identity domain.Identity, result domain.ScanResult, detail string) (domain.ScanResult, error) {
	metrics.RedemptionOutcomes.WithLabelValues(string(result.Outcome)).Inc()
	if s.sink != nil {
		_ = s.sink.Record(ctx, audit.Entry{
			Kind:        audit.KindRedemption,
			TicketID:    result.TicketID,
			EventID:     result.ActualEventID,
			ActorUserID: identity.UserID,
			Outcome:     string(result.Outcome),
			Detail:      detail,
			At:          s.clock.Now(),
		})
	}
	return result, nil
}
