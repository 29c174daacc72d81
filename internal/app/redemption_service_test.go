package app

import (
	"context"
	"testing"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
)

func TestRedemptionService_Redeem(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	scanner := domain.Identity{UserID: "scanner-1", Role: domain.RoleScanner, VenueID: "venue-1"}

	newService := func(repo *fakeRedemptionRepo) *RedemptionService {
		return NewRedemptionService(repo, allowAllLimiter{}, nil, clock.NewFixed(now))
	}

	confirmedTicket := func() domain.Ticket {
		return domain.Ticket{
			ID:           "ticket-1",
			EventID:      "event-1",
			OwnerUserID:  "user-1",
			TicketNumber: "TKT-AAAA2222",
			Status:       domain.TicketStatusConfirmed,
		}
	}

	t.Run("confirmed ticket redeems exactly once", func(t *testing.T) {
		repo := newFakeRedemptionRepo(confirmedTicket())
		svc := newService(repo)

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanSuccess {
			t.Fatalf("expected success, got %s", res.Outcome)
		}
		if res.ScannedBy != "scanner-1" {
			t.Fatalf("expected scanner-1 recorded, got %s", res.ScannedBy)
		}
		if res.ScannedAt == nil || !res.ScannedAt.Equal(now) {
			t.Fatalf("expected scanned_at=%v, got %v", now, res.ScannedAt)
		}

		second, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
		if err != nil {
			t.Fatalf("second scan: %v", err)
		}
		if second.Outcome != domain.ScanAlreadyUsed {
			t.Fatalf("expected already_used on second scan, got %s", second.Outcome)
		}
		if repo.markCalls != 1 {
			t.Fatalf("expected one conditional update, got %d", repo.markCalls)
		}
	})

	t.Run("used ticket reports who scanned it and when", func(t *testing.T) {
		usedAt := now.Add(-10 * time.Minute)
		ticket := confirmedTicket()
		ticket.Status = domain.TicketStatusUsed
		ticket.ScannedBy = "scanner-9"
		ticket.UsedAt = &usedAt
		svc := newService(newFakeRedemptionRepo(ticket))

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanAlreadyUsed {
			t.Fatalf("expected already_used, got %s", res.Outcome)
		}
		if res.ScannedBy != "scanner-9" {
			t.Fatalf("expected original scanner, got %s", res.ScannedBy)
		}
		if res.ScannedAt == nil || !res.ScannedAt.Equal(usedAt) {
			t.Fatalf("expected original scan time, got %v", res.ScannedAt)
		}
	})

	t.Run("ticket scanned at the wrong event is rejected with provenance", func(t *testing.T) {
		svc := newService(newFakeRedemptionRepo(confirmedTicket()))

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1", EventID: "event-2"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanWrongEvent {
			t.Fatalf("expected wrong_event, got %s", res.Outcome)
		}
		if res.ActualEventID != "event-1" {
			t.Fatalf("expected actual event id event-1, got %s", res.ActualEventID)
		}
	})

	t.Run("cancelled and refunded tickets are rejected", func(t *testing.T) {
		for _, tc := range []struct {
			status domain.TicketStatus
			want   domain.ScanOutcome
		}{
			{domain.TicketStatusCancelled, domain.ScanCancelled},
			{domain.TicketStatusRefunded, domain.ScanRefunded},
		} {
			ticket := confirmedTicket()
			ticket.Status = tc.status
			svc := newService(newFakeRedemptionRepo(ticket))

			res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
			if err != nil {
				t.Fatalf("status %s: %v", tc.status, err)
			}
			if res.Outcome != tc.want {
				t.Fatalf("status %s: expected %s, got %s", tc.status, tc.want, res.Outcome)
			}
		}
	})

	t.Run("unknown ticket", func(t *testing.T) {
		svc := newService(newFakeRedemptionRepo())

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "missing"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanNotFound {
			t.Fatalf("expected not_found, got %s", res.Outcome)
		}
	})

	t.Run("lookup by number is scoped to the event", func(t *testing.T) {
		svc := newService(newFakeRedemptionRepo(confirmedTicket()))

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketNumber: "TKT-AAAA2222", EventID: "event-1"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanSuccess {
			t.Fatalf("expected success, got %s", res.Outcome)
		}

		res, err = svc.Redeem(context.Background(), domain.TicketLookup{TicketNumber: "TKT-AAAA2222", EventID: "event-2"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanNotFound {
			t.Fatalf("expected not_found for wrong event scope, got %s", res.Outcome)
		}
	})

	t.Run("scanner from another venue is denied", func(t *testing.T) {
		svc := newService(newFakeRedemptionRepo(confirmedTicket()))
		outsider := domain.Identity{UserID: "scanner-2", Role: domain.RoleScanner, VenueID: "venue-2"}

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, outsider)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanPermissionDenied {
			t.Fatalf("expected permission_denied, got %s", res.Outcome)
		}
	})

	t.Run("siteAdmin scans anywhere", func(t *testing.T) {
		svc := newService(newFakeRedemptionRepo(confirmedTicket()))
		admin := domain.Identity{UserID: "admin-1", Role: domain.RoleSiteAdmin}

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, admin)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanSuccess {
			t.Fatalf("expected success, got %s", res.Outcome)
		}
	})

	t.Run("rate limit exhaustion short-circuits the scan", func(t *testing.T) {
		repo := newFakeRedemptionRepo(confirmedTicket())
		svc := NewRedemptionService(repo, denyLimiter{}, nil, clock.NewFixed(now))

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanRateLimited {
			t.Fatalf("expected rate_limited, got %s", res.Outcome)
		}
		if repo.markCalls != 0 {
			t.Fatalf("rate limited scan must not touch the ticket")
		}
	})

	t.Run("losing the conditional update re-reads the real state", func(t *testing.T) {
		repo := newFakeRedemptionRepo(confirmedTicket())
		usedAt := now.Add(-time.Second)
		repo.loseRaceTo = &domain.Ticket{
			ID:           "ticket-1",
			EventID:      "event-1",
			TicketNumber: "TKT-AAAA2222",
			Status:       domain.TicketStatusUsed,
			ScannedBy:    "scanner-3",
			UsedAt:       &usedAt,
		}
		svc := newService(repo)

		res, err := svc.Redeem(context.Background(), domain.TicketLookup{TicketID: "ticket-1"}, scanner)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Outcome != domain.ScanAlreadyUsed {
			t.Fatalf("expected already_used after lost race, got %s", res.Outcome)
		}
		if res.ScannedBy != "scanner-3" {
			t.Fatalf("expected the winner's scanner id, got %s", res.ScannedBy)
		}
	})
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

type fakeRedemptionRepo struct {
	tickets   map[string]domain.Ticket
	markCalls int
	// loseRaceTo makes MarkTicketUsed report zero rows and installs this
	// ticket as the state a re-read observes.
	loseRaceTo *domain.Ticket
}

func newFakeRedemptionRepo(tickets ...domain.Ticket) *fakeRedemptionRepo {
	m := make(map[string]domain.Ticket, len(tickets))
	for _, t := range tickets {
		m[t.ID] = t
	}
	return &fakeRedemptionRepo{tickets: m}
}

func (f *fakeRedemptionRepo) FindTicketByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (f *fakeRedemptionRepo) FindTicketByNumber(_ context.Context, eventID, number string) (*domain.Ticket, error) {
	for _, t := range f.tickets {
		if t.EventID == eventID && t.TicketNumber == number {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRedemptionRepo) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	return domain.Event{ID: eventID, VenueID: "venue-1", Status: domain.EventStatusActive, MaxTickets: 100}, nil
}

func (f *fakeRedemptionRepo) MarkTicketUsed(_ context.Context, ticketID, scannerID string, at time.Time) (bool, error) {
	f.markCalls++
	if f.loseRaceTo != nil {
		f.tickets[f.loseRaceTo.ID] = *f.loseRaceTo
		return false, nil
	}
	t, ok := f.tickets[ticketID]
	if !ok || t.Status != domain.TicketStatusConfirmed {
		return false, nil
	}
	t.Status = domain.TicketStatusUsed
	t.ScannedBy = scannerID
	t.UsedAt = &at
	f.tickets[ticketID] = t
	return true, nil
}
