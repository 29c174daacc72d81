package app

import (
	"context"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/clock"
	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type AdminRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// AdminService is the minimal catalog surface this service carries: enough
// to stand up an event with a capacity and a venue. The full catalog lives
// in another subsystem.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Name       string
	VenueID    string
	MaxTickets int
	StartsAt   *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	if in.VenueID == "" {
		return domain.Event{}, domain.ErrVenueRequired
	}
	if in.MaxTickets <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}

	now := s.clock.Now()
	startsAt := now
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:         newID(),
		Name:       in.Name,
		VenueID:    in.VenueID,
		MaxTickets: in.MaxTickets,
		Status:     domain.EventStatusActive,
		StartsAt:   startsAt,
		CreatedAt:  now,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}
