package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"courtdash/internal/domain"
	"courtdash/internal/modules/booking"
	"courtdash/internal/repository"
)

var (
	ErrNotFound     = booking.ErrViewNotFound
	ErrDuplicate    = repository.ErrDuplicateView
	ErrInvalidInput = errors.New("invalid saved view")
)

type Repository interface {
	Create(ctx context.Context, v *domain.SavedView) error
	ListByOwnerVenue(ctx context.Context, ownerID, venueID string) ([]domain.SavedView, error)
	GetByID(ctx context.Context, id int64) (*domain.SavedView, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, ownerID, venueID string) ([]domain.SavedView, error) {
	return s.repo.ListByOwnerVenue(ctx, ownerID, venueID)
}

// Create stores params under name. Params are validated the same way the
// booking list validates them, so a saved view always loads.
func (s *Service) Create(ctx context.Context, ownerID, venueID string, req CreateRequest) (*domain.SavedView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := req.Query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	raw, err := json.Marshal(req.Query)
	if err != nil {
		return nil, err
	}

	v := &domain.SavedView{
		OwnerID: ownerID,
		VenueID: venueID,
		Name:    name,
		Query:   raw,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a view the owner holds. Someone else's view reads as missing.
func (s *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrViewNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetViewQuery returns the stored list parameters of a view owned by ownerID
// for venueID.
func (s *Service) GetViewQuery(ctx context.Context, ownerID, venueID string, id int64) (json.RawMessage, error) {
	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if v.VenueID != venueID {
		return nil, ErrNotFound
	}
	return v.Query, nil
}

func (s *Service) owned(ctx context.Context, ownerID string, id int64) (*domain.SavedView, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrViewNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if v.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return v, nil
}
