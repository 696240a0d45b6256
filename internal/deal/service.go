package deal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=deal
type Repository interface {
	Save(ctx context.Context, d *Deal) error
	Get(ctx context.Context, id uuid.UUID) (*Deal, error)
	List(ctx context.Context) ([]*Deal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Deal, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]*Deal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title   string
	Amount  money.Money
	OwnerID uuid.UUID
	LeadID  *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Deal, error) {
	d, err := New(params.Title, params.Amount, params.OwnerID, params.LeadID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Deal, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Deal, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Deal, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]*Deal, error) {
	return s.repo.ListByLead(ctx, leadID)
}

func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, stage Stage) (*Deal, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.UpdateStage(stage); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}

func (s *Service) SetProbability(ctx context.Context, id uuid.UUID, probability int) (*Deal, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.SetProbability(probability); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}

func (s *Service) Close(ctx context.Context, id uuid.UUID, won bool, reason string) (*Deal, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Close(won, reason)

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}

func (s *Service) AddLineItem(ctx context.Context, id uuid.UUID, description string, quantity int64, unitPrice money.Money) (*Deal, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.AddLineItem(description, quantity, unitPrice); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}

func (s *Service) UpdateAmount(ctx context.Context, id uuid.UUID, amount money.Money) (*Deal, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d.UpdateAmount(amount)

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}
