package lead

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=lead
type Repository interface {
	Save(ctx context.Context, l *Lead) error
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)
	ListByStatus(ctx context.Context, status Status) ([]*Lead, error)
	ListByEmail(ctx context.Context, email string) ([]*Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Lead, error) {
	l, err := New(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Lead, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Lead, error) {
	if !status.Valid() {
		return nil, &domain.InvalidValueError{Field: "lead status", Value: string(status), Reason: "unknown status"}
	}

	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]*Lead, error) {
	return s.repo.ListByEmail(ctx, email)
}

// UpdateParams carries the optional fields of a partial update; nil
// fields are left untouched.
type UpdateParams struct {
	Title       *string
	ContactName *string
	Company     *string
	Priority    *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, &domain.InvalidValueError{Field: "title", Value: "", Reason: "title is required"}
		}

		l.Title = *params.Title
	}

	if params.ContactName != nil {
		l.ContactName = *params.ContactName
	}

	if params.Company != nil {
		l.Company = *params.Company
	}

	if params.Priority != nil {
		if err := l.SetPriority(Priority(*params.Priority)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

// ChangeStatus applies a guarded transition and persists the lead. The
// store re-indexes by status as part of Save.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, target Status) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.ChangeStatus(target); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

func (s *Service) Assign(ctx context.Context, id, userID uuid.UUID, displayName string) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	l.AssignTo(userID, displayName)

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

func (s *Service) AddNote(ctx context.Context, id uuid.UUID, text, author string) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	l.AddNote(text, author)

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

func (s *Service) SetEstimatedValue(ctx context.Context, id uuid.UUID, value money.Money) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	l.SetEstimatedValue(value)

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

func (s *Service) SetCustomField(ctx context.Context, id uuid.UUID, key, value string) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	l.SetCustomField(key, value)

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	return l, nil
}

// Delete removes the lead from the store. Deletion is a hard delete at
// the repository layer; the entity itself is never soft-deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
