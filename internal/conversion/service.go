// Package conversion turns a qualified, assigned lead into a deal. This
// is the only cross-entity rule in the system: a deal with a lead link
// implies that lead is converted.
package conversion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/deal"
	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
)

// DefaultCurrency seeds the deal amount when the lead carries no
// estimated value.
const DefaultCurrency = "RUB"

// Options tunes how the deal is built. Title overrides the derived
// "Deal from lead: ..." title; remaining fields are reserved for future
// extension.
type Options struct {
	Title string
}

type Service struct {
	leads lead.Repository
	deals deal.Repository
}

func NewService(leads lead.Repository, deals deal.Repository) *Service {
	return &Service{leads: leads, deals: deals}
}

// CanConvert reports whether the lead is qualified and assigned.
func (s *Service) CanConvert(l *lead.Lead) bool {
	return l.Status == lead.StatusQualified && l.AssignedTo != nil
}

// Convert builds a deal from the lead, marks the lead converted and
// persists both. All rule checks run before the first write, so either
// both entities are observed updated or neither is.
func (s *Service) Convert(ctx context.Context, leadID uuid.UUID, opts Options) (*deal.Deal, error) {
	l, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("loading lead: %w", err)
	}

	if !s.CanConvert(l) {
		reason := "lead must be qualified and assigned"
		if l.AssignedTo == nil {
			reason = "lead is not assigned"
		}

		return nil, &domain.RuleError{
			Op:      "lead: convert",
			Current: string(l.Status),
			Reason:  reason,
		}
	}

	amount := money.Zero(DefaultCurrency)
	if l.EstimatedValue != nil {
		amount = *l.EstimatedValue
	}

	title := opts.Title
	if title == "" {
		title = "Deal from lead: " + l.Title
	}

	d, err := deal.New(title, amount, *l.AssignedTo, &l.ID)
	if err != nil {
		return nil, err
	}

	// Always legal from qualified; guarded anyway so the invariant holds
	// even if the graph changes.
	if err := l.ChangeStatus(lead.StatusConverted); err != nil {
		return nil, err
	}

	if err := s.leads.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving lead: %w", err)
	}

	if err := s.deals.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving deal: %w", err)
	}

	return d, nil
}
