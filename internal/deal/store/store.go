// Package store is the in-memory deal repository: primary map by id plus
// derived indexes by owner and by source lead.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/deal"
	"github.com/akozyrev/leadwell/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	deals   map[uuid.UUID]*deal.Deal
	byOwner map[uuid.UUID][]uuid.UUID
	byLead  map[uuid.UUID][]uuid.UUID
	order   []uuid.UUID
}

func New() *Store {
	return &Store{
		deals:   make(map[uuid.UUID]*deal.Deal),
		byOwner: make(map[uuid.UUID][]uuid.UUID),
		byLead:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *Store) Save(_ context.Context, d *deal.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deals[d.ID]; !exists {
		s.order = append(s.order, d.ID)
		s.byOwner[d.OwnerID] = append(s.byOwner[d.OwnerID], d.ID)

		if d.LeadID != nil {
			s.byLead[*d.LeadID] = append(s.byLead[*d.LeadID], d.ID)
		}
	}

	// Owner and lead link are set at construction and never change, so a
	// re-save only has to replace the primary entry.
	s.deals[d.ID] = d

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return d, nil
}

func (s *Store) List(_ context.Context) ([]*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*deal.Deal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.deals[id])
	}

	return out, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byOwner[ownerID]), nil
}

func (s *Store) ListByLead(_ context.Context, leadID uuid.UUID) ([]*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byLead[leadID]), nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return domain.ErrNotFound
	}

	s.byOwner[d.OwnerID] = removeID(s.byOwner[d.OwnerID], id)
	if d.LeadID != nil {
		s.byLead[*d.LeadID] = removeID(s.byLead[*d.LeadID], id)
	}

	delete(s.deals, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) collect(ids []uuid.UUID) []*deal.Deal {
	out := make([]*deal.Deal, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.deals[id]; ok {
			out = append(out, d)
		}
	}

	return out
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}

	return ids
}
