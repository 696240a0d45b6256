// Package store is the in-memory lead repository: a primary map keyed by
// id plus derived indexes by contact email and by status. Index updates
// are part of the Save/Delete contract, not an afterthought.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/lead"
)

type Store struct {
	mu       sync.RWMutex
	leads    map[uuid.UUID]*lead.Lead
	byEmail  map[string][]uuid.UUID
	byStatus map[lead.Status][]uuid.UUID

	// Snapshot of the index keys each lead was last saved under, so a
	// re-save after mutation moves the id between buckets.
	savedEmail  map[uuid.UUID]string
	savedStatus map[uuid.UUID]lead.Status

	order []uuid.UUID // insertion order for stable listing
}

func New() *Store {
	return &Store{
		leads:       make(map[uuid.UUID]*lead.Lead),
		byEmail:     make(map[string][]uuid.UUID),
		byStatus:    make(map[lead.Status][]uuid.UUID),
		savedEmail:  make(map[uuid.UUID]string),
		savedStatus: make(map[uuid.UUID]lead.Status),
	}
}

func (s *Store) Save(_ context.Context, l *lead.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[l.ID]; exists {
		s.unindex(l.ID)
	} else {
		s.order = append(s.order, l.ID)
	}

	s.leads[l.ID] = l

	email := l.ContactEmail.String()
	s.byEmail[email] = append(s.byEmail[email], l.ID)
	s.byStatus[l.Status] = append(s.byStatus[l.Status], l.ID)
	s.savedEmail[l.ID] = email
	s.savedStatus[l.ID] = l.Status

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return l, nil
}

func (s *Store) List(_ context.Context) ([]*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*lead.Lead, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.leads[id])
	}

	return out, nil
}

func (s *Store) ListByStatus(_ context.Context, status lead.Status) ([]*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byStatus[status]), nil
}

func (s *Store) ListByEmail(_ context.Context, email string) ([]*lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byEmail[email]), nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return domain.ErrNotFound
	}

	s.unindex(id)
	delete(s.leads, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) collect(ids []uuid.UUID) []*lead.Lead {
	out := make([]*lead.Lead, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.leads[id]; ok {
			out = append(out, l)
		}
	}

	return out
}

// unindex removes id from the email and status buckets it was saved
// under. Callers must hold the write lock.
func (s *Store) unindex(id uuid.UUID) {
	if email, ok := s.savedEmail[id]; ok {
		s.byEmail[email] = removeID(s.byEmail[email], id)
		delete(s.savedEmail, id)
	}

	if status, ok := s.savedStatus[id]; ok {
		s.byStatus[status] = removeID(s.byStatus[status], id)
		delete(s.savedStatus, id)
	}
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}

	return ids
}
