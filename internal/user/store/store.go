// Package store is the in-memory user repository with a unique email
// index.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/user"
)

type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

func New() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *Store) Save(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.users[u.ID]; exists {
		delete(s.byEmail, prev.Email.String())
	} else {
		s.order = append(s.order, u.ID)
	}

	s.users[u.ID] = u
	s.byEmail[u.Email.String()] = u.ID

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return u, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return s.users[id], nil
}

func (s *Store) List(_ context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*user.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}

	return out, nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	delete(s.byEmail, u.Email.String())
	delete(s.users, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}
