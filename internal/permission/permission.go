// Package permission evaluates dot-notation permissions against a
// user's direct grants and role sets. A trailing ".own" segment
// restricts a grant to entities the user owns; requesting an ".own"
// permission against an owned entity succeeds on ownership alone.
package permission

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/user"
)

// Wildcard grants everything it is attached to, either as a direct
// user permission or inside a role set.
const Wildcard = "*"

// OwnSuffix marks a permission that only applies to owned entities.
const OwnSuffix = ".own"

// Ownable is implemented by entities that can belong to a user. The
// second return is false when the entity has no owner yet.
type Ownable interface {
	Owner() (uuid.UUID, bool)
}

// Manager resolves permissions through role sets. The zero role table
// is empty; NewManager seeds the default roles.
type Manager struct {
	mu    sync.RWMutex
	roles map[string][]string
}

// NewManager builds a manager with the built-in role table.
func NewManager() *Manager {
	return &Manager{
		roles: map[string][]string{
			"admin": {Wildcard},
			"manager": {
				"lead.create", "lead.read", "lead.update", "lead.delete",
				"deal.create", "deal.read", "deal.update",
				"contact.read", "contact.update",
			},
			"user": {
				"lead.read", "lead.update.own",
				"deal.read.own", "deal.update.own",
				"contact.read",
			},
			"guest": {"lead.read.public"},
		},
	}
}

// GrantRole replaces the permission set of a role, creating the role
// when it does not exist.
func (m *Manager) GrantRole(role string, permissions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roles[role] = append([]string(nil), permissions...)
}

// RevokeRole removes a role and its permission set.
func (m *Manager) RevokeRole(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.roles, role)
}

// RolePermissions returns a copy of the role's permission set.
func (m *Manager) RolePermissions(role string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.roles[role]...)
}

// IsGranted reports whether the user may perform permission, optionally
// against a concrete entity. Direct user permissions are checked first,
// then every role the user holds. An ".own" grant only matches when the
// entity is owned by the user, and an ".own" request is satisfied by
// ownership alone, without any grant.
func (m *Manager) IsGranted(u *user.User, permission string, subject Ownable) bool {
	if u == nil {
		return false
	}

	for _, p := range u.Permissions {
		if m.matches(p, permission, u, subject) {
			return true
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, role := range u.Roles {
		for _, p := range m.roles[role] {
			if m.matches(p, permission, u, subject) {
				return true
			}
		}
	}

	return strings.HasSuffix(permission, OwnSuffix) && owns(u, subject)
}

func (m *Manager) matches(granted, requested string, u *user.User, subject Ownable) bool {
	if granted == Wildcard {
		return true
	}

	if granted == requested {
		return true
	}

	if strings.TrimSuffix(granted, OwnSuffix) != requested {
		return false
	}

	// Ownership-scoped grant: needs a subject owned by this user.
	return owns(u, subject)
}

func owns(u *user.User, subject Ownable) bool {
	if subject == nil {
		return false
	}

	owner, ok := subject.Owner()

	return ok && owner == u.ID
}
