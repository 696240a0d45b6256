package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akozyrev/leadwell/internal/contact"
)

// User is an access subject: the owner/assignee reference the sales
// entities carry. The password is stored as a bcrypt hash, never in
// clear.
type User struct {
	ID           uuid.UUID
	Email        contact.Email
	FirstName    string
	LastName     string
	PasswordHash string
	Roles        []string
	Permissions  []string
	Active       bool
	Phone        *contact.Phone
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func New(email, firstName, lastName, password string, roles ...string) (*User, error) {
	e, err := contact.NewEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if len(roles) == 0 {
		roles = []string{"user"}
	}

	now := time.Now()

	return &User{
		ID:           uuid.New(),
		Email:        e,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) ChangePassword(newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	u.PasswordHash = string(hash)
	u.touch()

	return nil
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}

	return false
}

func (u *User) AddRole(role string) {
	if u.HasRole(role) {
		return
	}

	u.Roles = append(u.Roles, role)
	u.touch()
}

func (u *User) RemoveRole(role string) {
	out := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			out = append(out, r)
		}
	}

	u.Roles = out
	u.touch()
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}

func (u *User) AddPermission(permission string) {
	if u.HasPermission(permission) {
		return
	}

	u.Permissions = append(u.Permissions, permission)
	u.touch()
}

func (u *User) Activate() {
	u.Active = true
	u.touch()
}

func (u *User) Deactivate() {
	u.Active = false
	u.touch()
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}
