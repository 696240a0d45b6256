// Package seed loads the demo dataset: two users and two leads. Both
// binaries start from it since the stores are in-memory.
package seed

import (
	"context"
	"fmt"

	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
	"github.com/akozyrev/leadwell/internal/user"
)

type UserStore interface {
	Save(ctx context.Context, u *user.User) error
}

type LeadStore interface {
	Save(ctx context.Context, l *lead.Lead) error
}

type Data struct {
	Admin   *user.User
	Manager *user.User
	Leads   []*lead.Lead
}

// Load populates the stores and returns the created records so callers
// can print the demo credentials.
func Load(ctx context.Context, users UserStore, leads LeadStore) (*Data, error) {
	admin, err := user.New("admin@crm.local", "Admin", "Adminov", "admin123", "admin")
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	admin.AddPermission("*")

	manager, err := user.New("manager@crm.local", "Ivan", "Managerov", "manager123", "manager")
	if err != nil {
		return nil, fmt.Errorf("seeding manager: %w", err)
	}

	for _, u := range []*user.User{admin, manager} {
		if err := users.Save(ctx, u); err != nil {
			return nil, fmt.Errorf("saving user %s: %w", u.Email, err)
		}
	}

	integration, err := money.FromFloat(150000, "RUB")
	if err != nil {
		return nil, err
	}

	first, err := lead.New(lead.CreateParams{
		Title:          "CRM integration request",
		ContactName:    "Anna Petrova",
		ContactEmail:   "anna@client.ru",
		ContactPhone:   "+7 (916) 123-45-67",
		Company:        "Client LLC",
		Source:         lead.NewSource("google", "cpc", "crm_integration"),
		Priority:       lead.PriorityHigh,
		EstimatedValue: &integration,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding lead: %w", err)
	}

	consultation, err := money.FromFloat(50000, "RUB")
	if err != nil {
		return nil, err
	}

	second, err := lead.New(lead.CreateParams{
		Title:          "Setup consultation",
		ContactName:    "Sergey Ivanov",
		ContactEmail:   "sergey@mail.ru",
		Source:         lead.NewSource("direct", "email", ""),
		EstimatedValue: &consultation,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding lead: %w", err)
	}

	data := &Data{Admin: admin, Manager: manager, Leads: []*lead.Lead{first, second}}

	for _, l := range data.Leads {
		if err := leads.Save(ctx, l); err != nil {
			return nil, fmt.Errorf("saving lead %q: %w", l.Title, err)
		}
	}

	return data, nil
}
