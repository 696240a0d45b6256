package lead

import (
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
)

type moneyResponse struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func toMoneyResponse(m money.Money) *moneyResponse {
	return &moneyResponse{
		Amount:    m.Amount(),
		Currency:  m.Currency(),
		Formatted: m.String(),
	}
}

type sourceResponse struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign,omitempty"`
}

type noteResponse struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type leadResponse struct {
	ID             uuid.UUID         `json:"id"`
	Title          string            `json:"title"`
	ContactName    string            `json:"contact_name,omitempty"`
	ContactEmail   string            `json:"contact_email"`
	ContactPhone   string            `json:"contact_phone,omitempty"`
	Company        string            `json:"company,omitempty"`
	Source         sourceResponse    `json:"source"`
	Status         lead.Status       `json:"status"`
	Priority       lead.Priority     `json:"priority"`
	AssignedTo     *uuid.UUID        `json:"assigned_to,omitempty"`
	CustomFields   map[string]string `json:"custom_fields,omitempty"`
	EstimatedValue *moneyResponse    `json:"estimated_value,omitempty"`
	Notes          []noteResponse    `json:"notes"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toResponse(l *lead.Lead) leadResponse {
	resp := leadResponse{
		ID:           l.ID,
		Title:        l.Title,
		ContactName:  l.ContactName,
		ContactEmail: l.ContactEmail.String(),
		Company:      l.Company,
		Source: sourceResponse{
			Source:   l.Source.Source,
			Medium:   l.Source.Medium,
			Campaign: l.Source.Campaign,
		},
		Status:       l.Status,
		Priority:     l.Priority,
		AssignedTo:   l.AssignedTo,
		CustomFields: l.CustomFields,
		Notes:        make([]noteResponse, 0, len(l.Notes)),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}

	if l.ContactPhone != nil {
		resp.ContactPhone = l.ContactPhone.E164()
	}

	if l.EstimatedValue != nil {
		resp.EstimatedValue = toMoneyResponse(*l.EstimatedValue)
	}

	for _, n := range l.Notes {
		resp.Notes = append(resp.Notes, noteResponse{
			Text:      n.Text,
			Author:    n.Author,
			CreatedAt: n.CreatedAt,
		})
	}

	return resp
}

func toResponseList(leads []*lead.Lead) []leadResponse {
	resp := make([]leadResponse, len(leads))
	for i, l := range leads {
		resp[i] = toResponse(l)
	}

	return resp
}
