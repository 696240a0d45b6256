package deal

import (
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/deal"
	"github.com/akozyrev/leadwell/internal/money"
)

type moneyResponse struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func toMoneyResponse(m money.Money) moneyResponse {
	return moneyResponse{
		Amount:    m.Amount(),
		Currency:  m.Currency(),
		Formatted: m.String(),
	}
}

type lineItemResponse struct {
	Description string        `json:"description"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   moneyResponse `json:"unit_price"`
	Total       moneyResponse `json:"total"`
}

type dealResponse struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Amount      moneyResponse      `json:"amount"`
	Stage       deal.Stage         `json:"stage"`
	Probability int                `json:"probability"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	LeadID      *uuid.UUID         `json:"lead_id,omitempty"`
	LineItems   []lineItemResponse `json:"line_items,omitempty"`
	Closed      bool               `json:"closed"`
	Won         bool               `json:"won"`
	CloseReason string             `json:"close_reason,omitempty"`
	CloseDate   *time.Time         `json:"close_date,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toResponse(d *deal.Deal) dealResponse {
	resp := dealResponse{
		ID:          d.ID,
		Title:       d.Title,
		Amount:      toMoneyResponse(d.Amount),
		Stage:       d.Stage,
		Probability: d.Probability,
		OwnerID:     d.OwnerID,
		LeadID:      d.LeadID,
		Closed:      d.Closed,
		Won:         d.Won,
		CloseReason: d.CloseReason,
		CloseDate:   d.CloseDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	for _, item := range d.LineItems {
		resp.LineItems = append(resp.LineItems, lineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   toMoneyResponse(item.UnitPrice),
			Total:       toMoneyResponse(item.Total),
		})
	}

	return resp
}

func toResponseList(deals []*deal.Deal) []dealResponse {
	resp := make([]dealResponse, len(deals))
	for i, d := range deals {
		resp[i] = toResponse(d)
	}

	return resp
}
