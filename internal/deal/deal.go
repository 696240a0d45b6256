package deal

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/money"
)

// Stage is a deal's position in the fixed sales pipeline.
type Stage string

const (
	StageProspecting   Stage = "prospecting"
	StageQualification Stage = "qualification"
	StageProposal      Stage = "proposal"
	StageNegotiation   Stage = "negotiation"
	StageClosedWon     Stage = "closed_won"
	StageClosedLost    Stage = "closed_lost"
)

// stageProbability maps each stage to the win probability it implies.
// Updating the stage overwrites any manually set probability.
var stageProbability = map[Stage]int{
	StageProspecting:   10,
	StageQualification: 25,
	StageProposal:      50,
	StageNegotiation:   75,
	StageClosedWon:     100,
	StageClosedLost:    0,
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if _, ok := stageProbability[s]; !ok {
		return "", &domain.InvalidValueError{Field: "deal stage", Value: raw, Reason: "unknown stage"}
	}

	return s, nil
}

func (s Stage) Valid() bool {
	_, ok := stageProbability[s]
	return ok
}

// LineItem is one billable position on a deal. Total is derived from
// unit price and quantity at append time.
type LineItem struct {
	Description string
	Quantity    int64
	UnitPrice   money.Money
	Total       money.Money
}

// Deal is a tracked commercial opportunity. Ownership and the lead link
// are by id; the owner is required, the lead optional.
type Deal struct {
	ID          uuid.UUID
	Title       string
	Amount      money.Money
	Stage       Stage
	LeadID      *uuid.UUID
	OwnerID     uuid.UUID
	Probability int
	CloseDate   *time.Time
	LineItems   []LineItem
	Closed      bool
	Won         bool
	CloseReason string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds a deal in the prospecting stage with its table probability.
func New(title string, amount money.Money, ownerID uuid.UUID, leadID *uuid.UUID) (*Deal, error) {
	if title == "" {
		return nil, &domain.InvalidValueError{Field: "title", Value: "", Reason: "title is required"}
	}

	if ownerID == uuid.Nil {
		return nil, &domain.InvalidValueError{Field: "owner", Value: "", Reason: "owner is required"}
	}

	now := time.Now()

	return &Deal{
		ID:          uuid.New(),
		Title:       title,
		Amount:      amount,
		Stage:       StageProspecting,
		LeadID:      leadID,
		OwnerID:     ownerID,
		Probability: stageProbability[StageProspecting],
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateStage moves the deal to a known stage and overwrites the
// probability from the stage table.
func (d *Deal) UpdateStage(stage Stage) error {
	p, ok := stageProbability[stage]
	if !ok {
		return &domain.InvalidValueError{Field: "deal stage", Value: string(stage), Reason: "unknown stage"}
	}

	d.Stage = stage
	d.Probability = p
	d.touch()

	return nil
}

func (d *Deal) SetProbability(probability int) error {
	if probability < 0 || probability > 100 {
		return &domain.InvalidValueError{
			Field:  "probability",
			Value:  strconv.Itoa(probability),
			Reason: "must be between 0 and 100",
		}
	}

	d.Probability = probability
	d.touch()

	return nil
}

// Close is the one-way terminal transition. Closing an already closed
// deal re-applies the terminal values; reopening is not modeled.
func (d *Deal) Close(won bool, reason string) {
	now := time.Now()

	d.Closed = true
	d.Won = won
	d.CloseReason = reason
	d.CloseDate = &now

	if won {
		d.Stage = StageClosedWon
		d.Probability = 100
	} else {
		d.Stage = StageClosedLost
		d.Probability = 0
	}

	d.touch()
}

// AddLineItem appends an item with a computed total and recomputes the
// deal amount as the sum of all line totals, discarding any manually set
// amount.
func (d *Deal) AddLineItem(description string, quantity int64, unitPrice money.Money) error {
	total, err := unitPrice.Mul(quantity)
	if err != nil {
		return err
	}

	d.LineItems = append(d.LineItems, LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
	})

	if err := d.recalculateAmount(); err != nil {
		return err
	}

	d.touch()

	return nil
}

// UpdateAmount overrides the amount directly. The next AddLineItem
// recalculation supersedes it.
func (d *Deal) UpdateAmount(amount money.Money) {
	d.Amount = amount
	d.touch()
}

func (d *Deal) IsClosed() bool { return d.Closed }

func (d *Deal) IsWon() bool { return d.Won }

// Owner satisfies permission.Ownable alongside Lead.
func (d *Deal) Owner() (uuid.UUID, bool) {
	return d.OwnerID, d.OwnerID != uuid.Nil
}

func (d *Deal) recalculateAmount() error {
	sum := money.Money{}

	for i, item := range d.LineItems {
		if i == 0 {
			sum = item.Total
			continue
		}

		var err error

		sum, err = sum.Add(item.Total)
		if err != nil {
			return err
		}
	}

	d.Amount = sum

	return nil
}

func (d *Deal) touch() {
	d.UpdatedAt = time.Now()
}
