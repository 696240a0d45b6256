package lead

import (
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/contact"
	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/money"
)

// SystemAuthor tags notes appended automatically on status changes and
// assignments.
const SystemAuthor = "system"

// Note is a timestamped free-form remark on a lead.
type Note struct {
	Text      string
	Author    string
	CreatedAt time.Time
}

// Lead is a potential customer record prior to commercial commitment.
// Mutate it through its methods: every mutation bumps UpdatedAt, and
// status changes are guarded by the transition graph.
type Lead struct {
	ID             uuid.UUID
	Title          string
	ContactName    string
	ContactEmail   contact.Email
	ContactPhone   *contact.Phone
	Company        string
	Source         Source
	Status         Status
	Priority       Priority
	AssignedTo     *uuid.UUID
	CustomFields   map[string]string
	EstimatedValue *money.Money
	Notes          []Note
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateParams struct {
	Title          string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	Company        string
	Source         Source
	Priority       Priority
	EstimatedValue *money.Money
}

// New builds a lead in status "new", validating the contact details.
func New(params CreateParams) (*Lead, error) {
	if params.Title == "" {
		return nil, &domain.InvalidValueError{Field: "title", Value: "", Reason: "title is required"}
	}

	email, err := contact.NewEmail(params.ContactEmail)
	if err != nil {
		return nil, err
	}

	var phone *contact.Phone
	if params.ContactPhone != "" {
		p, err := contact.NewPhone(params.ContactPhone)
		if err != nil {
			return nil, err
		}

		phone = &p
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	if !priority.Valid() {
		return nil, &domain.InvalidValueError{Field: "priority", Value: string(priority), Reason: "unknown priority"}
	}

	source := params.Source.normalized()

	now := time.Now()

	return &Lead{
		ID:             uuid.New(),
		Title:          params.Title,
		ContactName:    params.ContactName,
		ContactEmail:   email,
		ContactPhone:   phone,
		Company:        params.Company,
		Source:         source,
		Status:         StatusNew,
		Priority:       priority,
		CustomFields:   make(map[string]string),
		EstimatedValue: params.EstimatedValue,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ChangeStatus commits a transition allowed by the status graph and
// records it as a system note. Illegal transitions leave the lead
// untouched.
func (l *Lead) ChangeStatus(target Status) error {
	if !target.Valid() {
		return &domain.InvalidValueError{Field: "lead status", Value: string(target), Reason: "unknown status"}
	}

	if !l.Status.CanTransitionTo(target) {
		return &domain.RuleError{
			Op:        "lead: change status",
			Current:   string(l.Status),
			Attempted: string(target),
			Reason:    "transition not allowed",
		}
	}

	l.Status = target
	l.touch()
	l.appendNote("status changed to: "+string(target), SystemAuthor)

	return nil
}

// AssignTo sets the responsible user and records a system note.
// displayName is only used for the note text.
func (l *Lead) AssignTo(userID uuid.UUID, displayName string) {
	l.AssignedTo = &userID
	l.touch()

	if displayName == "" {
		displayName = userID.String()
	}

	l.appendNote("assigned to: "+displayName, SystemAuthor)
}

func (l *Lead) AddNote(text, author string) {
	if author == "" {
		author = SystemAuthor
	}

	l.appendNote(text, author)
	l.touch()
}

func (l *Lead) SetEstimatedValue(value money.Money) {
	l.EstimatedValue = &value
	l.touch()
}

func (l *Lead) SetCustomField(key, value string) {
	if l.CustomFields == nil {
		l.CustomFields = make(map[string]string)
	}

	l.CustomFields[key] = value
	l.touch()
}

func (l *Lead) SetPriority(p Priority) error {
	if !p.Valid() {
		return &domain.InvalidValueError{Field: "priority", Value: string(p), Reason: "unknown priority"}
	}

	l.Priority = p
	l.touch()

	return nil
}

func (l *Lead) IsQualified() bool { return l.Status == StatusQualified }

func (l *Lead) IsConverted() bool { return l.Status == StatusConverted }

// Owner implements permission.Ownable: the owner of a lead is its
// assignee.
func (l *Lead) Owner() (uuid.UUID, bool) {
	if l.AssignedTo == nil {
		return uuid.Nil, false
	}

	return *l.AssignedTo, true
}

func (l *Lead) appendNote(text, author string) {
	l.Notes = append(l.Notes, Note{Text: text, Author: author, CreatedAt: time.Now()})
}

func (l *Lead) touch() {
	l.UpdatedAt = time.Now()
}
