package lead

import "github.com/akozyrev/leadwell/internal/domain"

// Status is a lead's position in the qualification pipeline. Transitions
// follow a fixed directed graph; converted and disqualified are terminal.
type Status string

const (
	StatusNew          Status = "new"
	StatusInProgress   Status = "in_progress"
	StatusQualified    Status = "qualified"
	StatusConverted    Status = "converted"
	StatusDisqualified Status = "disqualified"
)

var statusTransitions = map[Status][]Status{
	StatusNew:          {StatusInProgress, StatusDisqualified},
	StatusInProgress:   {StatusQualified, StatusDisqualified},
	StatusQualified:    {StatusConverted, StatusDisqualified},
	StatusConverted:    {},
	StatusDisqualified: {},
}

// ParseStatus validates a raw string against the known status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := statusTransitions[s]; !ok {
		return "", &domain.InvalidValueError{Field: "lead status", Value: raw, Reason: "unknown status"}
	}

	return s, nil
}

// CanTransitionTo reports whether target is in the successor set of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// IsFinal reports whether the successor set of s is empty.
func (s Status) IsFinal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Priority is an ordered urgency level for working a lead.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityRank = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if _, ok := priorityRank[p]; !ok {
		return "", &domain.InvalidValueError{Field: "priority", Value: raw, Reason: "unknown priority"}
	}

	return p, nil
}

// HigherThan reports whether p outranks other in the total order
// low < medium < high < critical.
func (p Priority) HigherThan(other Priority) bool {
	return priorityRank[p] > priorityRank[other]
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}
