package lead_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
)

func newTestLead(t *testing.T) *lead.Lead {
	t.Helper()

	l, err := lead.New(lead.CreateParams{
		Title:        "CRM integration request",
		ContactName:  "Anna Petrova",
		ContactEmail: "anna@client.ru",
		ContactPhone: "+79161234567",
		Company:      "Client LLC",
		Source:       lead.NewSource("google", "cpc", "crm_integration"),
	})
	require.NoError(t, err)

	return l
}

func TestNew(t *testing.T) {
	l := newTestLead(t)

	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, lead.StatusNew, l.Status)
	assert.Equal(t, lead.PriorityMedium, l.Priority)
	assert.Equal(t, "anna@client.ru", l.ContactEmail.String())
	assert.Nil(t, l.AssignedTo)
	assert.Empty(t, l.Notes)
	assert.False(t, l.UpdatedAt.Before(l.CreatedAt))
}

func TestNew_InvalidEmail(t *testing.T) {
	_, err := lead.New(lead.CreateParams{
		Title:        "Broken",
		ContactEmail: "not-an-email",
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidValue(err))
}

func TestNew_MissingTitle(t *testing.T) {
	_, err := lead.New(lead.CreateParams{ContactEmail: "a@b.ru"})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidValue(err))
}

func TestNew_DefaultsSource(t *testing.T) {
	l, err := lead.New(lead.CreateParams{
		Title:        "Walk-in",
		ContactEmail: "walkin@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "direct", l.Source.Source)
	assert.Equal(t, "none", l.Source.Medium)
}

func TestNew_DefaultsSourceFieldsIndependently(t *testing.T) {
	l, err := lead.New(lead.CreateParams{
		Title:        "Banner click",
		ContactEmail: "banner@client.ru",
		Source: lead.Source{
			Source:  "google",
			Content: "banner_300x250",
			Term:    "crm",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "google", l.Source.Source)
	assert.Equal(t, "none", l.Source.Medium)
	assert.Equal(t, "banner_300x250", l.Source.Content)
	assert.Equal(t, "crm", l.Source.Term)
}

func TestChangeStatus_AllowedPairs(t *testing.T) {
	allowed := []struct {
		path []lead.Status
	}{
		{path: []lead.Status{lead.StatusInProgress, lead.StatusQualified, lead.StatusConverted}},
		{path: []lead.Status{lead.StatusInProgress, lead.StatusQualified, lead.StatusDisqualified}},
		{path: []lead.Status{lead.StatusInProgress, lead.StatusDisqualified}},
		{path: []lead.Status{lead.StatusDisqualified}},
	}

	for _, tt := range allowed {
		l := newTestLead(t)

		for _, target := range tt.path {
			prevUpdated := l.UpdatedAt
			prevNotes := len(l.Notes)

			require.NoError(t, l.ChangeStatus(target))
			assert.Equal(t, target, l.Status)
			assert.False(t, l.UpdatedAt.Before(prevUpdated))
			assert.Len(t, l.Notes, prevNotes+1, "each transition appends exactly one note")
			assert.Equal(t, lead.SystemAuthor, l.Notes[len(l.Notes)-1].Author)
		}
	}
}

func TestChangeStatus_IllegalPairsRejected(t *testing.T) {
	all := []lead.Status{
		lead.StatusNew, lead.StatusInProgress, lead.StatusQualified,
		lead.StatusConverted, lead.StatusDisqualified,
	}

	// Walk a lead into each starting status, then try every target not in
	// the transition table.
	reach := map[lead.Status][]lead.Status{
		lead.StatusNew:          {},
		lead.StatusInProgress:   {lead.StatusInProgress},
		lead.StatusQualified:    {lead.StatusInProgress, lead.StatusQualified},
		lead.StatusConverted:    {lead.StatusInProgress, lead.StatusQualified, lead.StatusConverted},
		lead.StatusDisqualified: {lead.StatusDisqualified},
	}

	for from, path := range reach {
		for _, target := range all {
			if from.CanTransitionTo(target) {
				continue
			}

			l := newTestLead(t)
			for _, step := range path {
				require.NoError(t, l.ChangeStatus(step))
			}
			require.Equal(t, from, l.Status)

			notesBefore := len(l.Notes)

			err := l.ChangeStatus(target)
			require.Error(t, err, "%s -> %s must fail", from, target)
			assert.True(t, domain.IsRuleViolation(err))
			assert.Equal(t, from, l.Status, "status must be unchanged after a rejected transition")
			assert.Len(t, l.Notes, notesBefore)
		}
	}
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	l := newTestLead(t)

	err := l.ChangeStatus(lead.Status("lost"))
	require.Error(t, err)
	assert.True(t, domain.IsInvalidValue(err))
	assert.Equal(t, lead.StatusNew, l.Status)
}

func TestStatus_IsFinal(t *testing.T) {
	assert.False(t, lead.StatusNew.IsFinal())
	assert.False(t, lead.StatusInProgress.IsFinal())
	assert.False(t, lead.StatusQualified.IsFinal())
	assert.True(t, lead.StatusConverted.IsFinal())
	assert.True(t, lead.StatusDisqualified.IsFinal())
}

func TestParseStatus(t *testing.T) {
	s, err := lead.ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, lead.StatusInProgress, s)

	_, err = lead.ParseStatus("unknown")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidValue(err))
}

func TestAssignTo(t *testing.T) {
	l := newTestLead(t)
	userID := uuid.New()

	l.AssignTo(userID, "Ivan Managerov")

	require.NotNil(t, l.AssignedTo)
	assert.Equal(t, userID, *l.AssignedTo)

	owner, ok := l.Owner()
	assert.True(t, ok)
	assert.Equal(t, userID, owner)

	require.NotEmpty(t, l.Notes)
	assert.Contains(t, l.Notes[len(l.Notes)-1].Text, "Ivan Managerov")
}

func TestAddNote(t *testing.T) {
	l := newTestLead(t)

	l.AddNote("interested in 1C integration", "manager@crm.local")

	require.Len(t, l.Notes, 1)
	assert.Equal(t, "manager@crm.local", l.Notes[0].Author)
	assert.False(t, l.Notes[0].CreatedAt.IsZero())
}

func TestSetEstimatedValue(t *testing.T) {
	l := newTestLead(t)

	v, err := money.FromFloat(150000.00, "RUB")
	require.NoError(t, err)

	l.SetEstimatedValue(v)

	require.NotNil(t, l.EstimatedValue)
	assert.Equal(t, int64(15000000), l.EstimatedValue.Amount())
}

func TestSetCustomField(t *testing.T) {
	l := newTestLead(t)

	l.SetCustomField("erp", "1C")
	assert.Equal(t, "1C", l.CustomFields["erp"])
}

func TestPriority_Order(t *testing.T) {
	assert.True(t, lead.PriorityCritical.HigherThan(lead.PriorityHigh))
	assert.True(t, lead.PriorityHigh.HigherThan(lead.PriorityMedium))
	assert.True(t, lead.PriorityMedium.HigherThan(lead.PriorityLow))
	assert.False(t, lead.PriorityLow.HigherThan(lead.PriorityCritical))
	assert.False(t, lead.PriorityMedium.HigherThan(lead.PriorityMedium))
}

func TestQueries(t *testing.T) {
	l := newTestLead(t)
	assert.False(t, l.IsQualified())
	assert.False(t, l.IsConverted())

	require.NoError(t, l.ChangeStatus(lead.StatusInProgress))
	require.NoError(t, l.ChangeStatus(lead.StatusQualified))
	assert.True(t, l.IsQualified())

	require.NoError(t, l.ChangeStatus(lead.StatusConverted))
	assert.True(t, l.IsConverted())
	assert.False(t, l.IsQualified())
}
