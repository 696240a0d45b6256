package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/importer"
	"github.com/akozyrev/leadwell/internal/lead"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"title,contact_name,contact_email,contact_phone,company,source,medium,campaign,estimated_value,priority",
		"CRM integration request,Anna Petrova,anna@client.ru,+7 (916) 123-45-67,Client LLC,google,cpc,crm_integration,150000,high",
		"Setup consultation,Sergey Ivanov,sergey@mail.ru,,,direct,email,,50000,",
	}, "\n")

	result, err := importer.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Leads, 2)
	assert.Empty(t, result.Skipped)

	first := result.Leads[0]
	assert.Equal(t, "CRM integration request", first.Title)
	assert.Equal(t, "Anna Petrova", first.ContactName)
	assert.Equal(t, "anna@client.ru", first.ContactEmail)
	assert.Equal(t, "Client LLC", first.Company)
	assert.Equal(t, "google", first.Source.Source)
	assert.Equal(t, "cpc", first.Source.Medium)
	assert.Equal(t, "crm_integration", first.Source.Campaign)
	assert.Equal(t, lead.PriorityHigh, first.Priority)
	require.NotNil(t, first.EstimatedValue)
	assert.Equal(t, int64(15000000), first.EstimatedValue.Amount())
	assert.Equal(t, "RUB", first.EstimatedValue.Currency())

	second := result.Leads[1]
	assert.Equal(t, "direct", second.Source.Source)
	assert.Equal(t, "email", second.Source.Medium)
	require.NotNil(t, second.EstimatedValue)
	assert.Equal(t, int64(5000000), second.EstimatedValue.Amount())
}

func TestParse_ColumnOrderIndependent(t *testing.T) {
	input := "contact_email,title\nanna@client.ru,Reordered\n"

	result, err := importer.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Reordered", result.Leads[0].Title)
	assert.Equal(t, "anna@client.ru", result.Leads[0].ContactEmail)
}

func TestParse_CommaDecimalSeparator(t *testing.T) {
	input := "title,contact_email,estimated_value\nLead,\"a@b.ru\",\"150000,50\"\n"

	result, err := importer.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	require.NotNil(t, result.Leads[0].EstimatedValue)
	assert.Equal(t, int64(15000050), result.Leads[0].EstimatedValue.Amount())
}

func TestParse_SkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"title,contact_email,estimated_value",
		"Good lead,good@client.ru,1000",
		",missing-title@client.ru,1000",
		"Bad value,bad@client.ru,not-a-number",
	}, "\n")

	result, err := importer.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Good lead", result.Leads[0].Title)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Contains(t, result.Skipped[0].Reason, "title")
	assert.Equal(t, 4, result.Skipped[1].Row)
	assert.Contains(t, result.Skipped[1].Reason, "estimated_value")
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	_, err := importer.NewParser().Parse(strings.NewReader("title,company\nLead,LLC\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact_email")
}

func TestParse_Windows1251(t *testing.T) {
	// Windows-1251 encoded row with a Cyrillic contact name.
	header := []byte("title,contact_name,contact_email\n")
	row := append([]byte("Lead,"), 0xC0, 0xED, 0xED, 0xE0) // "Анна"
	row = append(row, []byte(",anna@client.ru\n")...)

	result, err := importer.NewParser().Parse(bytes.NewReader(append(header, row...)))
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Анна", result.Leads[0].ContactName)
}
