package audit_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/audit"
)

func TestRecord(t *testing.T) {
	var buf bytes.Buffer
	log := audit.New(&buf)

	userID := uuid.New()
	leadID := uuid.New()

	require.NoError(t, log.Record("lead.converted", &userID, &leadID, map[string]string{
		"deal_title": "Deal from lead: CRM integration request",
	}))
	require.NoError(t, log.Record("deal.closed", nil, nil, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first audit.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "lead.converted", first.Action)
	require.NotNil(t, first.UserID)
	assert.Equal(t, userID, *first.UserID)
	assert.Equal(t, "Deal from lead: CRM integration request", first.Data["deal_title"])
	assert.False(t, first.Timestamp.IsZero())

	var second audit.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "deal.closed", second.Action)
	assert.Nil(t, second.UserID)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecord_WriteError(t *testing.T) {
	log := audit.New(failingWriter{})

	err := log.Record("lead.converted", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := audit.Open(path)
	require.NoError(t, err)

	for _, action := range []string{"lead.imported", "lead.converted", "deal.closed"} {
		require.NoError(t, log.Record(action, nil, nil, nil))
	}
	require.NoError(t, log.Close())

	entries, err := audit.Tail(path, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lead.converted", entries[0].Action)
	assert.Equal(t, "deal.closed", entries[1].Action)

	all, err := audit.Tail(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
