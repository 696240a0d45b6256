package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/deal"
	"github.com/akozyrev/leadwell/internal/deal/store"
	"github.com/akozyrev/leadwell/internal/domain"
	"github.com/akozyrev/leadwell/internal/money"
)

func mustDeal(t *testing.T, owner uuid.UUID, leadID *uuid.UUID) *deal.Deal {
	t.Helper()

	d, err := deal.New("Test deal", money.Zero("RUB"), owner, leadID)
	require.NoError(t, err)

	return d
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := store.New()

	d := mustDeal(t, uuid.New(), nil)
	require.NoError(t, s.Save(ctx, d))

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestStore_GetMissing(t *testing.T) {
	s := store.New()

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_OwnerAndLeadIndexes(t *testing.T) {
	ctx := context.Background()
	s := store.New()

	owner := uuid.New()
	leadID := uuid.New()

	a := mustDeal(t, owner, &leadID)
	b := mustDeal(t, owner, nil)
	c := mustDeal(t, uuid.New(), nil)

	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))
	require.NoError(t, s.Save(ctx, c))

	byOwner, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byLead, err := s.ListByLead(ctx, leadID)
	require.NoError(t, err)
	require.Len(t, byLead, 1)
	assert.Equal(t, a.ID, byLead[0].ID)
}

func TestStore_ResaveDoesNotDuplicateIndexes(t *testing.T) {
	ctx := context.Background()
	s := store.New()

	owner := uuid.New()
	d := mustDeal(t, owner, nil)

	require.NoError(t, s.Save(ctx, d))
	require.NoError(t, d.UpdateStage(deal.StageProposal))
	require.NoError(t, s.Save(ctx, d))

	byOwner, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)
}

func TestStore_DeleteRemovesIndexes(t *testing.T) {
	ctx := context.Background()
	s := store.New()

	owner := uuid.New()
	leadID := uuid.New()
	d := mustDeal(t, owner, &leadID)

	require.NoError(t, s.Save(ctx, d))
	require.NoError(t, s.Delete(ctx, d.ID))

	_, err := s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byOwner, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, byOwner)

	byLead, err := s.ListByLead(ctx, leadID)
	require.NoError(t, err)
	assert.Empty(t, byLead)
}
