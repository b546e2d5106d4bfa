package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-advisor/internal/combos"
)

func TestComboStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewComboStore(db)
	ctx := context.Background()

	combo := &combos.Combo{
		ID:            "oracle-consultation",
		Cards:         []string{"Thassa's Oracle", "Demonic Consultation"},
		Description:   "Empty the library, then win with Oracle's trigger.",
		ColorIdentity: "UB",
		Popularity:    5000,
		Bracket:       "cedh",
	}

	require.NoError(t, store.UpsertCombos(ctx, []*combos.Combo{combo}))

	got, err := store.GetCombo(ctx, "oracle-consultation")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, combo.Cards, got.Cards)
	assert.Equal(t, combo.Description, got.Description)
	assert.Equal(t, combo.ColorIdentity, got.ColorIdentity)
	assert.Equal(t, combo.Popularity, got.Popularity)
	assert.Equal(t, combo.Bracket, got.Bracket)
}

func TestComboStoreGetComboUnknownReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	store := NewComboStore(db)

	got, err := store.GetCombo(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestComboStoreUpsertReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	store := NewComboStore(db)
	ctx := context.Background()

	require.NoError(t, store.UpsertCombos(ctx, []*combos.Combo{
		{ID: "c1", Cards: []string{"A", "B"}, Popularity: 10},
	}))
	require.NoError(t, store.UpsertCombos(ctx, []*combos.Combo{
		{ID: "c1", Cards: []string{"A", "B"}, Popularity: 20},
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetCombo(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 20, got.Popularity)
}

func TestComboStoreAllCombosOrderedByID(t *testing.T) {
	db := setupTestDB(t)
	store := NewComboStore(db)
	ctx := context.Background()

	require.NoError(t, store.UpsertCombos(ctx, []*combos.Combo{
		{ID: "b", Cards: []string{"X"}},
		{ID: "a", Cards: []string{"Y"}},
	}))

	all, err := store.AllCombos(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}
