package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-inventory-api/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testEvent(seq int64, action model.Action, box, loc string) model.Event {
	return model.Event{
		Seq:       seq,
		Timestamp: time.Date(2024, 3, 1, 9, 0, int(seq), 0, time.UTC),
		Action:    action,
		BoxID:     box,
		Location:  loc,
		Pallet:    model.UnnamedPallet,
	}
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	// Appended out of order on purpose; reads come back by seq.
	require.NoError(t, store.Append(ctx, testEvent(2, model.ActionCheckIn, "B2", "3-4")))
	require.NoError(t, store.Append(ctx, testEvent(1, model.ActionCheckIn, "A1", "1-2-7")))
	require.NoError(t, store.Append(ctx, testEvent(3, model.ActionMove, "A1", "1-3-7")))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Seq, all[1].Seq, all[2].Seq})
	assert.Equal(t, model.ActionMove, all[2].Action)
	assert.True(t, all[0].Timestamp.Equal(testEvent(1, "", "", "").Timestamp))

	byBox, err := store.ListByBox(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, byBox, 2)
	assert.Equal(t, "1-3-7", byBox[1].Location)

	since, err := store.ListSince(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, since, 2)

	maxSeq, err := store.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), maxSeq)
}

func TestSQLiteStore_EmptyLog(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	maxSeq, err := store.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxSeq)

	events, err := store.ListByBox(ctx, "NOPE")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestSQLiteStore_DuplicateSeq(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Append(ctx, testEvent(1, model.ActionCheckIn, "A1", "1-2-7")))
	err := store.Append(ctx, testEvent(1, model.ActionCheckIn, "B2", "3-4"))
	assert.ErrorIs(t, err, ErrDuplicateSeq)
}

func TestSQLiteStore_References(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	require.NoError(t, store.SaveMappings(ctx, model.LoadMerge, []model.BoxMapping{
		{BoxID: "A1", ItemCode: "P-100", Quantity: 12},
		{BoxID: "B2", ItemCode: "P-200", Quantity: 4},
		{BoxID: "A1", ItemCode: "P-101", Quantity: 7},
	}))
	require.NoError(t, store.SaveItems(ctx, model.LoadMerge, []model.ItemMaster{
		{ItemCode: "P-100", Name: "Bolt", Spec: "M8X40", Supplier: "ACME"},
	}))
	require.NoError(t, store.SaveAliases(ctx, model.LoadMerge, []model.AliasEntry{
		{AliasCode: "X9", BoxID: "A1"},
	}))

	tables, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tables.Mappings, 2)
	assert.Equal(t, model.BoxMapping{BoxID: "A1", ItemCode: "P-101", Quantity: 7}, tables.Mappings[0])
	require.Len(t, tables.Items, 1)
	assert.Equal(t, "Bolt", tables.Items[0].Name)
	require.Len(t, tables.Aliases, 1)
	assert.Equal(t, "A1", tables.Aliases[0].BoxID)

	// Merge keeps untouched keys; replace drops them.
	require.NoError(t, store.SaveMappings(ctx, model.LoadMerge, []model.BoxMapping{{BoxID: "C3", ItemCode: "P-300", Quantity: 1}}))
	tables, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, tables.Mappings, 3)

	require.NoError(t, store.SaveMappings(ctx, model.LoadReplace, []model.BoxMapping{{BoxID: "D4", ItemCode: "P-999", Quantity: 2}}))
	tables, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tables.Mappings, 1)
	assert.Equal(t, "D4", tables.Mappings[0].BoxID)

	require.NoError(t, store.SaveAliases(ctx, model.LoadReplace, nil))
	tables, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables.Aliases)
}

func TestSQLiteStore_RejectsNegativeQuantity(t *testing.T) {
	store := newTestSQLiteStore(t)

	err := store.SaveMappings(context.Background(), model.LoadMerge, []model.BoxMapping{{BoxID: "A1", ItemCode: "P-100", Quantity: -1}})
	assert.Error(t, err)
}

func TestSQLiteStore_GetStats(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Append(ctx, testEvent(1, model.ActionCheckIn, "A1", "1-2-7")))
	require.NoError(t, store.Append(ctx, testEvent(2, model.ActionCheckOut, "A1", "")))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["total_events"])
	assert.Equal(t, int64(1), stats["distinct_boxes"])
	assert.Equal(t, int64(0), stats["box_mappings"])
}
