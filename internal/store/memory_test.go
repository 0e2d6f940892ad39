package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	doc := mem.Collection("workplaces").Doc("front_desk")
	require.NoError(t, doc.Set(ctx, map[string]any{"name": "Front Desk"}))

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, "front_desk", snap.ID)
	assert.Equal(t, "Front Desk", snap.Data["name"])
}

func TestMemoryGetMissingIsNotAnError(t *testing.T) {
	snap, err := NewMemory().Collection("workplaces").Doc("nope").Get(context.Background())

	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.Equal(t, "nope", snap.ID)
}

func TestMemorySnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	doc := mem.Collection("workplaces").Doc("front_desk")
	require.NoError(t, doc.Set(ctx, map[string]any{"nested": map[string]any{"k": "v"}}))

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	snap.Data["nested"].(map[string]any)["k"] = "mutated"

	again, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Data["nested"].(map[string]any)["k"])
}

func TestMemoryInvalidRefs(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.Collection("").Doc("x").Get(ctx)
	assert.ErrorIs(t, err, ErrInvalidRef)

	err = mem.Collection("workplaces").Doc("").Set(ctx, map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = mem.Collection("workplaces").Doc("x").Collection("").Documents(ctx)
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = mem.Collection("").Limit(1).Documents(ctx)
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	doc := mem.Collection("workplaces").Doc("front_desk")
	require.NoError(t, doc.Set(ctx, map[string]any{"name": "Front Desk", "created_at": "t0"}))

	require.NoError(t, doc.Update(ctx, map[string]any{"name": "Lobby Desk"}))

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lobby Desk", snap.Data["name"])
	assert.Equal(t, "t0", snap.Data["created_at"], "unlisted fields survive an update")
}

func TestMemoryUpdateMissingDocument(t *testing.T) {
	err := NewMemory().Collection("workplaces").Doc("nope").Update(context.Background(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetMergeKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	doc := mem.Collection("front_desk").Doc("hours_of_operation")
	require.NoError(t, doc.Set(ctx, map[string]any{
		"Monday": []any{map[string]any{"start": "9:00", "end": "17:00"}},
	}))

	require.NoError(t, doc.SetMerge(ctx, map[string]any{
		"Tuesday": []any{map[string]any{"start": "10:00", "end": "14:00"}},
	}))

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Contains(t, snap.Data, "Monday")
	assert.Contains(t, snap.Data, "Tuesday")
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	workers := mem.Collection("workplaces").Doc("front_desk").Collection("workers")
	require.NoError(t, workers.Doc("w1").Set(ctx, map[string]any{"Email": "a@example.edu"}))

	require.NoError(t, mem.Collection("workplaces").Doc("front_desk").Delete(ctx))
	require.NoError(t, mem.Collection("workplaces").Doc("front_desk").Delete(ctx), "deleting twice is fine")

	// Subcollection documents survive their parent's deletion.
	snaps, err := workers.Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestMemoryDocumentsListsDirectChildrenSorted(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	col := mem.Collection("workplaces")
	require.NoError(t, col.Doc("b").Set(ctx, map[string]any{"name": "B"}))
	require.NoError(t, col.Doc("a").Set(ctx, map[string]any{"name": "A"}))
	require.NoError(t, col.Doc("a").Collection("workers").Doc("w1").Set(ctx, map[string]any{}))

	snaps, err := col.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2, "nested documents are not direct children")
	assert.Equal(t, "a", snaps[0].ID)
	assert.Equal(t, "b", snaps[1].ID)
}

func TestMemoryQueryChaining(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	col := mem.Collection("workplaces").Doc("x").Collection("schedules")
	require.NoError(t, col.Doc("s1").Set(ctx, map[string]any{"created_at": "2026-01-01", "name": "old"}))
	require.NoError(t, col.Doc("s2").Set(ctx, map[string]any{"created_at": "2026-02-01", "name": "new"}))
	require.NoError(t, col.Doc("s3").Set(ctx, map[string]any{"created_at": "2026-01-15", "name": "mid"}))

	snaps, err := col.OrderByDesc("created_at").Limit(2).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "new", snaps[0].Data["name"])
	assert.Equal(t, "mid", snaps[1].Data["name"])

	found, err := col.WhereEqual("name", "old").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s1", found[0].ID)

	none, err := col.WhereEqual("name", "missing").Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryAddGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("front_desk")

	id1, err := col.Add(ctx, map[string]any{"Email": "a@example.edu"})
	require.NoError(t, err)
	id2, err := col.Add(ctx, map[string]any{"Email": "b@example.edu"})
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestMemoryBatch(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	col := mem.Collection("front_desk")
	require.NoError(t, col.Doc("w1").Set(ctx, map[string]any{"Email": "a@example.edu"}))

	batch := mem.Batch()
	batch.Delete(col.Doc("w1"))
	batch.Set(col.Doc("w2"), map[string]any{"Email": "b@example.edu"})
	require.NoError(t, batch.Commit(ctx))

	snaps, err := col.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "w2", snaps[0].ID)
}

func TestMemoryBatchRejectsForeignRefs(t *testing.T) {
	mem := NewMemory()
	other := NewMemory()

	batch := mem.Batch()
	batch.Set(other.Collection("x").Doc("y"), map[string]any{})

	assert.ErrorIs(t, batch.Commit(context.Background()), ErrInvalidRef)
}

func TestMemoryWriteLogAndFailureHook(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	doc := mem.Collection("workplaces").Doc("front_desk")

	require.NoError(t, doc.Set(ctx, map[string]any{"name": "Front Desk"}))
	assert.Equal(t, 1, mem.WriteCount())
	assert.Equal(t, []string{"set workplaces/front_desk"}, mem.Writes())

	boom := errors.New("boom")
	mem.Fail(func(op, path string) error {
		if op == OpSet {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, doc.Set(ctx, map[string]any{"name": "x"}), boom)
	assert.Equal(t, 1, mem.WriteCount(), "failed writes are not logged")

	mem.Fail(nil)
	require.NoError(t, doc.Set(ctx, map[string]any{"name": "x"}))
	assert.Equal(t, 2, mem.WriteCount())
}

func TestMemorySaveLoadFile(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Collection("workplaces").Doc("front_desk").Set(ctx, map[string]any{
		"name":  "Front Desk",
		"count": 2,
	}))

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, mem.SaveFile(path))

	loaded := NewMemory()
	require.NoError(t, loaded.LoadFile(path))

	snap, err := loaded.Collection("workplaces").Doc("front_desk").Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, "Front Desk", snap.Data["name"])
	// JSON numbers come back as float64.
	assert.Equal(t, float64(2), snap.Data["count"])
}

func TestMemoryLoadFileMissing(t *testing.T) {
	err := NewMemory().LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
