package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workplace-scheduler/internal/store"
)

func seedFlatWorkplace(mem *store.Memory, id string) {
	mem.Seed(id+"/w1", map[string]any{
		"First Name":             "Jane",
		"Last Name":              "Doe",
		"Email":                  "jane@example.edu",
		"Work Study":             "yes",
		"Days & Times Available": "Mon 9:00-17:00",
	})
	mem.Seed(id+"/w2", map[string]any{
		"Email": "sam@example.edu",
	})
	mem.Seed(id+"/hours_of_operation", map[string]any{
		"Monday": []any{map[string]any{"start": "9:00", "end": "17:00"}},
	})
	mem.Seed(id+"/current_schedule", map[string]any{
		"name": "Legacy Schedule",
	})
}

func TestMigrateWorkplace(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedFlatWorkplace(mem, "esports_lounge")

	require.NoError(t, MigrateWorkplace(ctx, mem, "Esports Lounge"))

	workplace, err := mem.Collection("workplaces").Doc("esports_lounge").Get(ctx)
	require.NoError(t, err)
	require.True(t, workplace.Exists)
	assert.Equal(t, "Esports Lounge", workplace.Data["name"])
	assert.Contains(t, workplace.Data, "hours_of_operation")

	workers, err := mem.Collection("workplaces").Doc("esports_lounge").Collection("workers").Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 2, "hours and schedule documents must not migrate as workers")

	schedules, err := mem.Collection("workplaces").Doc("esports_lounge").Collection("schedules").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "Legacy Schedule", schedules[0].Data["name"])

	// Flat documents stay put so the migration can be re-run.
	flat, err := mem.Collection("esports_lounge").Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, flat, 4)
}

func TestMigrateWorkplaceNormalizesRecords(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.Seed("lounge/w1", map[string]any{
		"Email":      "jane@example.edu",
		"Work Study": "y",
	})

	require.NoError(t, MigrateWorkplace(ctx, mem, "lounge"))

	workers, err := mem.Collection("workplaces").Doc("lounge").Collection("workers").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	doc := workers[0].Data
	assert.Equal(t, "Yes", doc["Work Study"], "records normalize through the mapper round trip")
	assert.Equal(t, "", doc["First Name"], "missing fields are filled with defaults")
	assert.NotEmpty(t, doc["updated_at"])
}

func TestMigrateWorkplaceEmptyFlatLayout(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, MigrateWorkplace(ctx, mem, "brand_new"))

	workplace, err := mem.Collection("workplaces").Doc("brand_new").Get(ctx)
	require.NoError(t, err)
	assert.True(t, workplace.Exists, "the workplace document is still bootstrapped")

	workers, err := mem.Collection("workplaces").Doc("brand_new").Collection("workers").Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, workers)
}

func TestMigrateAll(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedFlatWorkplace(mem, "esports_lounge")
	seedFlatWorkplace(mem, "it_service_center")

	require.NoError(t, MigrateAll(ctx, mem, []string{"esports_lounge", "it_service_center", "esports_arena"}))

	for _, id := range []string{"esports_lounge", "it_service_center", "esports_arena"} {
		snap, err := mem.Collection("workplaces").Doc(id).Get(ctx)
		require.NoError(t, err)
		assert.True(t, snap.Exists, "workplace %s", id)
	}
}

func TestMigrateAllPropagatesFailure(t *testing.T) {
	mem := store.NewMemory()
	seedFlatWorkplace(mem, "esports_lounge")
	boom := errors.New("merge rejected")
	mem.Fail(func(op, path string) error {
		if op == store.OpMerge {
			return boom
		}
		return nil
	})

	err := MigrateAll(context.Background(), mem, []string{"esports_lounge"})

	assert.ErrorIs(t, err, boom)
}
