package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/workplace-scheduler/internal/mapping"
	"github.com/example/workplace-scheduler/internal/store"
)

// migrateConcurrency bounds how many workplaces migrate at once.
const migrateConcurrency = 3

// MigrateAll moves every listed workplace from the legacy flat layout to the
// nested layout. Workplaces migrate independently of each other; the first
// failure cancels the rest.
func MigrateAll(ctx context.Context, st store.Store, workplaceIDs []string) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(migrateConcurrency)
	for _, workplaceID := range workplaceIDs {
		eg.Go(func() error {
			return MigrateWorkplace(ctx, st, workplaceID)
		})
	}
	return eg.Wait()
}

// MigrateWorkplace copies one workplace's flat-layout data into the nested
// layout: the hours_of_operation document becomes a field on the workplace
// document, worker records move into the workers subcollection, and the
// current_schedule document seeds the schedules history. Flat documents are
// left in place so the migration can be re-run or rolled back.
func MigrateWorkplace(ctx context.Context, st store.Store, workplaceID string) error {
	id := mapping.NormalizeWorkplaceID(workplaceID)
	logCtx := slog.With("workplace", id)
	logCtx.Info("Migrating workplace to nested layout.")

	if res := EnsureWorkplace(ctx, st, id); !res.OK {
		return fmt.Errorf("failed to bootstrap workplace %q: %w", id, res.Err)
	}

	// Steps are independent; run all of them and report what failed.
	err := errors.Join(
		migrateHours(ctx, st, id, logCtx),
		migrateWorkers(ctx, st, id, logCtx),
		migrateSchedule(ctx, st, id, logCtx),
	)
	if err != nil {
		logCtx.Error("Migration finished with errors.", "error", err)
		return fmt.Errorf("failed to migrate %q: %w", id, err)
	}
	logCtx.Info("Migration completed.")
	return nil
}

func migrateHours(ctx context.Context, st store.Store, id string, logCtx *slog.Logger) error {
	snap, err := st.Collection(id).Doc(hoursOfOperationKey).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read flat hours: %w", err)
	}
	if !snap.Exists {
		logCtx.Info("No flat hours of operation to migrate.")
		return nil
	}
	nested := st.Collection(workplacesCollection).Doc(id)
	if err := nested.SetMerge(ctx, map[string]any{hoursOfOperationKey: snap.Data}); err != nil {
		return fmt.Errorf("failed to write nested hours: %w", err)
	}
	logCtx.Info("Migrated hours of operation.")
	return nil
}

func migrateWorkers(ctx context.Context, st store.Store, id string, logCtx *slog.Logger) error {
	snaps, err := st.Collection(id).Documents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list flat collection: %w", err)
	}

	// Flat collections mix worker records with hours and schedule
	// documents; only documents carrying an email are workers.
	var workers []store.Snapshot
	for _, snap := range snaps {
		if email, _ := snap.Data[mapping.DocEmail].(string); email != "" {
			workers = append(workers, snap)
		}
	}
	if len(workers) == 0 {
		logCtx.Info("No flat workers to migrate.")
		return nil
	}
	logCtx.Info("Migrating workers.", "count", len(workers))

	nested := st.Collection(workplacesCollection).Doc(id).Collection(workersSubcollection)
	for len(workers) > 0 {
		chunk := workers
		if len(chunk) > writeBatchSize {
			chunk = chunk[:writeBatchSize]
		}
		workers = workers[len(chunk):]

		batch := st.Batch()
		for _, snap := range chunk {
			// Round-trip through the mapper to normalize legacy
			// records: defaults filled, fresh updated_at.
			normalized := mapping.WorkerToDoc(mapping.WorkerFromDoc(snap.Data))
			batch.Set(nested.NewDoc(), normalized)
		}
		if err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to copy worker batch: %w", err)
		}
		logCtx.Info("Migrated worker batch.", "count", len(chunk))

		if len(workers) > 0 {
			if err := pause(ctx, writeBatchPause); err != nil {
				return err
			}
		}
	}
	return nil
}

func migrateSchedule(ctx context.Context, st store.Store, id string, logCtx *slog.Logger) error {
	snap, err := st.Collection(id).Doc(currentScheduleDocID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read flat current schedule: %w", err)
	}
	if !snap.Exists {
		logCtx.Info("No flat current schedule to migrate.")
		return nil
	}
	history := st.Collection(workplacesCollection).Doc(id).Collection(schedulesSubcollection)
	if _, err := history.Add(ctx, snap.Data); err != nil {
		return fmt.Errorf("failed to write schedule history: %w", err)
	}
	logCtx.Info("Migrated current schedule.")
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
