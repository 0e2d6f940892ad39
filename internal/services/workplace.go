package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/example/workplace-scheduler/internal/mapping"
	"github.com/example/workplace-scheduler/internal/models"
	"github.com/example/workplace-scheduler/internal/store"
)

const (
	workplacesCollection   = "workplaces"
	workersSubcollection   = "workers"
	schedulesSubcollection = "schedules"
	metadataDocID          = "_metadata"
	hoursOfOperationKey    = "hours_of_operation"
	currentScheduleDocID   = "current_schedule"
)

var timeNow = time.Now

// Result reports the outcome of a bootstrap step. OK means the resource is
// usable; Created distinguishes first-time creation from the already-present
// case; Err carries the failure when OK is false.
type Result struct {
	OK      bool
	Created bool
	Err     error
}

// EnsureWorkplace makes sure the workplace document exists, creating it with
// a derived display name when missing. The id is normalized first, so any
// human-entered spelling is accepted. Safe to call repeatedly; repeat calls
// perform no writes.
func EnsureWorkplace(ctx context.Context, st store.Store, workplaceID string) Result {
	id := mapping.NormalizeWorkplaceID(workplaceID)
	logCtx := slog.With("workplace", id)

	ref := st.Collection(workplacesCollection).Doc(id)
	snap, err := ref.Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read workplace document.", "error", err)
		return Result{Err: err}
	}
	if snap.Exists {
		return Result{OK: true}
	}

	workplace := models.Workplace{
		Name:      displayName(id),
		CreatedAt: models.Timestamp(timeNow()),
	}
	if err := ref.Set(ctx, workplace.Fields()); err != nil {
		logCtx.Error("Failed to create workplace document.", "error", err)
		return Result{Err: err}
	}
	logCtx.Info("Created workplace document.", "name", workplace.Name)
	return Result{OK: true, Created: true}
}

// EnsureWorkersCollection makes sure the workplace's nested workers
// collection is visible by writing a _metadata marker document. An empty
// collection otherwise has no presence in the store and would push readers
// onto the legacy flat layout. The workplace document is bootstrapped as a
// side effect.
func EnsureWorkersCollection(ctx context.Context, st store.Store, workplaceID string) Result {
	id := mapping.NormalizeWorkplaceID(workplaceID)
	logCtx := slog.With("workplace", id)

	// Bootstrap the parent document; the marker write below does not
	// depend on its outcome.
	EnsureWorkplace(ctx, st, id)

	ref := st.Collection(workplacesCollection).Doc(id).Collection(workersSubcollection).Doc(metadataDocID)
	snap, err := ref.Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read workers collection marker.", "error", err)
		return Result{Err: err}
	}
	if snap.Exists {
		return Result{OK: true}
	}

	meta := models.CollectionMetadata{
		CreatedAt: models.Timestamp(timeNow()),
		Count:     0,
	}
	if err := ref.Set(ctx, meta.Fields()); err != nil {
		logCtx.Error("Failed to create workers collection marker.", "error", err)
		return Result{Err: err}
	}
	logCtx.Info("Created workers collection marker.")
	return Result{OK: true, Created: true}
}

// WorkersCollection locates the workers collection for a workplace. It
// probes the nested workplaces/{id}/workers layout first and falls back to
// the legacy flat layout, a top-level collection named after the workplace,
// when the nested one has no documents or the probe fails. The fallback is
// what lets data written before the nested migration keep working.
func WorkersCollection(ctx context.Context, st store.Store, workplaceID string) store.CollectionRef {
	id := mapping.NormalizeWorkplaceID(workplaceID)

	nested := st.Collection(workplacesCollection).Doc(id).Collection(workersSubcollection)
	snaps, err := nested.Limit(1).Documents(ctx)
	if err == nil && len(snaps) > 0 {
		slog.Debug("Using nested workers collection.", "workplace", id)
		return nested
	}
	slog.Debug("Using flat workers collection.", "workplace", id)
	return st.Collection(id)
}

func displayName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}
