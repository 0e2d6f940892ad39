package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workplace-scheduler/internal/mapping"
	"github.com/example/workplace-scheduler/internal/models"
	"github.com/example/workplace-scheduler/internal/store"
)

var (
	// ErrNoWorkplace is returned when an operation targets the current
	// workplace but none has been selected.
	ErrNoWorkplace = errors.New("no workplace selected")

	// ErrWorkerNotFound is returned when a lookup matches no worker.
	ErrWorkerNotFound = errors.New("worker not found")
)

const (
	// Batched writes stay under the store's 500 operation limit, with a
	// pause between batches to avoid hot-spotting.
	writeBatchSize  = 450
	writeBatchPause = 500 * time.Millisecond

	defaultScheduleLimit = 10
)

// reservedDocIDs are document ids that never describe workers. Legacy flat
// collections interleave the hours and schedule documents with worker
// records, and nested collections carry the _metadata marker.
var reservedDocIDs = map[string]bool{
	metadataDocID:        true,
	hoursOfOperationKey:  true,
	currentScheduleDocID: true,
}

// Manager is the application-facing API for worker, hours and schedule data
// of workplaces. Methods that take a workplaceID accept any human spelling;
// pass "" to target the workplace selected with SetWorkplace.
type Manager struct {
	store   store.Store
	current string
}

// NewManager returns a Manager on top of the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// SetWorkplace bootstraps a workplace and makes it the target for calls
// that pass an empty workplace id.
func (m *Manager) SetWorkplace(ctx context.Context, workplaceID string) error {
	id := mapping.NormalizeWorkplaceID(workplaceID)
	if res := EnsureWorkplace(ctx, m.store, id); !res.OK {
		return fmt.Errorf("failed to bootstrap workplace %q: %w", id, res.Err)
	}
	if res := EnsureWorkersCollection(ctx, m.store, id); !res.OK {
		return fmt.Errorf("failed to bootstrap workers collection for %q: %w", id, res.Err)
	}
	m.current = id
	slog.Info("Workplace selected.", "workplace", id)
	return nil
}

// Current returns the selected workplace id, or "" when none is selected.
func (m *Manager) Current() string {
	return m.current
}

func (m *Manager) resolveID(workplaceID string) (string, error) {
	if workplaceID == "" {
		if m.current == "" {
			return "", ErrNoWorkplace
		}
		return m.current, nil
	}
	return mapping.NormalizeWorkplaceID(workplaceID), nil
}

// Workers returns all worker records of a workplace in application form,
// each carrying its document id under "id".
func (m *Manager) Workers(ctx context.Context, workplaceID string) ([]map[string]any, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return nil, err
	}
	logCtx := slog.With("workplace", id)

	snaps, err := WorkersCollection(ctx, m.store, id).Documents(ctx)
	if err != nil {
		logCtx.Error("Failed to list workers.", "error", err)
		return nil, fmt.Errorf("failed to list workers for %q: %w", id, err)
	}

	workers := make([]map[string]any, 0, len(snaps))
	for _, snap := range snaps {
		if reservedDocIDs[snap.ID] {
			continue
		}
		doc := snap.Data
		if doc == nil {
			doc = map[string]any{}
		}
		doc[mapping.KeyID] = snap.ID
		workers = append(workers, mapping.WorkerFromDoc(doc))
	}
	logCtx.Info("Retrieved workers.", "count", len(workers))
	return workers, nil
}

// AddWorker stores a new worker record and returns its document id.
func (m *Manager) AddWorker(ctx context.Context, workplaceID string, worker map[string]any) (string, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return "", err
	}
	logCtx := slog.With("workplace", id)

	docID, err := WorkersCollection(ctx, m.store, id).Add(ctx, mapping.WorkerToDoc(worker))
	if err != nil {
		logCtx.Error("Failed to add worker.", "error", err)
		return "", fmt.Errorf("failed to add worker to %q: %w", id, err)
	}
	logCtx.Info("Added worker.", "docId", docID)
	return docID, nil
}

// UpdateWorker rewrites the fields of an existing worker record. Updating a
// missing record fails.
func (m *Manager) UpdateWorker(ctx context.Context, workplaceID, docID string, worker map[string]any) error {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return err
	}
	logCtx := slog.With("workplace", id, "docId", docID)

	doc := mapping.WorkerToDoc(worker)
	if err := WorkersCollection(ctx, m.store, id).Doc(docID).Update(ctx, doc); err != nil {
		logCtx.Error("Failed to update worker.", "error", err)
		return fmt.Errorf("failed to update worker %s in %q: %w", docID, id, err)
	}
	logCtx.Info("Updated worker.")
	return nil
}

// DeleteWorker removes a worker record by document id.
func (m *Manager) DeleteWorker(ctx context.Context, workplaceID, docID string) error {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return err
	}
	logCtx := slog.With("workplace", id, "docId", docID)

	if err := WorkersCollection(ctx, m.store, id).Doc(docID).Delete(ctx); err != nil {
		logCtx.Error("Failed to delete worker.", "error", err)
		return fmt.Errorf("failed to delete worker %s in %q: %w", docID, id, err)
	}
	logCtx.Info("Deleted worker.")
	return nil
}

// DeleteWorkerByEmail removes the first worker record whose Email field
// matches exactly. ErrWorkerNotFound is returned when none matches.
func (m *Manager) DeleteWorkerByEmail(ctx context.Context, workplaceID, email string) error {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return err
	}
	logCtx := slog.With("workplace", id, "email", email)

	col := WorkersCollection(ctx, m.store, id)
	snaps, err := col.WhereEqual(mapping.DocEmail, email).Documents(ctx)
	if err != nil {
		logCtx.Error("Failed to look up worker by email.", "error", err)
		return fmt.Errorf("failed to find worker %s in %q: %w", email, id, err)
	}
	if len(snaps) == 0 {
		logCtx.Warn("No worker found with email.")
		return fmt.Errorf("worker %s in %q: %w", email, id, ErrWorkerNotFound)
	}
	if err := col.Doc(snaps[0].ID).Delete(ctx); err != nil {
		logCtx.Error("Failed to delete worker.", "error", err)
		return fmt.Errorf("failed to delete worker %s in %q: %w", email, id, err)
	}
	logCtx.Info("Deleted worker by email.", "docId", snaps[0].ID)
	return nil
}

// RemoveAllWorkers deletes every document in the workers collection,
// including the _metadata marker, in batches below the store's write limit.
// It returns the number of documents deleted.
func (m *Manager) RemoveAllWorkers(ctx context.Context, workplaceID string) (int, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return 0, err
	}
	logCtx := slog.With("workplace", id)

	col := WorkersCollection(ctx, m.store, id)
	snaps, err := col.Documents(ctx)
	if err != nil {
		logCtx.Error("Failed to list workers for removal.", "error", err)
		return 0, fmt.Errorf("failed to list workers for %q: %w", id, err)
	}

	deleted := 0
	for len(snaps) > 0 {
		chunk := snaps
		if len(chunk) > writeBatchSize {
			chunk = chunk[:writeBatchSize]
		}
		snaps = snaps[len(chunk):]

		batch := m.store.Batch()
		for _, snap := range chunk {
			batch.Delete(col.Doc(snap.ID))
		}
		if err := batch.Commit(ctx); err != nil {
			logCtx.Error("Failed to delete worker batch.", "error", err, "deleted", deleted)
			return deleted, fmt.Errorf("failed to delete workers in %q: %w", id, err)
		}
		deleted += len(chunk)

		if len(snaps) > 0 {
			if err := pause(ctx, writeBatchPause); err != nil {
				return deleted, err
			}
		}
	}
	logCtx.Info("Removed all workers.", "deleted", deleted)
	return deleted, nil
}

// Hours returns the workplace's hours of operation. The nested layout, an
// hours_of_operation field on the workplace document, wins; the legacy flat
// layout, a top-level {workplace}/hours_of_operation document, is the
// fallback. No hours anywhere yields an empty WeekHours, not an error.
func (m *Manager) Hours(ctx context.Context, workplaceID string) (models.WeekHours, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return nil, err
	}
	logCtx := slog.With("workplace", id)

	snap, err := m.store.Collection(workplacesCollection).Doc(id).Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read workplace document.", "error", err)
		return nil, fmt.Errorf("failed to read hours for %q: %w", id, err)
	}
	if snap.Exists {
		if raw, ok := snap.Data[hoursOfOperationKey]; ok {
			if hours := models.WeekHoursFromDoc(raw); len(hours) > 0 {
				logCtx.Debug("Retrieved hours of operation from nested layout.")
				return hours, nil
			}
		}
	}

	snap, err = m.store.Collection(id).Doc(hoursOfOperationKey).Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read flat hours document.", "error", err)
		return nil, fmt.Errorf("failed to read hours for %q: %w", id, err)
	}
	if snap.Exists {
		logCtx.Debug("Retrieved hours of operation from flat layout.")
		return models.WeekHoursFromDoc(snap.Data), nil
	}

	logCtx.Warn("No hours of operation found.")
	return models.WeekHours{}, nil
}

// SetHours writes the hours of operation to both layouts: merged into the
// workplace document for current readers and copied to the flat document for
// anything still on the legacy layout.
func (m *Manager) SetHours(ctx context.Context, workplaceID string, hours models.WeekHours) error {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return err
	}
	logCtx := slog.With("workplace", id)

	nested := m.store.Collection(workplacesCollection).Doc(id)
	if err := nested.SetMerge(ctx, map[string]any{hoursOfOperationKey: hours.Fields()}); err != nil {
		logCtx.Error("Failed to write nested hours.", "error", err)
		return fmt.Errorf("failed to write hours for %q: %w", id, err)
	}
	flat := m.store.Collection(id).Doc(hoursOfOperationKey)
	if err := flat.Set(ctx, hours.Fields()); err != nil {
		logCtx.Error("Failed to write flat hours copy.", "error", err)
		return fmt.Errorf("failed to write hours copy for %q: %w", id, err)
	}
	logCtx.Info("Updated hours of operation.")
	return nil
}

// SaveSchedule stores a schedule in the workplace's schedule history and
// refreshes the flat current_schedule copy. Blank identity fields are filled
// in: workplace id, a dated display name, and timestamps. The new history
// document's id is returned.
func (m *Manager) SaveSchedule(ctx context.Context, workplaceID string, schedule models.Schedule) (string, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return "", err
	}
	logCtx := slog.With("workplace", id)

	now := timeNow()
	if schedule.WorkplaceID == "" {
		schedule.WorkplaceID = id
	}
	if schedule.CreatedAt == "" {
		schedule.CreatedAt = models.Timestamp(now)
	}
	schedule.UpdatedAt = models.Timestamp(now)
	if schedule.Name == "" {
		schedule.Name = fmt.Sprintf("%s Schedule %s", displayName(id), now.Format("2006-01-02"))
	}

	history := m.store.Collection(workplacesCollection).Doc(id).Collection(schedulesSubcollection)
	docID, err := history.Add(ctx, schedule.Fields())
	if err != nil {
		logCtx.Error("Failed to save schedule.", "error", err)
		return "", fmt.Errorf("failed to save schedule for %q: %w", id, err)
	}
	if err := m.store.Collection(id).Doc(currentScheduleDocID).Set(ctx, schedule.Fields()); err != nil {
		logCtx.Error("Failed to write current schedule copy.", "error", err)
		return "", fmt.Errorf("failed to write current schedule for %q: %w", id, err)
	}
	logCtx.Info("Saved schedule.", "docId", docID, "name", schedule.Name)
	return docID, nil
}

// Schedules returns the newest schedules first, at most limit of them
// (default 10). When the history subcollection is empty the legacy flat
// current_schedule document is returned under the id "current".
func (m *Manager) Schedules(ctx context.Context, workplaceID string, limit int) ([]models.Schedule, error) {
	id, err := m.resolveID(workplaceID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultScheduleLimit
	}
	logCtx := slog.With("workplace", id)

	history := m.store.Collection(workplacesCollection).Doc(id).Collection(schedulesSubcollection)
	snaps, err := history.OrderByDesc("created_at").Limit(limit).Documents(ctx)
	if err != nil {
		logCtx.Error("Failed to list schedules.", "error", err)
		return nil, fmt.Errorf("failed to list schedules for %q: %w", id, err)
	}
	if len(snaps) > 0 {
		schedules := make([]models.Schedule, 0, len(snaps))
		for _, snap := range snaps {
			schedules = append(schedules, models.ScheduleFromDoc(snap.ID, snap.Data))
		}
		return schedules, nil
	}

	snap, err := m.store.Collection(id).Doc(currentScheduleDocID).Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read flat current schedule.", "error", err)
		return nil, fmt.Errorf("failed to read current schedule for %q: %w", id, err)
	}
	if snap.Exists {
		logCtx.Debug("Using flat current schedule.")
		return []models.Schedule{models.ScheduleFromDoc("current", snap.Data)}, nil
	}
	logCtx.Debug("No schedules found.")
	return nil, nil
}
