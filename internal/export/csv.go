// Package export renders saved schedules to files for sharing outside the
// application.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/workplace-scheduler/internal/availability"
	"github.com/example/workplace-scheduler/internal/models"
)

// ErrEmptySchedule is returned when a schedule has no shifts to export.
var ErrEmptySchedule = errors.New("export: schedule has no shifts")

var timeNow = time.Now

// ScheduleCSV writes one row per shift, days in week order, times in AM/PM
// form, to "<workplace>_<timestamp>.csv" under dir. It returns the path of
// the written file. The directory is created if needed; nothing is written
// for an empty schedule.
func ScheduleCSV(dir, workplaceID string, schedule models.Schedule) (string, error) {
	rows := [][]string{{"Day", "Start", "End", "Assigned"}}
	for _, day := range orderedDays(schedule.Days) {
		for _, shift := range schedule.Days[day] {
			rows = append(rows, []string{
				day,
				availability.FormatAMPM(shift.Start),
				availability.FormatAMPM(shift.End),
				strings.Join(shift.Assigned, ", "),
			})
		}
	}
	if len(rows) == 1 {
		return "", ErrEmptySchedule
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.csv", workplaceID, timeNow().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// orderedDays returns the schedule's day keys in week order, with any
// non-standard day names appended alphabetically so no shift is dropped.
func orderedDays(days map[string][]models.Shift) []string {
	var out []string
	seen := map[string]bool{}
	for _, day := range availability.Days {
		if _, ok := days[day]; ok {
			out = append(out, day)
			seen[day] = true
		}
	}
	var extra []string
	for day := range days {
		if !seen[day] {
			extra = append(extra, day)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
