package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampIsSortable(t *testing.T) {
	earlier := Timestamp(time.Date(2026, 3, 1, 9, 0, 0, 500, time.UTC))
	later := Timestamp(time.Date(2026, 3, 1, 9, 0, 1, 0, time.UTC))

	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later), "timestamps must be fixed width")
}

func TestWeekHoursFromDocToleratesWireShapes(t *testing.T) {
	// Slice values arrive as []any after a JSON round trip.
	doc := map[string]any{
		"Monday": []any{
			map[string]any{"start": "9:00", "end": "17:00"},
		},
		"Tuesday": []any{
			"not a range",
			map[string]any{"start": "10:00", "end": "14:00"},
		},
		"Wednesday": "closed",
	}

	hours := WeekHoursFromDoc(doc)

	require.Contains(t, hours, "Monday")
	assert.Equal(t, []TimeRange{{Start: "9:00", End: "17:00"}}, hours["Monday"])
	assert.Equal(t, []TimeRange{{Start: "10:00", End: "14:00"}}, hours["Tuesday"])
	assert.NotContains(t, hours, "Wednesday")
}

func TestWeekHoursFromDocNonMapInput(t *testing.T) {
	assert.Empty(t, WeekHoursFromDoc(nil))
	assert.Empty(t, WeekHoursFromDoc("garbage"))
}

func TestScheduleRoundTrip(t *testing.T) {
	s := Schedule{
		Name:        "Esports Lounge Schedule 2026-03-01",
		WorkplaceID: "esports_lounge",
		CreatedAt:   "2026-03-01T09:00:00.000000Z",
		UpdatedAt:   "2026-03-01T09:00:00.000000Z",
		Days: map[string][]Shift{
			"Monday": {
				{Start: "9:00", End: "13:00", Assigned: []string{"Jane D."}, RawAssigned: []string{"Jane D."}},
			},
		},
	}

	got := ScheduleFromDoc("doc-1", s.Fields())

	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, s.WorkplaceID, got.WorkplaceID)
	assert.Equal(t, s.Days, got.Days)
}

func TestScheduleFromDocMissingDays(t *testing.T) {
	got := ScheduleFromDoc("current", map[string]any{"name": "Imported"})

	assert.Equal(t, "Imported", got.Name)
	require.NotNil(t, got.Days)
	assert.Empty(t, got.Days)
}
