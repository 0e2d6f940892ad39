package models

// Shift is one scheduled block within a day. Assigned holds worker display
// names after any manual edits; RawAssigned keeps the solver's original
// assignment so edits can be reverted.
type Shift struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Assigned    []string `json:"assigned"`
	RawAssigned []string `json:"raw_assigned"`
}

// Schedule is one saved schedule for a workplace. Days maps day names to
// shifts. CreatedAt orders the schedule history; UpdatedAt is refreshed on
// every save.
type Schedule struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	WorkplaceID string             `json:"workplace_id"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	Days        map[string][]Shift `json:"days"`
}

// Fields returns the stored document form.
func (s Schedule) Fields() map[string]any {
	days := make(map[string]any, len(s.Days))
	for day, shifts := range s.Days {
		list := make([]any, 0, len(shifts))
		for _, sh := range shifts {
			list = append(list, map[string]any{
				"start":        sh.Start,
				"end":          sh.End,
				"assigned":     sh.Assigned,
				"raw_assigned": sh.RawAssigned,
			})
		}
		days[day] = list
	}
	return map[string]any{
		"name":         s.Name,
		"workplace_id": s.WorkplaceID,
		"created_at":   s.CreatedAt,
		"updated_at":   s.UpdatedAt,
		"days":         days,
	}
}

// ScheduleFromDoc rebuilds a Schedule from stored document fields. Like
// WeekHoursFromDoc it tolerates malformed entries by dropping them.
func ScheduleFromDoc(id string, data map[string]any) Schedule {
	s := Schedule{
		ID:          id,
		Name:        asString(data["name"]),
		WorkplaceID: asString(data["workplace_id"]),
		CreatedAt:   asString(data["created_at"]),
		UpdatedAt:   asString(data["updated_at"]),
		Days:        map[string][]Shift{},
	}
	rawDays, ok := data["days"].(map[string]any)
	if !ok {
		return s
	}
	for day, raw := range rawDays {
		items, ok := asSlice(raw)
		if !ok {
			continue
		}
		shifts := make([]Shift, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			shifts = append(shifts, Shift{
				Start:       asString(m["start"]),
				End:         asString(m["end"]),
				Assigned:    asStringSlice(m["assigned"]),
				RawAssigned: asStringSlice(m["raw_assigned"]),
			})
		}
		s.Days[day] = shifts
	}
	return s
}
