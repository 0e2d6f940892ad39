package models

// TimeRange is one open interval within a day, in 24-hour "HH:MM" text.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeekHours maps day names to the ranges a workplace is open. Days with no
// entry are closed; an explicit empty slice also means closed.
type WeekHours map[string][]TimeRange

// Fields returns the stored document form.
func (h WeekHours) Fields() map[string]any {
	out := make(map[string]any, len(h))
	for day, ranges := range h {
		list := make([]any, 0, len(ranges))
		for _, r := range ranges {
			list = append(list, map[string]any{
				"start": r.Start,
				"end":   r.End,
			})
		}
		out[day] = list
	}
	return out
}

// WeekHoursFromDoc rebuilds WeekHours from stored document fields. Values
// that do not have the expected shape are dropped rather than failing the
// whole read; older documents are not always well formed.
func WeekHoursFromDoc(v any) WeekHours {
	data, ok := v.(map[string]any)
	if !ok {
		return WeekHours{}
	}
	hours := WeekHours{}
	for day, raw := range data {
		items, ok := asSlice(raw)
		if !ok {
			continue
		}
		ranges := make([]TimeRange, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ranges = append(ranges, TimeRange{
				Start: asString(m["start"]),
				End:   asString(m["end"]),
			})
		}
		hours[day] = ranges
	}
	return hours
}
