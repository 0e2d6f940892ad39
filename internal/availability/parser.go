// Package availability parses free-text availability declarations such as
// "Monday 9:00-17:00, Wed 18:00-2:00" into a per-day schedule.
package availability

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Window is one contiguous span of available time within a single day.
// Start and End keep the original 24-hour clock text; StartHour and EndHour
// carry the same instants as decimal hours. A window that wraps past
// midnight has EndHour pushed into the next day (EndHour > 24).
type Window struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	StartHour float64 `json:"start_hour"`
	EndHour   float64 `json:"end_hour"`
}

// Schedule maps canonical day names ("Monday", ...) to availability windows.
type Schedule map[string][]Window

// Days lists the canonical day names in week order, Sunday first.
var Days = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// dayNames resolves full and three-letter day spellings, lowercased.
var dayNames = map[string]string{
	"sunday": "Sunday", "sun": "Sunday",
	"monday": "Monday", "mon": "Monday",
	"tuesday": "Tuesday", "tue": "Tuesday",
	"wednesday": "Wednesday", "wed": "Wednesday",
	"thursday": "Thursday", "thu": "Thursday",
	"friday": "Friday", "fri": "Friday",
	"saturday": "Saturday", "sat": "Saturday",
}

// blockPattern matches one "<day> <start>-<end>" block, e.g. "Mon 9:00-17:30".
var blockPattern = regexp.MustCompile(`(?i)^(\w+)\s+(\d{1,2}:\d{2})-(\d{1,2}:\d{2})`)

// Parse converts a comma-separated availability string into a Schedule.
// Blocks that do not match the expected shape, or that name an unknown day,
// are skipped silently. Parse never fails; malformed input yields an empty
// or partial Schedule.
func Parse(raw string) Schedule {
	sched := Schedule{}
	if strings.TrimSpace(raw) == "" {
		return sched
	}
	for _, block := range strings.Split(raw, ",") {
		m := blockPattern.FindStringSubmatch(strings.TrimSpace(block))
		if m == nil {
			continue
		}
		day, ok := dayNames[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		start, end := m[2], m[3]
		startHour := ClockToHour(start)
		endHour := ClockToHour(end)
		if endHour <= startHour {
			// Crosses midnight, e.g. 22:00-2:00.
			endHour += 24
		}
		sched[day] = append(sched[day], Window{
			Start:     start,
			End:       end,
			StartHour: startHour,
			EndHour:   endHour,
		})
	}
	return sched
}

// ClockToHour converts "HH:MM" to decimal hours ("9:30" -> 9.5). Plain
// numbers pass through ("14.5" -> 14.5); anything else yields 0.
func ClockToHour(clock string) float64 {
	if h, m, ok := splitClock(clock); ok {
		return float64(h) + float64(m)/60
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(clock), 64); err == nil {
		return f
	}
	return 0
}

// HourToClock renders decimal hours back as a 24-hour "HH:MM" string.
func HourToClock(hour float64) string {
	h := int(hour)
	m := int(math.Round((hour - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatAMPM renders a 24-hour "HH:MM" string as "H:MM AM/PM" for display.
// Input that is not a clock string is returned unchanged.
func FormatAMPM(clock string) string {
	h, m, ok := splitClock(clock)
	if !ok {
		return clock
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, period)
}

func splitClock(clock string) (hour, minute int, ok bool) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}
