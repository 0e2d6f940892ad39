package models

import "time"

// TimestampLayout is the wire format for created_at/updated_at fields.
// Fixed-width microseconds keep the strings lexicographically sortable,
// which the schedule history queries rely on.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp renders t as a UTC wire timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
