// Package mapping translates worker records between the application's
// snake_case dictionary form and the display-cased field names used by the
// document store. Records ride as plain maps end to end: the store schema
// predates this codebase and optional fields must keep their present/absent
// distinction through the round trip.
package mapping

import (
	"strings"
	"time"

	"github.com/example/workplace-scheduler/internal/availability"
	"github.com/example/workplace-scheduler/internal/models"
)

// Store-side field names. The display casing and the literal ampersand are
// part of the existing document schema and must not change.
const (
	DocFirstName    = "First Name"
	DocLastName     = "Last Name"
	DocEmail        = "Email"
	DocWorkStudy    = "Work Study"
	DocAvailability = "Days & Times Available"
	DocCreatedAt    = "created_at"
	DocUpdatedAt    = "updated_at"
)

// Application-side keys.
const (
	KeyID               = "id"
	KeyFirstName        = "first_name"
	KeyLastName         = "last_name"
	KeyEmail            = "email"
	KeyWorkStudy        = "work_study"
	KeyAvailabilityText = "availability_text"
	KeyAvailability     = "availability"
	KeyCreatedAt        = "created_at"
	KeyUpdatedAt        = "updated_at"
)

var timeNow = time.Now

// WorkerToDoc converts an application worker record to its stored form.
// Name and email fields default to ""; work_study flattens to "Yes"/"No";
// created_at is carried over when present and stamped fresh otherwise;
// updated_at is always stamped fresh. An empty record maps to an empty
// document. WorkerToDoc never fails.
func WorkerToDoc(worker map[string]any) map[string]any {
	if len(worker) == 0 {
		return map[string]any{}
	}
	workStudy := "No"
	if truthy(worker[KeyWorkStudy]) {
		workStudy = "Yes"
	}
	doc := map[string]any{
		DocFirstName:    fieldOr(worker, KeyFirstName, ""),
		DocLastName:     fieldOr(worker, KeyLastName, ""),
		DocEmail:        fieldOr(worker, KeyEmail, ""),
		DocWorkStudy:    workStudy,
		DocAvailability: fieldOr(worker, KeyAvailabilityText, ""),
	}
	if v, ok := worker[KeyCreatedAt]; ok {
		doc[DocCreatedAt] = v
	} else {
		doc[DocCreatedAt] = models.Timestamp(timeNow())
	}
	doc[DocUpdatedAt] = models.Timestamp(timeNow())
	return doc
}

// WorkerFromDoc converts a stored document to the application worker form.
// "Work Study" parses case-insensitively: true only for "yes", "y" or
// "true". The raw availability text is kept under availability_text and its
// parsed form under availability. A document id is carried over only when
// the caller put one in the map. Missing timestamps are stamped fresh so the
// application never sees a record without them. WorkerFromDoc never fails.
func WorkerFromDoc(doc map[string]any) map[string]any {
	if len(doc) == 0 {
		return map[string]any{}
	}
	worker := map[string]any{
		KeyFirstName:        fieldOr(doc, DocFirstName, ""),
		KeyLastName:         fieldOr(doc, DocLastName, ""),
		KeyEmail:            fieldOr(doc, DocEmail, ""),
		KeyWorkStudy:        workStudyTrue(doc[DocWorkStudy]),
		KeyAvailabilityText: fieldOr(doc, DocAvailability, ""),
	}
	if text, ok := doc[DocAvailability].(string); ok && text != "" {
		worker[KeyAvailability] = availability.Parse(text)
	} else {
		worker[KeyAvailability] = availability.Schedule{}
	}
	if id, ok := doc[KeyID]; ok {
		worker[KeyID] = id
	}
	if v, ok := doc[DocCreatedAt]; ok {
		worker[KeyCreatedAt] = v
	} else {
		worker[KeyCreatedAt] = models.Timestamp(timeNow())
	}
	if v, ok := doc[DocUpdatedAt]; ok {
		worker[KeyUpdatedAt] = v
	} else {
		worker[KeyUpdatedAt] = models.Timestamp(timeNow())
	}
	return worker
}

func workStudyTrue(v any) bool {
	s, _ := v.(string)
	switch strings.ToLower(s) {
	case "yes", "y", "true":
		return true
	}
	return false
}

// fieldOr returns the value stored under key, or def when the key is absent.
// Values copy verbatim; the mapper does not coerce types.
func fieldOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// truthy mirrors loose boolean semantics for records that passed through
// JSON: absent, false, "", and zero numbers are false, everything else true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
