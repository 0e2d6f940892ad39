// Package models defines the document shapes the scheduler stores: workplace
// records, hours of operation, and saved schedules. Worker records stay as
// plain maps because their field set is open-ended; the fixed shapes here get
// proper types with map conversions for the document store.
package models

// Workplace is the root document for one workplace.
type Workplace struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Fields returns the stored document form.
func (w Workplace) Fields() map[string]any {
	return map[string]any{
		"name":       w.Name,
		"created_at": w.CreatedAt,
	}
}

// WorkplaceFromDoc rebuilds a Workplace from stored document fields.
func WorkplaceFromDoc(id string, data map[string]any) Workplace {
	return Workplace{
		ID:        id,
		Name:      asString(data["name"]),
		CreatedAt: asString(data["created_at"]),
	}
}

// CollectionMetadata is the marker document that keeps an otherwise empty
// workers collection visible to collection listings.
type CollectionMetadata struct {
	CreatedAt string `json:"created_at"`
	Count     int64  `json:"count"`
}

// Fields returns the stored document form.
func (m CollectionMetadata) Fields() map[string]any {
	return map[string]any{
		"created_at": m.CreatedAt,
		"count":      m.Count,
	}
}
