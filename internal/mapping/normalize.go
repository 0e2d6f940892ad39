package mapping

import "strings"

// NormalizeWorkplaceID converts a human-entered workplace name to its
// canonical document id: lowercased, spaces replaced with underscores.
// Already-normalized ids pass through unchanged, so the function is safe to
// apply at every boundary.
func NormalizeWorkplaceID(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(raw), " ", "_")
}
