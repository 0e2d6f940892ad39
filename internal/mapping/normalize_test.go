package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWorkplaceID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"display name", "Front Desk", "front_desk"},
		{"multiple words", "IT Service Center", "it_service_center"},
		{"already normalized", "esports_lounge", "esports_lounge"},
		{"uppercase", "LIBRARY", "library"},
		{"empty", "", ""},
		{"consecutive spaces", "a  b", "a__b"},
		{"only spaces become underscores", "   ", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWorkplaceID(tt.raw))
		})
	}
}

func TestNormalizeWorkplaceIDIdempotent(t *testing.T) {
	for _, raw := range []string{"Front Desk", "Esports Lounge", "x", ""} {
		once := NormalizeWorkplaceID(raw)
		assert.Equal(t, once, NormalizeWorkplaceID(once), "normalizing %q twice must match once", raw)
	}
}
