package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"city state", "Denver, CO", "denver_co"},
		{"punctuation stripped", "St. Louis, MO", "st_louis_mo"},
		{"multi word", "New York City", "new_york_city"},
		{"diacritics folded", "Montréal", "montreal"},
		{"extra spaces collapsed", "  Austin   TX ", "austin_tx"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slug(tc.in))
		})
	}
}

func TestSlug_Truncated(t *testing.T) {
	long := strings.Repeat("ab ", 60)
	got := Slug(long)
	assert.LessOrEqual(t, len(got), 60)
	assert.NotEmpty(t, got)
}

func TestSlug_Stable(t *testing.T) {
	assert.Equal(t, Slug("Denver, CO"), Slug("Denver, CO"))
}
