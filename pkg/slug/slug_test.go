package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotlist/slotlist-backend-sub000/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "All Of Altis",
			expected: "all-of-altis",
		},
		{
			name:     "german umlauts fold",
			input:    "Spezialeinheit Lüchs",
			expected: "spezialeinheit-luchs",
		},
		{
			name:     "punctuation collapses",
			input:    "Op: Red -- Dawn!",
			expected: "op-red-dawn",
		},
		{
			name:     "dots never survive",
			input:    "7th.Cavalry",
			expected: "7th-cavalry",
		},
		{
			name:     "braces never survive",
			input:    "{{weird}} name",
			expected: "weird-name",
		},
		{
			name:     "no leading or trailing separator",
			input:    "  trimmed  ",
			expected: "trimmed",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input))
		})
	}
}

func TestMakeUnique(t *testing.T) {
	t.Parallel()

	s := slug.MakeUnique("All Of Altis", 6)
	assert.Regexp(t, `^all-of-altis-[a-z0-9]{6}$`, s)

	// Suffix length zero behaves like Make.
	assert.Equal(t, "all-of-altis", slug.MakeUnique("All Of Altis", 0))

	// Two calls should practically never collide.
	assert.NotEqual(t, slug.MakeUnique("x", 8), slug.MakeUnique("x", 8))
}
