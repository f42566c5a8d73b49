package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 42, ParseIntDefault("42", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, -3, ParseIntDefault("-3", 7))
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		page, size int
		from, lim  int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 20, 40, 20},
		{"page clamped", 0, 10, 0, 10},
		{"negative page clamped", -5, 10, 0, 10},
		{"zero size falls back", 2, 0, 10, 10},
		{"oversized falls back", 2, 500, 10, 10},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			from, lim := Calculate(tc.page, tc.size)
			assert.Equal(t, tc.from, from)
			assert.Equal(t, tc.lim, lim)
		})
	}
}
