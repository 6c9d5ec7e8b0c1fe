package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		part  float64
		total float64
		want  float64
	}{
		{name: "45 of 50", part: 45, total: 50, want: 90.00},
		{name: "zero total", part: 12, total: 0, want: 0},
		{name: "negative total", part: 12, total: -5, want: 0},
		{name: "thirds", part: 1, total: 3, want: 33.33},
		{name: "two thirds", part: 2, total: 3, want: 66.67},
		{name: "full", part: 7, total: 7, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.part, tt.total))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Hello", CleanString("  Hello \n"))
	assert.Equal(t, "hello", CleanString("  HeLLo ", true))
}
