package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresExactMatch(t *testing.T) {
	tests := []struct {
		coach    string
		expected bool
	}{
		{"A1", true},
		{"b2", true},
		{" M1", true},
		{"G3", true},
		{"H1", true},
		{"C1", true},
		{"S4", false},
		{"D2", false},
		{"E1", false},
		{"GEN", true},
		{"", false},
		{"1A", false},
	}

	for _, tt := range tests {
		t.Run(tt.coach, func(t *testing.T) {
			assert.Equal(t, tt.expected, RequiresExactMatch(tt.coach))
		})
	}
}
