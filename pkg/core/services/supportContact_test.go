package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
)

func TestResolveSupportContact(t *testing.T) {
	tests := []struct {
		name     string
		train    string
		coach    string
		expected string
	}{
		{"exact coach", "12333", "A1", "9000000001"},
		{"padded train", "012333", "a1", "9000000001"},
		{"sleeper coach uses EHK", "12333", "S4", "9000000002"},
		{"unassigned AC coach", "12333", "B2", ""},
		{"missing coach", "12333", " ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := assignedStore()
			builder := routing.NewBuilder(store, nil, zap.NewNop())

			contact, err := ResolveSupportContact(context.Background(), builder, zap.NewNop(), tt.train, tt.coach, queryDay(), middayOn())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, contact)
		})
	}
}
