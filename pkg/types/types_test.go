package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePolicyType tests case-insensitive parsing and rejection
func TestParsePolicyType(t *testing.T) {
	tests := []struct {
		input    string
		expected PolicyType
		wantErr  bool
	}{
		{"FCFS", PolicyFCFS, false},
		{"fcfs", PolicyFCFS, false},
		{"Balanced", PolicyBalanced, false},
		{"LEAST_LOADED", PolicyLeastLoaded, false},
		{"priority", PolicyPriority, false},
		{" bandit ", PolicyBandit, false},
		{"RANDOM", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicyType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestArmSnapshotAverageReward tests the average and its zero-count guard
func TestArmSnapshotAverageReward(t *testing.T) {
	assert.Equal(t, 0.0, ArmSnapshot{Node: "n1"}.AverageReward())
	assert.InDelta(t, 0.75, ArmSnapshot{Node: "n1", Selections: 4, TotalReward: 3.0}.AverageReward(), 1e-12)
}
