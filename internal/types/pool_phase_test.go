package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolPhaseAt(t *testing.T) {
	const (
		begin = int64(1_000)
		end   = int64(2_000)
	)

	tests := []struct {
		name        string
		initialized bool
		now         int64
		expected    PoolPhase
	}{
		{"not initialized", false, 1_500, PhaseDeployed},
		{"before window", true, 999, PhaseFunding},
		{"window open boundary", true, begin, PhaseActive},
		{"inside window", true, 1_500, PhaseActive},
		{"window end boundary", true, end, PhaseEnded},
		{"after window", true, 3_000, PhaseEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PoolPhaseAt(tt.initialized, begin, end, tt.now))
		})
	}
}
