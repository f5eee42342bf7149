package types

// Enum values for the derived pool lifecycle phase. The phase is not stored;
// it is computed from the pool's window and init state whenever a listing or
// metric needs it.
type PoolPhase string

const (
	// PhaseDeployed: created but not yet initialized (no asset opt-ins).
	PhaseDeployed PoolPhase = "DEPLOYED"
	// PhaseFunding: initialized, reward window not yet open.
	PhaseFunding PoolPhase = "FUNDING"
	// PhaseActive: inside [begin, end), rewards accruing.
	PhaseActive PoolPhase = "ACTIVE"
	// PhaseEnded: past the window end; deposits/withdrawals still allowed,
	// accrual capped at end.
	PhaseEnded PoolPhase = "ENDED"
)

func (p PoolPhase) String() string {
	return string(p)
}

// PoolPhaseAt derives the lifecycle phase at ledger time now.
func PoolPhaseAt(initialized bool, beginTimestamp, endTimestamp, now int64) PoolPhase {
	switch {
	case !initialized:
		return PhaseDeployed
	case now < beginTimestamp:
		return PhaseFunding
	case now < endTimestamp:
		return PhaseActive
	default:
		return PhaseEnded
	}
}
