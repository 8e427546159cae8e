package sim

import "math/rand"

// TrafficOutcome labels what the overtaking manager did for one entrant on
// one tick.
type TrafficOutcome int

const (
	TrafficClear TrafficOutcome = iota
	TrafficLaneChanged
	TrafficSqueezeWon
	TrafficSqueezeLost
	TrafficHeld
)

// OvertakeManager decides lane occupancy per tick: it detects blocking,
// attempts lane changes or squeeze plays, and applies traffic-response
// speed penalties. It mutates only EntrantRunState.Lane and the blocked
// entrant's effective speed for the current tick; every branch resolves to
// a deterministic numeric outcome given the traffic RNG draws.
type OvertakeManager struct {
	cfg *Config
	rng *rand.Rand
}

// NewOvertakeManager creates a manager over validated config and the run's
// traffic RNG stream.
func NewOvertakeManager(cfg *Config, rng *rand.Rand) *OvertakeManager {
	return &OvertakeManager{cfg: cfg, rng: rng}
}

// Resolve runs the traffic state machine for states[i]. progress is the
// race-progress fraction; style is the entrant's running style. Call after
// the tick's base speed has been written to the state.
func (m *OvertakeManager) Resolve(states []*EntrantRunState, i int, progress float64, style RunningStyle) TrafficOutcome {
	st := states[i]
	if st.Finished {
		return TrafficClear
	}

	// The detection threshold widens once the stretch run begins: traffic
	// that could be waited out early in the race must be dealt with late.
	threshold := m.cfg.Traffic.LookAheadGap
	if progress >= 0.70 {
		threshold *= m.cfg.Traffic.StretchGapScale
	}
	if !m.blockedWithin(states, i, threshold) {
		return TrafficClear
	}

	// Prefer the innermost lane with enough clearance, then roll for the
	// change itself. A failed roll is traffic risk, not a free retry.
	if lane := m.findLane(states, i, m.cfg.Traffic.ClearanceAhead, m.cfg.Traffic.ClearanceBehind); lane != 0 {
		if m.rng.Float64() >= m.cfg.Traffic.LaneChangeFailProb {
			st.Lane = lane
			st.speed *= m.cfg.Traffic.LaneChangeCost
			return TrafficLaneChanged
		}
	}

	// No clean lane: occasionally try to squeeze through a marginal gap.
	if m.rng.Float64() < m.cfg.Traffic.SqueezeChance {
		if lane := m.findLane(states, i, m.cfg.Traffic.ClearanceAhead/2, m.cfg.Traffic.ClearanceBehind/2); lane != 0 {
			if m.rng.Float64() < m.cfg.Traffic.SqueezeSuccessProb {
				st.Lane = lane
				st.speed *= m.cfg.Traffic.SqueezeSuccessCost
				return TrafficSqueezeWon
			}
			st.speed *= m.cfg.Traffic.SqueezeFailPenalty
			return TrafficSqueezeLost
		}
	}

	// Boxed in. Patient styles tolerate this better than front-runners.
	st.speed *= m.cfg.Styles[style].BlockedPenalty
	return TrafficHeld
}

// blockedWithin reports whether a still-running entrant ahead in the same
// lane sits inside the detection threshold.
func (m *OvertakeManager) blockedWithin(states []*EntrantRunState, i int, threshold float64) bool {
	st := states[i]
	for j, other := range states {
		if j == i || other.Finished || other.Lane != st.Lane {
			continue
		}
		gap := other.Distance - st.Distance
		if gap >= 0 && gap <= threshold {
			return true
		}
	}
	return false
}

// findLane returns the innermost lane (1 = rail) with sufficient clearance,
// or 0 when none qualifies. Clearance is asymmetric: ahead is the room to
// the next entrant in front in the target lane, behind to the next one back.
func (m *OvertakeManager) findLane(states []*EntrantRunState, i int, ahead, behind float64) int {
	st := states[i]
	lanes := min(len(states), m.cfg.Traffic.MaxLanes)
	for lane := 1; lane <= lanes; lane++ {
		if lane == st.Lane {
			continue
		}
		if m.laneClear(states, i, lane, ahead, behind) {
			return lane
		}
	}
	return 0
}

func (m *OvertakeManager) laneClear(states []*EntrantRunState, i, lane int, ahead, behind float64) bool {
	st := states[i]
	for j, other := range states {
		if j == i || other.Finished || other.Lane != lane {
			continue
		}
		gap := other.Distance - st.Distance
		if gap >= 0 && gap < ahead {
			return false
		}
		if gap < 0 && -gap < behind {
			return false
		}
	}
	return true
}
