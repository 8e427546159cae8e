package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func trafficStates(lanes []int, distances []float64) []*EntrantRunState {
	states := make([]*EntrantRunState, len(lanes))
	for i := range lanes {
		states[i] = &EntrantRunState{Entrant: i, Lane: lanes[i], Distance: distances[i], Stamina: 1, speed: 0.1}
	}
	return states
}

func TestResolve_ClearLaneNoAction(t *testing.T) {
	cfg := DefaultConfig()
	m := NewOvertakeManager(cfg, rand.New(rand.NewSource(1)))

	// Leader far ahead in the same lane, well outside the look-ahead gap.
	states := trafficStates([]int{1, 1}, []float64{2.0, 1.0})
	got := m.Resolve(states, 1, 0.3, StyleStalker)

	assert.Equal(t, TrafficClear, got)
	assert.Equal(t, 1, states[1].Lane)
	assert.Equal(t, 0.1, states[1].speed)
}

func TestResolve_BlockedMovesToInnermostClearLane(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Traffic.LaneChangeFailProb = 0 // deterministic success
	m := NewOvertakeManager(cfg, rand.New(rand.NewSource(1)))

	// Entrant 2 trails entrant 0 inside the gap in lane 2; lane 1 is open.
	states := trafficStates([]int{2, 3, 2}, []float64{1.05, 1.0, 1.0})
	got := m.Resolve(states, 2, 0.3, StyleStalker)

	assert.Equal(t, TrafficLaneChanged, got)
	assert.Equal(t, 1, states[2].Lane, "innermost lane preferred")
	assert.InDelta(t, 0.1*cfg.Traffic.LaneChangeCost, states[2].speed, 1e-12)
}

func TestResolve_AsymmetricClearance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Traffic.LaneChangeFailProb = 0
	cfg.Traffic.SqueezeChance = 0
	m := NewOvertakeManager(cfg, rand.New(rand.NewSource(1)))

	// Lane 1 has an entrant ahead by more than ClearanceBehind but less
	// than ClearanceAhead: not clear. Lane 3 has one behind by more than
	// ClearanceBehind: clear. The asymmetry picks lane 3 over lane 1.
	ahead := (cfg.Traffic.ClearanceBehind + cfg.Traffic.ClearanceAhead) / 2
	states := trafficStates(
		[]int{2, 1, 3, 2},
		[]float64{1.05, 1.0 + ahead, 1.0 - cfg.Traffic.ClearanceBehind - 0.01, 1.0})
	got := m.Resolve(states, 3, 0.3, StyleStalker)

	assert.Equal(t, TrafficLaneChanged, got)
	assert.Equal(t, 3, states[3].Lane)
}

func TestResolve_BoxedInAppliesStylePenalty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Traffic.MaxLanes = 2      // narrow track
	cfg.Traffic.SqueezeChance = 0 // never attempt the squeeze
	m := NewOvertakeManager(cfg, rand.New(rand.NewSource(1)))

	// Two-wide wall directly ahead with no free lane on a two-lane track.
	states := trafficStates([]int{1, 2, 1}, []float64{1.05, 1.05, 1.0})

	for _, style := range []RunningStyle{StyleFrontRunner, StyleDeepCloser} {
		st := states[2]
		st.speed = 0.1
		got := m.Resolve(states, 2, 0.3, style)
		assert.Equal(t, TrafficHeld, got)
		assert.InDelta(t, 0.1*cfg.Styles[style].BlockedPenalty, st.speed, 1e-12)
	}

	// Patient closers lose less speed than aggressive front-runners.
	assert.Greater(t, cfg.Styles[StyleDeepCloser].BlockedPenalty, cfg.Styles[StyleFrontRunner].BlockedPenalty)
}

func TestResolve_SqueezeOutcomesCarrySpeedConsequences(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Traffic.MaxLanes = 2
	cfg.Traffic.LaneChangeFailProb = 1 // full-clearance change always fails the roll
	cfg.Traffic.SqueezeChance = 1      // always attempt
	states := func() []*EntrantRunState {
		// Marginal gap in lane 2: clear at half-clearance but not at full.
		margin := cfg.Traffic.ClearanceAhead * 0.75
		return trafficStates([]int{1, 2, 1}, []float64{1.05, 1.0 + margin, 1.0})
	}

	const marginalLane = 2

	sawWin, sawLoss := false, false
	for seed := int64(0); seed < 40 && !(sawWin && sawLoss); seed++ {
		st := states()
		m := NewOvertakeManager(cfg, rand.New(rand.NewSource(seed)))
		switch m.Resolve(st, 2, 0.3, StyleMidPack) {
		case TrafficSqueezeWon:
			sawWin = true
			assert.Equal(t, marginalLane, st[2].Lane)
			assert.InDelta(t, 0.1*cfg.Traffic.SqueezeSuccessCost, st[2].speed, 1e-12)
		case TrafficSqueezeLost:
			sawLoss = true
			assert.Equal(t, 1, st[2].Lane, "failed squeeze keeps the lane")
			assert.InDelta(t, 0.1*cfg.Traffic.SqueezeFailPenalty, st[2].speed, 1e-12)
		default:
			t.Fatal("expected a squeeze attempt every tick")
		}
	}
	assert.True(t, sawWin, "no squeeze succeeded across 40 seeds")
	assert.True(t, sawLoss, "no squeeze failed across 40 seeds")
}

func TestResolve_LaneStaysWithinField(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(11))
	m := NewOvertakeManager(cfg, rng)

	states := trafficStates([]int{1, 2, 3, 4, 5, 6}, []float64{1.0, 1.02, 1.04, 1.06, 1.08, 1.10})
	for tick := 0; tick < 500; tick++ {
		for i := range states {
			states[i].speed = 0.1
			m.Resolve(states, i, float64(tick)/500, StyleStalker)
			if states[i].Lane < 1 || states[i].Lane > len(states) {
				t.Fatalf("tick %d: lane %d outside [1,%d]", tick, states[i].Lane, len(states))
			}
			states[i].Distance += states[i].speed * (0.9 + rng.Float64()*0.2)
		}
	}
}

func TestResolve_FinishedEntrantsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	m := NewOvertakeManager(cfg, rand.New(rand.NewSource(1)))

	// The only blocker has finished; no braking, no lane change.
	states := trafficStates([]int{1, 1}, []float64{1.05, 1.0})
	states[0].Finished = true
	got := m.Resolve(states, 1, 0.3, StyleFrontRunner)

	assert.Equal(t, TrafficClear, got)
	assert.Equal(t, 0.1, states[1].speed)
}
