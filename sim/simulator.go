// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Validation errors reported before the tick loop starts. No partial run is
// ever created: construction fails or the run completes.
var (
	ErrEmptyField   = errors.New("cannot simulate: empty field")
	ErrFieldTooBig  = errors.New("cannot simulate: field exceeds maximum size")
	ErrBadEntrant   = errors.New("cannot simulate: invalid entrant snapshot")
	ErrBadRace      = errors.New("cannot simulate: invalid race definition")
	ErrBadCondition = errors.New("cannot simulate: unknown track condition")
)

// Simulator is the race executor. It owns the tick loop and all per-run
// mutable state; nothing here is shared across concurrent runs. Entrant
// snapshots are read-only borrows for the duration of the run.
type Simulator struct {
	cfg       *Config
	def       RaceDefinition
	condition TrackCondition

	// Entrants is the snapshot arena; run states refer to it by index
	// rather than holding object references.
	Entrants []Entrant
	States   []*EntrantRunState

	rng        *PartitionedRNG
	totalTicks int       // expected neutral duration, drives the progress fraction
	drains     []float64 // per-entrant stamina drain per tick
}

// NewSimulator validates all inputs and prepares per-run state. Unknown
// categories, out-of-range attributes, and malformed fields are rejected
// here, never mid-tick.
func NewSimulator(cfg *Config, def RaceDefinition, entrants []Entrant, condition TrackCondition, key SimulationKey) (*Simulator, error) {
	if len(entrants) == 0 {
		return nil, ErrEmptyField
	}
	if len(entrants) > cfg.MaxFieldSize {
		return nil, fmt.Errorf("%w: %d entrants, maximum %d", ErrFieldTooBig, len(entrants), cfg.MaxFieldSize)
	}
	if def.Distance <= 0 {
		return nil, fmt.Errorf("%w: distance %v", ErrBadRace, def.Distance)
	}
	if _, ok := cfg.Surfaces[def.Surface]; !ok {
		return nil, fmt.Errorf("%w: unknown surface %q", ErrBadRace, def.Surface)
	}
	if _, ok := cfg.Conditions[condition]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadCondition, condition)
	}

	seen := make(map[string]bool, len(entrants))
	for _, e := range entrants {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entrant %q has no ID", ErrBadEntrant, e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate entrant %q", ErrBadEntrant, e.ID)
		}
		seen[e.ID] = true
		if _, ok := cfg.Styles[e.Style]; !ok {
			return nil, fmt.Errorf("%w: entrant %q has unknown style %q", ErrBadEntrant, e.ID, e.Style)
		}
		if err := checkAttributes(e); err != nil {
			return nil, fmt.Errorf("%w: entrant %q: %v", ErrBadEntrant, e.ID, err)
		}
		if e.Happiness < 0 || e.Happiness > 100 {
			return nil, fmt.Errorf("%w: entrant %q happiness %v outside [0,100]", ErrBadEntrant, e.ID, e.Happiness)
		}
	}

	totalTicks := int(math.Ceil(def.Distance / cfg.BaseTickSpeed))
	catDrain := cfg.Stamina.CategoryDrain[Categorize(def.Distance)]

	s := &Simulator{
		cfg:        cfg,
		def:        def,
		condition:  condition,
		Entrants:   entrants,
		States:     make([]*EntrantRunState, len(entrants)),
		rng:        NewPartitionedRNG(key),
		totalTicks: totalTicks,
		drains:     make([]float64, len(entrants)),
	}
	lanes := min(len(entrants), cfg.Traffic.MaxLanes)
	for i, e := range entrants {
		s.States[i] = &EntrantRunState{Entrant: i, Lane: i%lanes + 1, Stamina: 1.0}
		s.drains[i] = cfg.Stamina.DrainFactor * catDrain * (1 - e.Attributes.Stamina/200) / float64(totalTicks)
	}
	return s, nil
}

// Simulate is the engine's single boundary: it validates the inputs, runs
// the tick loop to completion, and returns the self-contained result.
func Simulate(cfg *Config, def RaceDefinition, entrants []Entrant, condition TrackCondition, key SimulationKey) (*RaceResult, error) {
	s, err := NewSimulator(cfg, def, entrants, condition, key)
	if err != nil {
		return nil, err
	}
	return s.Run(), nil
}

// Run executes the tick loop synchronously until every entrant has finished
// or the absolute tick ceiling is reached, then resolves the finish order
// and post-race progression. Ticks are strictly ordered; an entrant's state
// at tick N depends only on tick N-1 plus that tick's draws.
func (s *Simulator) Run() *RaceResult {
	calc := NewModifierCalculator(s.cfg, s.rng.ForSubsystem(SubsystemVariance))
	traffic := NewOvertakeManager(s.cfg, s.rng.ForSubsystem(SubsystemTraffic))
	detector := NewEventDetector(s.cfg, len(s.States))
	metrics := NewMetrics()

	var commentary []CommentaryEvent
	remaining := len(s.States)
	tick := 0

	logrus.Infof("race %q: %d entrants, %.1ff %s/%s, seed %d",
		s.def.Name, len(s.Entrants), s.def.Distance, s.def.Surface, s.condition, s.rng.Key())

	for remaining > 0 && tick < s.cfg.MaxTicks {
		tick++
		progress := float64(tick) / float64(s.totalTicks)

		// Base speeds from the modifier pipeline.
		for _, st := range s.States {
			if st.Finished {
				continue
			}
			e := s.Entrants[st.Entrant]
			b := calc.Compute(ModifierContext{
				Tick:       tick,
				TotalTicks: s.totalTicks,
				Attributes: e.Attributes,
				Style:      e.Style,
				Surface:    s.def.Surface,
				Condition:  s.condition,
			})
			st.speed = s.cfg.BaseTickSpeed * b.Final
			metrics.ObserveVariance(b.Variance - 1)
		}

		// Traffic resolution, post order. May move lanes and shave speeds.
		for i, st := range s.States {
			if st.Finished {
				continue
			}
			metrics.ObserveTraffic(traffic.Resolve(s.States, i, progress, s.Entrants[st.Entrant].Style))
		}

		// Advance, drain stamina, detect finishes with sub-tick
		// interpolation so quantized ties cannot occur.
		for _, st := range s.States {
			if st.Finished {
				continue
			}
			prev := st.Distance
			st.Distance += st.speed
			st.Stamina = math.Max(0, st.Stamina-s.drains[st.Entrant])
			if st.Distance >= s.def.Distance {
				frac := 1.0
				if st.speed > 0 {
					frac = (s.def.Distance - prev) / st.speed
				}
				st.FinishTick = float64(tick-1) + frac
				st.Finished = true
				remaining--
				logrus.Debugf("[tick %07d] %s finishes at %.3f", tick, s.Entrants[st.Entrant].Name, st.FinishTick)
			}
		}

		for _, ev := range detector.Detect(tick, s.totalTicks, s.snapshot()) {
			logrus.Debugf("[tick %07d] %s", tick, ev.Text)
			if ev.Kind == EventLeadChange {
				metrics.LeadChanges++
			}
			commentary = append(commentary, ev)
		}
	}
	metrics.Ticks = tick
	if remaining > 0 {
		logrus.Warnf("race %q hit the %d-tick ceiling with %d entrants still running; ranking stragglers by distance",
			s.def.Name, s.cfg.MaxTicks, remaining)
	}

	return s.resolve(tick, commentary, metrics)
}

// resolve sorts the field into its final placement, pays the purse, and
// applies post-race progression, producing the immutable result record.
func (s *Simulator) resolve(ticks int, commentary []CommentaryEvent, metrics *Metrics) *RaceResult {
	order := s.rankedIndices()
	payouts := Payouts(s.cfg, s.def.Purse, len(order))

	results := make([]EntrantResult, len(order))
	for place, idx := range order {
		st := s.States[idx]
		st.Place = place + 1
		e := s.Entrants[idx]
		exhausted := st.Stamina < s.cfg.Stamina.ExhaustionThreshold
		updated := ProgressEntrant(s.cfg, e, GrowthInputs{
			PriorStarts: e.PriorStarts,
			Distance:    s.def.Distance,
			Place:       st.Place,
			FieldSize:   len(order),
			Exhausted:   exhausted,
		})
		results[place] = EntrantResult{
			EntrantID:   e.ID,
			Name:        e.Name,
			Place:       st.Place,
			Finished:    st.Finished,
			FinishTick:  st.FinishTick,
			Distance:    st.Distance,
			StaminaLeft: st.Stamina,
			Exhausted:   exhausted,
			Payout:      payouts[place],
			Attributes:  updated.Attributes,
			Happiness:   updated.Happiness,
		}
	}
	if len(results) > 1 && results[0].Finished && results[1].Finished {
		metrics.WinningMargin = results[1].FinishTick - results[0].FinishTick
	}

	return &RaceResult{
		RunID:      NewRunID(),
		Definition: s.def,
		Condition:  s.condition,
		Ticks:      ticks,
		Order:      results,
		Commentary: commentary,
		Metrics:    metrics,
	}
}

// rankedIndices returns state indices in final placement order: finishers
// ascending by fractional finish tick, then non-finishers descending by
// distance covered (the degraded fallback when the tick ceiling fires).
// Post position breaks the vanishingly rare exact tie.
func (s *Simulator) rankedIndices() []int {
	order := make([]int, len(s.States))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := s.States[order[a]], s.States[order[b]]
		switch {
		case sa.Finished && sb.Finished:
			return sa.FinishTick < sb.FinishTick
		case sa.Finished != sb.Finished:
			return sa.Finished
		default:
			return sa.Distance > sb.Distance
		}
	})
	return order
}

// snapshot captures the field at the end of the current tick for the event
// detector, with running positions assigned by the same ranking rule as the
// final placement.
func (s *Simulator) snapshot() []EntrantSnapshot {
	snaps := make([]EntrantSnapshot, len(s.States))
	for i, st := range s.States {
		e := s.Entrants[st.Entrant]
		snaps[i] = EntrantSnapshot{
			ID:       e.ID,
			Name:     e.Name,
			Distance: st.Distance,
			Lane:     st.Lane,
			Finished: st.Finished,
		}
	}
	for pos, idx := range s.rankedIndices() {
		snaps[idx].Position = pos + 1
	}
	return snaps
}

// checkAttributes enforces the [0,100] scale and the ceiling invariant on
// an input snapshot.
func checkAttributes(e Entrant) error {
	pairs := []struct {
		name           string
		value, ceiling float64
	}{
		{"speed", e.Attributes.Speed, e.Ceilings.Speed},
		{"agility", e.Attributes.Agility, e.Ceilings.Agility},
		{"stamina", e.Attributes.Stamina, e.Ceilings.Stamina},
		{"durability", e.Attributes.Durability, e.Ceilings.Durability},
	}
	for _, p := range pairs {
		if p.value < 0 || p.value > 100 {
			return fmt.Errorf("%s %v outside [0,100]", p.name, p.value)
		}
		if p.ceiling < 0 || p.ceiling > 100 {
			return fmt.Errorf("%s ceiling %v outside [0,100]", p.name, p.ceiling)
		}
		if p.value > p.ceiling {
			return fmt.Errorf("%s %v exceeds ceiling %v", p.name, p.value, p.ceiling)
		}
	}
	return nil
}
