package sim

import (
	"fmt"
	"sort"
)

// EventKind tags a commentary event with the detection rule that fired.
type EventKind string

const (
	EventLeadChange  EventKind = "lead-change"
	EventNotableMove EventKind = "notable-move"
	EventLaneChange  EventKind = "lane-change"
	EventMilestone   EventKind = "milestone"
)

// CommentaryEvent is one narrative line of the race call. Immutable once
// appended to the run's log.
type CommentaryEvent struct {
	Tick     int
	Kind     EventKind
	Text     string
	Entrants []string // IDs of the entrants the line is about
}

// EntrantSnapshot is one entrant's observable state at the end of a tick,
// as seen by the event detector. Position is the running order, 1 = leader.
type EntrantSnapshot struct {
	ID       string
	Name     string
	Distance float64
	Lane     int
	Position int
	Finished bool
}

// EventDetector compares consecutive tick snapshots and emits narrative
// events: lead changes, notable moves, lane changes, and phase-boundary
// milestones. It holds only its own previous-snapshot state; each tick's
// events are consumed once and appended to the run's commentary log.
type EventDetector struct {
	cfg *Config

	prev     []EntrantSnapshot
	leaderID string

	// positions ring-buffers the last MoveWindow running positions per
	// entrant, keyed by snapshot index.
	positions [][]int

	// boundaries holds the distinct style-window start fractions not yet
	// crossed; each emits a milestone exactly once.
	boundaries []float64
}

// NewEventDetector creates a detector for a field of the given size.
func NewEventDetector(cfg *Config, fieldSize int) *EventDetector {
	var bounds []float64
	seen := map[float64]bool{}
	for _, pm := range cfg.Styles {
		if pm.Start > 0 && pm.Start < 1 && !seen[pm.Start] {
			seen[pm.Start] = true
			bounds = append(bounds, pm.Start)
		}
	}
	sort.Float64s(bounds)
	return &EventDetector{
		cfg:        cfg,
		positions:  make([][]int, fieldSize),
		boundaries: bounds,
	}
}

// Detect compares the current field snapshot against the previous tick and
// returns this tick's events. The snapshot becomes the new comparison base.
func (d *EventDetector) Detect(tick, totalTicks int, curr []EntrantSnapshot) []CommentaryEvent {
	var events []CommentaryEvent

	// Milestones first: the call announces the stage before the action.
	progress := 0.0
	if totalTicks > 0 {
		progress = float64(tick) / float64(totalTicks)
	}
	for len(d.boundaries) > 0 && progress >= d.boundaries[0] {
		events = append(events, CommentaryEvent{
			Tick: tick,
			Kind: EventMilestone,
			Text: milestoneCall(d.boundaries[0]),
		})
		d.boundaries = d.boundaries[1:]
	}

	if leader := fieldLeader(curr); leader != nil {
		if d.leaderID != "" && d.leaderID != leader.ID {
			events = append(events, CommentaryEvent{
				Tick:     tick,
				Kind:     EventLeadChange,
				Text:     fmt.Sprintf("%s takes the lead", leader.Name),
				Entrants: []string{leader.ID},
			})
		}
		d.leaderID = leader.ID
	}

	moved := make([]bool, len(curr))
	for i, snap := range curr {
		if snap.Finished {
			continue
		}
		hist := append(d.positions[i], snap.Position)
		if len(hist) > d.cfg.MoveWindow+1 {
			hist = hist[1:]
		}
		d.positions[i] = hist
		if len(hist) < d.cfg.MoveWindow+1 {
			continue
		}
		delta := hist[0] - snap.Position // positive = positions gained
		if delta >= d.cfg.MovePlaces {
			moved[i] = true
			events = append(events, CommentaryEvent{
				Tick:     tick,
				Kind:     EventNotableMove,
				Text:     fmt.Sprintf("%s is making a big move, up %d spots", snap.Name, delta),
				Entrants: []string{snap.ID},
			})
		} else if -delta >= d.cfg.MovePlaces {
			moved[i] = true
			events = append(events, CommentaryEvent{
				Tick:     tick,
				Kind:     EventNotableMove,
				Text:     fmt.Sprintf("%s is dropping back, down %d spots", snap.Name, -delta),
				Entrants: []string{snap.ID},
			})
		}
	}

	// Lane changes are routine next to a big move by the same entrant, so
	// the move line wins.
	if d.prev != nil {
		for i, snap := range curr {
			if snap.Finished || moved[i] || snap.Lane == d.prev[i].Lane {
				continue
			}
			events = append(events, CommentaryEvent{
				Tick:     tick,
				Kind:     EventLaneChange,
				Text:     fmt.Sprintf("%s angles out to lane %d", snap.Name, snap.Lane),
				Entrants: []string{snap.ID},
			})
		}
	}

	d.prev = curr
	return events
}

// fieldLeader returns the snapshot at running position 1, nil for an empty
// field or once every entrant has finished.
func fieldLeader(field []EntrantSnapshot) *EntrantSnapshot {
	for i := range field {
		if field[i].Position == 1 && !field[i].Finished {
			return &field[i]
		}
	}
	return nil
}

// milestoneCall names the stage of the race at a phase boundary.
func milestoneCall(frac float64) string {
	switch {
	case frac < 0.3:
		return "the early pace takes shape"
	case frac < 0.7:
		return "the field settles in down the backstretch"
	case frac < 0.8:
		return "they turn for home and into the stretch"
	default:
		return "deep stretch now, the late runners launch their bids"
	}
}
