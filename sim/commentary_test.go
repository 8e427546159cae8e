package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snap(id string, distance float64, lane, position int) EntrantSnapshot {
	return EntrantSnapshot{ID: id, Name: id, Distance: distance, Lane: lane, Position: position}
}

func kinds(events []CommentaryEvent) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestDetect_LeadChange(t *testing.T) {
	cfg := DefaultConfig()
	d := NewEventDetector(cfg, 2)

	// First tick establishes the leader silently.
	events := d.Detect(1, 100, []EntrantSnapshot{
		snap("a", 0.2, 1, 1),
		snap("b", 0.1, 2, 2),
	})
	assert.NotContains(t, kinds(events), EventLeadChange)

	// b overtakes a.
	events = d.Detect(2, 100, []EntrantSnapshot{
		snap("a", 0.3, 1, 2),
		snap("b", 0.4, 2, 1),
	})
	assert.Contains(t, kinds(events), EventLeadChange)
	for _, ev := range events {
		if ev.Kind == EventLeadChange {
			assert.Equal(t, []string{"b"}, ev.Entrants)
		}
	}

	// Same leader next tick: no repeat.
	events = d.Detect(3, 100, []EntrantSnapshot{
		snap("a", 0.5, 1, 2),
		snap("b", 0.6, 2, 1),
	})
	assert.NotContains(t, kinds(events), EventLeadChange)
}

func TestDetect_LaneChange(t *testing.T) {
	cfg := DefaultConfig()
	d := NewEventDetector(cfg, 2)

	d.Detect(1, 100, []EntrantSnapshot{snap("a", 0.2, 1, 1), snap("b", 0.1, 2, 2)})
	events := d.Detect(2, 100, []EntrantSnapshot{snap("a", 0.4, 1, 1), snap("b", 0.3, 3, 2)})

	assert.Contains(t, kinds(events), EventLaneChange)
	for _, ev := range events {
		if ev.Kind == EventLaneChange {
			assert.Equal(t, []string{"b"}, ev.Entrants)
		}
	}
}

func TestDetect_NotableMoveSuppressesLaneChange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveWindow = 2
	cfg.MovePlaces = 3
	d := NewEventDetector(cfg, 5)

	field := func(positions [5]int, laneB int) []EntrantSnapshot {
		snaps := make([]EntrantSnapshot, 5)
		for i, id := range []string{"a", "b", "c", "d", "e"} {
			lane := i + 1
			if id == "b" {
				lane = laneB
			}
			snaps[i] = snap(id, 1.0-float64(positions[i])*0.05, lane, positions[i])
		}
		return snaps
	}

	d.Detect(1, 100, field([5]int{1, 5, 2, 3, 4}, 2))
	d.Detect(2, 100, field([5]int{1, 4, 2, 3, 5}, 2))
	// b gains three spots inside the window while also switching lanes: only
	// the move line appears.
	events := d.Detect(3, 100, field([5]int{1, 2, 3, 4, 5}, 4))

	got := kinds(events)
	assert.Contains(t, got, EventNotableMove)
	assert.NotContains(t, got, EventLaneChange)
}

func TestDetect_MilestonesEmitOnce(t *testing.T) {
	cfg := DefaultConfig()
	d := NewEventDetector(cfg, 1)

	var milestones []CommentaryEvent
	for tick := 1; tick <= 100; tick++ {
		for _, ev := range d.Detect(tick, 100, []EntrantSnapshot{snap("a", float64(tick)*0.1, 1, 1)}) {
			if ev.Kind == EventMilestone {
				milestones = append(milestones, ev)
			}
		}
	}

	// One milestone per distinct style-window start fraction (0.20, 0.60,
	// 0.75, 0.80 in the default tables), each exactly once, in order.
	assert.Len(t, milestones, 4)
	for i := 1; i < len(milestones); i++ {
		assert.Greater(t, milestones[i].Tick, milestones[i-1].Tick)
	}
}

func TestDetect_FinishedEntrantsProduceNoMoves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveWindow = 1
	cfg.MovePlaces = 1
	d := NewEventDetector(cfg, 2)

	done := snap("a", 8.0, 1, 1)
	done.Finished = true
	d.Detect(1, 100, []EntrantSnapshot{done, snap("b", 0.1, 2, 2)})
	events := d.Detect(2, 100, []EntrantSnapshot{done, snap("b", 0.2, 2, 2)})

	for _, ev := range events {
		assert.NotContains(t, ev.Entrants, "a")
	}
}
