// Package storage holds the engine's external collaborators: racecard
// sources on the read side, result stores and notifiers on the write side.
// The engine never calls any of these mid-simulation; the caller loads
// snapshots up front and persists the finished result.
package storage

import (
	"context"

	"github.com/ovation22/TripleDerby-sub002/sim"
)

// Racecard bundles everything the engine needs to start one run.
type Racecard struct {
	Definition sim.RaceDefinition `yaml:"race"`
	Condition  sim.TrackCondition `yaml:"condition"`
	Entrants   []sim.Entrant      `yaml:"entrants"`
}

// Source resolves race and entrant identifiers into ready-to-run snapshots.
type Source interface {
	Racecard(ctx context.Context) (*Racecard, error)
}

// ResultStore persists finished run records and the updated entrants.
// Retry policy for failed writes is the caller's concern; the engine's
// result object is complete regardless of what happens here.
type ResultStore interface {
	SaveResult(ctx context.Context, result *sim.RaceResult) error
	Close() error
}

// Notifier publishes a run-completed signal to downstream consumers. The
// engine has no knowledge of the transport behind it.
type Notifier interface {
	RunCompleted(ctx context.Context, result *sim.RaceResult) error
}
