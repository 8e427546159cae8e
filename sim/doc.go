// Package sim provides the core discrete-tick race simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - race.go: domain types (RaceDefinition, Entrant, EntrantRunState, RaceResult)
//   - config.go: every multiplier table and constant, with fail-fast validation
//   - simulator.go: the tick loop, finish resolution, and post-race progression
//
// # Architecture
//
// The executor in simulator.go wires the per-tick calculators together:
//   - modifier.go: combined speed multiplier (stat x environment x phase x variance)
//   - overtake.go: lane occupancy, blocking, lane changes and squeeze plays
//   - commentary.go: snapshot diffing into narrative events
//   - purse.go, progression.go: pure post-race payout and growth functions
//
// Orchestration of concurrent runs lives in sim/runner; the storage and
// notification collaborators the engine's caller uses live in sim/storage.
// The engine itself performs no I/O: Simulate takes already-loaded
// snapshots and returns a self-contained RaceResult.
//
// Randomness is injected per run via PartitionedRNG (rng.go), giving each
// subsystem its own deterministic stream so runs are independently
// seedable and concurrent runs never share a generator.
package sim
