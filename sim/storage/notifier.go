package storage

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ovation22/TripleDerby-sub002/sim"
)

// LogNotifier announces completed runs to the log. It stands in for a real
// message-broker notifier in local and test setups.
type LogNotifier struct{}

// RunCompleted logs the winner and run identifier. Never fails.
func (LogNotifier) RunCompleted(_ context.Context, result *sim.RaceResult) error {
	winner := "nobody"
	if len(result.Order) > 0 {
		winner = result.Order[0].Name
	}
	logrus.Infof("run %s completed: %q won %q in %d ticks", result.RunID, winner, result.Definition.Name, result.Ticks)
	return nil
}
