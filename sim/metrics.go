// Aggregates per-run statistics for final reporting: traffic activity,
// lead changes, winning margin, and the realized variance distribution.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about one race run. Useful for sanity
// checking the modifier pipeline (realized variance should be centered on
// zero within the configured bound) and for tuning traffic constants.
type Metrics struct {
	Ticks         int
	LeadChanges   int
	LaneChanges   int
	SqueezesWon   int
	SqueezesLost  int
	BlockedTicks  int
	WinningMargin float64 // fractional ticks between 1st and 2nd; 0 for a field of 1

	varianceSamples []float64 // realized (variance - 1) draws across all entrants and ticks
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveVariance records one realized variance offset (draw minus 1).
func (m *Metrics) ObserveVariance(offset float64) {
	m.varianceSamples = append(m.varianceSamples, offset)
}

// ObserveTraffic tallies one overtaking-manager outcome.
func (m *Metrics) ObserveTraffic(outcome TrafficOutcome) {
	switch outcome {
	case TrafficLaneChanged:
		m.LaneChanges++
	case TrafficSqueezeWon:
		m.SqueezesWon++
	case TrafficSqueezeLost:
		m.SqueezesLost++
	case TrafficHeld:
		m.BlockedTicks++
	}
}

// VarianceMean returns the sample mean of realized variance offsets.
func (m *Metrics) VarianceMean() float64 {
	if len(m.varianceSamples) == 0 {
		return 0
	}
	return stat.Mean(m.varianceSamples, nil)
}

// VarianceStdDev returns the sample standard deviation of realized
// variance offsets.
func (m *Metrics) VarianceStdDev() float64 {
	if len(m.varianceSamples) < 2 {
		return 0
	}
	return stat.StdDev(m.varianceSamples, nil)
}

// Print displays aggregated metrics at the end of a run.
func (m *Metrics) Print() {
	fmt.Println("=== Race Metrics ===")
	fmt.Printf("Ticks simulated      : %d\n", m.Ticks)
	fmt.Printf("Lead changes         : %d\n", m.LeadChanges)
	fmt.Printf("Lane changes         : %d\n", m.LaneChanges)
	fmt.Printf("Squeezes won/lost    : %d/%d\n", m.SqueezesWon, m.SqueezesLost)
	fmt.Printf("Blocked ticks        : %d\n", m.BlockedTicks)
	fmt.Printf("Winning margin       : %.3f ticks\n", m.WinningMargin)
	fmt.Printf("Variance mean/stddev : %+.5f / %.5f\n", m.VarianceMean(), m.VarianceStdDev())
}
