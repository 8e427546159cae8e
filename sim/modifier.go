package sim

import "math/rand"

// ModifierContext is the per-tick input bundle for one entrant's speed
// multiplier. Constructed fresh each tick by the executor, never retained.
type ModifierContext struct {
	Tick       int
	TotalTicks int
	Attributes AttributeSet
	Style      RunningStyle
	Surface    Surface
	Condition  TrackCondition
}

// Progress returns the race-progress fraction for this tick.
func (ctx ModifierContext) Progress() float64 {
	if ctx.TotalTicks <= 0 {
		return 0
	}
	return float64(ctx.Tick) / float64(ctx.TotalTicks)
}

// ModifierBreakdown carries each sub-multiplier alongside the combined
// result, so callers (and tests) can inspect individual terms.
type ModifierBreakdown struct {
	Stat        float64
	Environment float64
	Phase       float64
	Variance    float64
	Final       float64
}

// ModifierCalculator computes the combined per-tick speed multiplier for
// one entrant. Pure apart from a single variance draw per call; all table
// lookups are pre-validated at configuration-load time.
type ModifierCalculator struct {
	cfg *Config
	rng *rand.Rand
}

// NewModifierCalculator creates a calculator over validated config and the
// run's variance RNG stream.
func NewModifierCalculator(cfg *Config, rng *rand.Rand) *ModifierCalculator {
	return &ModifierCalculator{cfg: cfg, rng: rng}
}

// Compute returns stat x environment x phase x variance for the context.
func (m *ModifierCalculator) Compute(ctx ModifierContext) ModifierBreakdown {
	b := ModifierBreakdown{
		Stat:        m.cfg.StatMultiplier(ctx.Attributes),
		Environment: m.cfg.EnvironmentMultiplier(ctx.Surface, ctx.Condition),
		Phase:       m.cfg.PhaseMultiplier(ctx.Style, ctx.Progress()),
		Variance:    1 + (m.rng.Float64()*2-1)*m.cfg.VarianceBound,
	}
	b.Final = b.Stat * b.Environment * b.Phase * b.Variance
	return b
}

// StatMultiplier converts speed and agility ratings into a multiplier
// around the neutral value of 50. A 0/100 speed rating is worth roughly
// -10%/+10%; agility half that.
func (c *Config) StatMultiplier(attrs AttributeSet) float64 {
	return (1 + (attrs.Speed-50)*c.KSpeed) * (1 + (attrs.Agility-50)*c.KAgility)
}

// EnvironmentMultiplier combines the surface and going tables.
func (c *Config) EnvironmentMultiplier(surface Surface, condition TrackCondition) float64 {
	return c.Surfaces[surface] * c.Conditions[condition]
}

// PhaseMultiplier returns the style's bonus when race progress falls
// inside its activation window, 1.0 otherwise.
func (c *Config) PhaseMultiplier(style RunningStyle, progress float64) float64 {
	pm := c.Styles[style]
	if progress >= pm.Start && progress <= pm.End {
		return pm.Bonus
	}
	return 1.0
}
