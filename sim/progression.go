package sim

import "math"

// GrowthInputs carries the race-outcome facts that drive post-race
// progression for one entrant.
type GrowthInputs struct {
	PriorStarts int
	Distance    float64 // race distance in furlongs
	Place       int
	FieldSize   int
	Exhausted   bool
}

// CareerMultiplier returns the growth multiplier for the career band
// containing the given prior-start count.
func (c *Config) CareerMultiplier(priorStarts int) float64 {
	mult := c.Growth.CareerBands[0].Multiplier
	for _, band := range c.Growth.CareerBands {
		if priorStarts < band.MinStarts {
			break
		}
		mult = band.Multiplier
	}
	return mult
}

// PerformanceBonus returns the finish-percentile growth bonus. Top half of
// the field means place*2 <= fieldSize; the top three places have their own
// tiers regardless of field size.
func (c *Config) PerformanceBonus(place, fieldSize int) float64 {
	switch place {
	case 1:
		return c.Growth.Performance.Win
	case 2:
		return c.Growth.Performance.Place
	case 3:
		return c.Growth.Performance.Show
	}
	if place*2 <= fieldSize {
		return c.Growth.Performance.TopHalf
	}
	return c.Growth.Performance.BottomHalf
}

// GrowAttributes computes post-race growth for the four growth-eligible
// attributes: remaining-gap growth scaled by career phase, distance-category
// focus, and finish performance, rounded and hard-stopped at each ceiling.
// Returns the new attribute values; never mutates its inputs.
func GrowAttributes(cfg *Config, attrs, ceilings AttributeSet, in GrowthInputs) AttributeSet {
	age := cfg.CareerMultiplier(in.PriorStarts)
	focus := cfg.Growth.Focus[Categorize(in.Distance)]
	perf := cfg.PerformanceBonus(in.Place, in.FieldSize)

	grow := func(value, ceiling, focusFactor float64) float64 {
		gap := ceiling - value
		if gap <= 0 {
			return value
		}
		gain := math.Round(gap * cfg.Growth.BaseRate * age * focusFactor * perf)
		return math.Min(value+gain, ceiling)
	}

	return AttributeSet{
		Speed:      grow(attrs.Speed, ceilings.Speed, focus.Speed),
		Agility:    grow(attrs.Agility, ceilings.Agility, focus.Agility),
		Stamina:    grow(attrs.Stamina, ceilings.Stamina, focus.Stamina),
		Durability: grow(attrs.Durability, ceilings.Durability, focus.Durability),
	}
}

// HappinessDelta returns the post-race happiness change before clamping:
// the finish-tier base delta plus the exhaustion penalty when the entrant
// crossed the wire with under the threshold fraction of starting stamina.
func HappinessDelta(cfg *Config, place, fieldSize int, exhausted bool) float64 {
	var delta float64
	switch {
	case place == 1:
		delta = cfg.Happiness.Win
	case place == 2:
		delta = cfg.Happiness.Place
	case place == 3:
		delta = cfg.Happiness.Show
	case place*2 <= fieldSize:
		delta = cfg.Happiness.MidPack
	default:
		delta = cfg.Happiness.BackOfPack
	}
	if exhausted {
		delta += cfg.Happiness.Exhaustion
	}
	return delta
}

// ProgressEntrant applies attribute growth and the happiness delta to a
// copy of the entrant and returns it. Happiness is clamped to [0,100]
// unconditionally; attributes never cross their ceilings.
func ProgressEntrant(cfg *Config, e Entrant, in GrowthInputs) Entrant {
	e.Attributes = GrowAttributes(cfg, e.Attributes, e.Ceilings, in)
	e.Happiness = clamp(e.Happiness+HappinessDelta(cfg, in.Place, in.FieldSize, in.Exhausted), 0, 100)
	e.PriorStarts++
	return e
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
