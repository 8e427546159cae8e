package sim

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PhaseModifier is one running style's activation window, expressed as
// fractions of race progress, with the speed bonus applied inside it and
// the penalty applied when the style is stuck in traffic.
type PhaseModifier struct {
	Start          float64 `yaml:"start"`
	End            float64 `yaml:"end"`
	Bonus          float64 `yaml:"bonus"`
	BlockedPenalty float64 `yaml:"blocked_penalty"`
}

// TrafficConfig groups the overtaking-manager constants. Gaps and
// clearances are in furlongs. ClearanceAhead is deliberately larger than
// ClearanceBehind: merging in front of a trailing entrant demands more room.
type TrafficConfig struct {
	// MaxLanes is the track width. Usable lanes are min(MaxLanes, field
	// size), so a big field bunches up and traffic actually bites.
	MaxLanes           int     `yaml:"max_lanes"`
	LookAheadGap       float64 `yaml:"look_ahead_gap"`
	StretchGapScale    float64 `yaml:"stretch_gap_scale"` // threshold scale once the stretch run begins
	ClearanceAhead     float64 `yaml:"clearance_ahead"`
	ClearanceBehind    float64 `yaml:"clearance_behind"`
	LaneChangeFailProb float64 `yaml:"lane_change_fail_prob"`
	LaneChangeCost     float64 `yaml:"lane_change_cost"` // multiplier on this tick's speed
	SqueezeChance      float64 `yaml:"squeeze_chance"`
	SqueezeSuccessProb float64 `yaml:"squeeze_success_prob"`
	SqueezeSuccessCost float64 `yaml:"squeeze_success_cost"`
	SqueezeFailPenalty float64 `yaml:"squeeze_fail_penalty"`
}

// CareerBand maps a minimum prior-start count to a growth multiplier.
// Bands are matched by the highest MinStarts not exceeding the entrant's
// prior-start count.
type CareerBand struct {
	MinStarts  int     `yaml:"min_starts"`
	Multiplier float64 `yaml:"multiplier"`
}

// FocusFactors weights the four growth-eligible attributes for one
// distance category.
type FocusFactors struct {
	Speed      float64 `yaml:"speed"`
	Agility    float64 `yaml:"agility"`
	Stamina    float64 `yaml:"stamina"`
	Durability float64 `yaml:"durability"`
}

// PerformanceTable is the finish-percentile growth bonus by tier.
type PerformanceTable struct {
	Win        float64 `yaml:"win"`
	Place      float64 `yaml:"place"`
	Show       float64 `yaml:"show"`
	TopHalf    float64 `yaml:"top_half"`
	BottomHalf float64 `yaml:"bottom_half"`
}

// GrowthConfig groups post-race progression parameters.
type GrowthConfig struct {
	BaseRate    float64                           `yaml:"base_rate"` // fraction of remaining gap per race
	CareerBands []CareerBand                      `yaml:"career_bands"`
	Focus       map[DistanceCategory]FocusFactors `yaml:"focus"`
	Performance PerformanceTable                  `yaml:"performance"`
}

// HappinessConfig groups post-race happiness deltas by finish tier.
type HappinessConfig struct {
	Win        float64 `yaml:"win"`
	Place      float64 `yaml:"place"`
	Show       float64 `yaml:"show"`
	MidPack    float64 `yaml:"mid_pack"`
	BackOfPack float64 `yaml:"back_of_pack"`
	Exhaustion float64 `yaml:"exhaustion"` // additional delta when finishing exhausted
}

// StaminaConfig controls the informational stamina drain. Stamina does not
// feed back into speed mid-race; it only drives the post-race exhaustion
// check.
type StaminaConfig struct {
	DrainFactor         float64                      `yaml:"drain_factor"` // total drain for a neutral entrant over a full race
	CategoryDrain       map[DistanceCategory]float64 `yaml:"category_drain"`
	ExhaustionThreshold float64                      `yaml:"exhaustion_threshold"` // fraction of starting stamina
}

// Config is the full modifier-table set for the race engine. Every
// multiplier and constant lives here; the calculators are pure functions of
// (context, config). Defaults are compiled in and may be overlaid from a
// YAML file; Validate must pass before any simulation starts.
type Config struct {
	KSpeed        float64 `yaml:"k_speed"`
	KAgility      float64 `yaml:"k_agility"`
	VarianceBound float64 `yaml:"variance_bound"`
	BaseTickSpeed float64 `yaml:"base_tick_speed"` // furlongs per tick at multiplier 1.0
	MaxTicks      int     `yaml:"max_ticks"`       // absolute ceiling, safety valve
	MaxFieldSize  int     `yaml:"max_field_size"`

	Surfaces   map[Surface]float64            `yaml:"surfaces"`
	Conditions map[TrackCondition]float64     `yaml:"conditions"`
	Styles     map[RunningStyle]PhaseModifier `yaml:"styles"`

	// MoveWindow/MovePlaces parameterize notable-move detection: a gain or
	// loss of at least MovePlaces positions within MoveWindow ticks.
	MoveWindow int `yaml:"move_window"`
	MovePlaces int `yaml:"move_places"`

	Traffic   TrafficConfig   `yaml:"traffic"`
	Growth    GrowthConfig    `yaml:"growth"`
	Happiness HappinessConfig `yaml:"happiness"`
	Stamina   StaminaConfig   `yaml:"stamina"`

	// PurseShares holds the fraction of the purse paid per place, winner
	// first. Places beyond the table receive nothing.
	PurseShares []float64 `yaml:"purse_shares"`
}

// conditionOrder lists conditions fastest to slowest; the condition table
// must be monotonically non-increasing along it.
var conditionOrder = []TrackCondition{
	ConditionFast, ConditionWetFast, ConditionFirm, ConditionGood,
	ConditionStandard, ConditionYielding, ConditionSoft, ConditionSlow,
	ConditionMuddy, ConditionSloppy, ConditionHeavy,
}

// DefaultConfig returns the compiled-in modifier tables.
func DefaultConfig() *Config {
	return &Config{
		KSpeed:        0.002,
		KAgility:      0.001,
		VarianceBound: 0.01,
		BaseTickSpeed: 0.1,
		MaxTicks:      1000,
		MaxFieldSize:  20,
		Surfaces: map[Surface]float64{
			SurfaceDirt:      1.00,
			SurfaceTurf:      1.01,
			SurfaceSynthetic: 1.02,
		},
		Conditions: map[TrackCondition]float64{
			ConditionFast:     1.03,
			ConditionWetFast:  1.02,
			ConditionFirm:     1.015,
			ConditionGood:     1.01,
			ConditionStandard: 1.00,
			ConditionYielding: 0.99,
			ConditionSoft:     0.97,
			ConditionSlow:     0.96,
			ConditionMuddy:    0.94,
			ConditionSloppy:   0.92,
			ConditionHeavy:    0.90,
		},
		Styles: map[RunningStyle]PhaseModifier{
			StyleFrontRunner: {Start: 0.00, End: 0.20, Bonus: 1.04, BlockedPenalty: 0.970},
			StyleStalker:     {Start: 0.20, End: 0.45, Bonus: 1.02, BlockedPenalty: 0.985},
			StyleMidPack:     {Start: 0.60, End: 0.80, Bonus: 1.02, BlockedPenalty: 0.990},
			StyleCloser:      {Start: 0.75, End: 1.00, Bonus: 1.03, BlockedPenalty: 0.990},
			StyleDeepCloser:  {Start: 0.80, End: 1.00, Bonus: 1.04, BlockedPenalty: 0.995},
		},
		MoveWindow: 5,
		MovePlaces: 3,
		Traffic: TrafficConfig{
			MaxLanes:           8,
			LookAheadGap:       0.15,
			StretchGapScale:    1.25,
			ClearanceAhead:     0.25,
			ClearanceBehind:    0.12,
			LaneChangeFailProb: 0.15,
			LaneChangeCost:     0.995,
			SqueezeChance:      0.20,
			SqueezeSuccessProb: 0.35,
			SqueezeSuccessCost: 0.99,
			SqueezeFailPenalty: 0.95,
		},
		Growth: GrowthConfig{
			BaseRate: 0.02,
			CareerBands: []CareerBand{
				{MinStarts: 0, Multiplier: 0.80},
				{MinStarts: 10, Multiplier: 1.20},
				{MinStarts: 30, Multiplier: 0.60},
				{MinStarts: 50, Multiplier: 0.20},
			},
			Focus: map[DistanceCategory]FocusFactors{
				CategorySprint:  {Speed: 1.50, Agility: 1.25, Stamina: 0.75, Durability: 0.75},
				CategoryMiddle:  {Speed: 1.00, Agility: 1.00, Stamina: 1.00, Durability: 1.00},
				CategoryClassic: {Speed: 0.75, Agility: 0.75, Stamina: 1.50, Durability: 1.25},
			},
			Performance: PerformanceTable{
				Win:        1.50,
				Place:      1.25,
				Show:       1.10,
				TopHalf:    1.00,
				BottomHalf: 0.75,
			},
		},
		Happiness: HappinessConfig{
			Win:        8,
			Place:      4,
			Show:       2,
			MidPack:    0,
			BackOfPack: -3,
			Exhaustion: -5,
		},
		Stamina: StaminaConfig{
			DrainFactor: 1.2,
			CategoryDrain: map[DistanceCategory]float64{
				CategorySprint:  0.90,
				CategoryMiddle:  1.00,
				CategoryClassic: 1.10,
			},
			ExhaustionThreshold: 0.10,
		},
		PurseShares: []float64{0.60, 0.20, 0.10, 0.05, 0.03, 0.02},
	}
}

// LoadConfig overlays the YAML file at path on top of the defaults and
// validates the result. An empty path returns the validated defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// A table present in the overlay replaces the default table wholesale.
		// Merging would let a truncated table slip past validation by
		// backfilling from the defaults.
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if _, ok := raw["surfaces"]; ok {
			cfg.Surfaces = map[Surface]float64{}
		}
		if _, ok := raw["conditions"]; ok {
			cfg.Conditions = map[TrackCondition]float64{}
		}
		if _, ok := raw["styles"]; ok {
			cfg.Styles = map[RunningStyle]PhaseModifier{}
		}
		if growth, ok := raw["growth"].(map[string]any); ok {
			if _, ok := growth["focus"]; ok {
				cfg.Growth.Focus = map[DistanceCategory]FocusFactors{}
			}
			if _, ok := growth["career_bands"]; ok {
				cfg.Growth.CareerBands = nil
			}
		}
		if stamina, ok := raw["stamina"].(map[string]any); ok {
			if _, ok := stamina["category_drain"]; ok {
				cfg.Stamina.CategoryDrain = map[DistanceCategory]float64{}
			}
		}
		if _, ok := raw["purse_shares"]; ok {
			cfg.PurseShares = nil
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate refuses to run with a gap in any lookup table. Missing or
// malformed entries are a startup-time error, never a per-tick condition.
func (c *Config) Validate() error {
	if c.KSpeed <= 0 || c.KAgility <= 0 {
		return fmt.Errorf("config: stat coefficients must be positive (k_speed=%v, k_agility=%v)", c.KSpeed, c.KAgility)
	}
	if c.VarianceBound < 0 || c.VarianceBound >= 1 {
		return fmt.Errorf("config: variance bound %v outside [0,1)", c.VarianceBound)
	}
	if c.BaseTickSpeed <= 0 {
		return fmt.Errorf("config: base tick speed must be positive, got %v", c.BaseTickSpeed)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("config: max ticks must be positive, got %d", c.MaxTicks)
	}
	if c.MaxFieldSize < 1 {
		return fmt.Errorf("config: max field size must be at least 1, got %d", c.MaxFieldSize)
	}
	if c.Traffic.MaxLanes < 1 {
		return fmt.Errorf("config: track must have at least one lane, got %d", c.Traffic.MaxLanes)
	}
	if c.MoveWindow < 1 || c.MovePlaces < 1 {
		return fmt.Errorf("config: move window/places must be at least 1 (window=%d, places=%d)", c.MoveWindow, c.MovePlaces)
	}

	for _, s := range []Surface{SurfaceDirt, SurfaceTurf, SurfaceSynthetic} {
		f, ok := c.Surfaces[s]
		if !ok {
			return fmt.Errorf("config: no surface factor for %q", s)
		}
		if badFactor(f) {
			return fmt.Errorf("config: surface factor for %q is %v", s, f)
		}
	}
	if len(c.Conditions) != len(conditionOrder) {
		return fmt.Errorf("config: condition table has %d entries, want %d", len(c.Conditions), len(conditionOrder))
	}
	prev := math.Inf(1)
	for _, cond := range conditionOrder {
		f, ok := c.Conditions[cond]
		if !ok {
			return fmt.Errorf("config: no condition factor for %q", cond)
		}
		if badFactor(f) {
			return fmt.Errorf("config: condition factor for %q is %v", cond, f)
		}
		if f > prev {
			return fmt.Errorf("config: condition factors not monotonic: %q (%v) faster than its predecessor", cond, f)
		}
		prev = f
	}
	for _, style := range []RunningStyle{StyleFrontRunner, StyleStalker, StyleMidPack, StyleCloser, StyleDeepCloser} {
		pm, ok := c.Styles[style]
		if !ok {
			return fmt.Errorf("config: no phase modifier for style %q", style)
		}
		if pm.Start < 0 || pm.End > 1 || pm.Start >= pm.End {
			return fmt.Errorf("config: style %q window [%v,%v] invalid", style, pm.Start, pm.End)
		}
		if badFactor(pm.Bonus) || badFactor(pm.BlockedPenalty) {
			return fmt.Errorf("config: style %q multipliers invalid (bonus=%v, blocked=%v)", style, pm.Bonus, pm.BlockedPenalty)
		}
	}

	if c.Growth.BaseRate <= 0 || c.Growth.BaseRate >= 1 {
		return fmt.Errorf("config: growth base rate %v outside (0,1)", c.Growth.BaseRate)
	}
	if len(c.Growth.CareerBands) == 0 {
		return fmt.Errorf("config: no career bands")
	}
	if !sort.SliceIsSorted(c.Growth.CareerBands, func(i, j int) bool {
		return c.Growth.CareerBands[i].MinStarts < c.Growth.CareerBands[j].MinStarts
	}) {
		return fmt.Errorf("config: career bands not sorted by min starts")
	}
	if c.Growth.CareerBands[0].MinStarts != 0 {
		return fmt.Errorf("config: first career band must start at 0 prior starts, got %d", c.Growth.CareerBands[0].MinStarts)
	}
	for _, cat := range []DistanceCategory{CategorySprint, CategoryMiddle, CategoryClassic} {
		ff, ok := c.Growth.Focus[cat]
		if !ok {
			return fmt.Errorf("config: no focus factors for category %q", cat)
		}
		if badFactor(ff.Speed) || badFactor(ff.Agility) || badFactor(ff.Stamina) || badFactor(ff.Durability) {
			return fmt.Errorf("config: focus factors for category %q invalid", cat)
		}
		if _, ok := c.Stamina.CategoryDrain[cat]; !ok {
			return fmt.Errorf("config: no stamina drain factor for category %q", cat)
		}
	}
	p := c.Growth.Performance
	if !(p.Win > p.Place && p.Place > p.Show && p.Show > p.TopHalf && p.TopHalf >= p.BottomHalf) {
		return fmt.Errorf("config: performance bonuses must satisfy win > place > show > top-half >= bottom-half")
	}

	if c.Stamina.ExhaustionThreshold < 0 || c.Stamina.ExhaustionThreshold > 1 {
		return fmt.Errorf("config: exhaustion threshold %v outside [0,1]", c.Stamina.ExhaustionThreshold)
	}
	if c.Stamina.DrainFactor < 0 {
		return fmt.Errorf("config: stamina drain factor %v negative", c.Stamina.DrainFactor)
	}

	if len(c.PurseShares) == 0 {
		return fmt.Errorf("config: no purse shares")
	}
	var total float64
	for i, share := range c.PurseShares {
		if share <= 0 || math.IsNaN(share) {
			return fmt.Errorf("config: purse share for place %d is %v", i+1, share)
		}
		if i > 0 && share > c.PurseShares[i-1] {
			return fmt.Errorf("config: purse share for place %d exceeds place %d", i+1, i)
		}
		total += share
	}
	if total > 1+1e-9 {
		return fmt.Errorf("config: purse shares sum to %v, exceeding the purse", total)
	}
	return nil
}

// badFactor reports whether a multiplier is unusable as a table entry.
func badFactor(f float64) bool {
	return f <= 0 || math.IsNaN(f) || math.IsInf(f, 0)
}
