package sim

import "github.com/google/uuid"

// Surface identifies the racing surface of a track.
type Surface string

const (
	SurfaceDirt      Surface = "dirt"
	SurfaceTurf      Surface = "turf"
	SurfaceSynthetic Surface = "synthetic"
)

// TrackCondition describes the footing on race day, from fastest to slowest.
type TrackCondition string

const (
	ConditionFast     TrackCondition = "fast"
	ConditionWetFast  TrackCondition = "wet-fast"
	ConditionFirm     TrackCondition = "firm"
	ConditionGood     TrackCondition = "good"
	ConditionStandard TrackCondition = "standard"
	ConditionYielding TrackCondition = "yielding"
	ConditionSoft     TrackCondition = "soft"
	ConditionSlow     TrackCondition = "slow"
	ConditionMuddy    TrackCondition = "muddy"
	ConditionSloppy   TrackCondition = "sloppy"
	ConditionHeavy    TrackCondition = "heavy"
)

// RunningStyle classifies an entrant's racing strategy. Each style has a
// phase-activation window and its own tolerance for traffic.
type RunningStyle string

const (
	StyleFrontRunner RunningStyle = "front-runner"
	StyleStalker     RunningStyle = "stalker"
	StyleMidPack     RunningStyle = "mid-pack"
	StyleCloser      RunningStyle = "closer"
	StyleDeepCloser  RunningStyle = "deep-closer"
)

// DistanceCategory bands race distances for growth-focus lookups.
type DistanceCategory string

const (
	CategorySprint  DistanceCategory = "sprint"  // <= 6 furlongs
	CategoryMiddle  DistanceCategory = "middle"  // 7-10 furlongs
	CategoryClassic DistanceCategory = "classic" // >= 11 furlongs
)

// Categorize maps a race distance in furlongs to its distance category.
func Categorize(distance float64) DistanceCategory {
	switch {
	case distance <= 6:
		return CategorySprint
	case distance >= 11:
		return CategoryClassic
	default:
		return CategoryMiddle
	}
}

// AttributeSet holds the four growth-eligible attributes on the 0-100 scale.
// Speed and Agility are the speed-related pair; Stamina and Durability are
// the stamina-related pair.
type AttributeSet struct {
	Speed      float64 `yaml:"speed"`
	Agility    float64 `yaml:"agility"`
	Stamina    float64 `yaml:"stamina"`
	Durability float64 `yaml:"durability"`
}

// Entrant is a read-only snapshot of one participant at simulation start.
// Attribute and happiness fields change only through post-race progression,
// which returns an updated copy rather than mutating the original.
type Entrant struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Style       RunningStyle `yaml:"style"`
	Attributes  AttributeSet `yaml:"attributes"`
	Ceilings    AttributeSet `yaml:"ceilings"`
	PriorStarts int          `yaml:"prior_starts"`
	Happiness   float64      `yaml:"happiness"`
}

// RaceDefinition is the static metadata of a race. Purse is in cents.
type RaceDefinition struct {
	Name     string  `yaml:"name"`
	Distance float64 `yaml:"distance"` // furlongs
	Surface  Surface `yaml:"surface"`
	Purse    int64   `yaml:"purse"`
}

// EntrantRunState is the per-entrant mutable state for one run. It indexes
// into the executor's entrant arena rather than embedding the snapshot, so
// concurrent runs never share object graphs. Discarded once the run's
// results are extracted.
type EntrantRunState struct {
	Entrant    int     // arena index into Simulator.Entrants
	Distance   float64 // cumulative furlongs covered
	Lane       int     // 1 = rail, up to min(field size, Traffic.MaxLanes)
	Stamina    float64 // fraction of starting stamina remaining, [0,1]
	FinishTick float64 // fractional tick of finish; meaningful only when Finished
	Place      int     // assigned after finish resolution
	Finished   bool

	speed float64 // effective furlongs this tick, set by the executor each tick
}

// EntrantResult is one entrant's row in the final, immutable results record.
type EntrantResult struct {
	EntrantID   string
	Name        string
	Place       int
	Finished    bool
	FinishTick  float64 // fractional; zero when the entrant never finished
	Distance    float64
	StaminaLeft float64
	Exhausted   bool
	Payout      int64 // cents
	Attributes  AttributeSet
	Happiness   float64
}

// RaceResult is the self-contained outcome of one run: finish order,
// payouts, updated entrant values, and the commentary log. The caller is
// responsible for persisting it and notifying downstream consumers.
type RaceResult struct {
	RunID      string
	Definition RaceDefinition
	Condition  TrackCondition
	Ticks      int
	Order      []EntrantResult // ascending by place
	Commentary []CommentaryEvent
	Metrics    *Metrics
}

// NewRunID returns a fresh identifier for a race run.
func NewRunID() string {
	return uuid.NewString()
}
