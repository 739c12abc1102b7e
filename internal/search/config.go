package search

import "regionsearch/internal/region"

// Config holds the tunable scoring and dispatch parameters. The numbers are
// tuning knobs, not contracts; only the relative ordering of the strategy
// weights (exact > prefix > combo > fuzzy) is relied on by callers.
type Config struct {
	// Strategy weights, multiplied by the per-candidate match quality.
	ExactWeight  float64
	PrefixWeight float64
	ComboWeight  float64
	FuzzyWeight  float64

	// PositionWeight scales the normalized match-position signal (matches
	// earlier in a name score higher).
	PositionWeight float64

	// PathWeight scales the path-completeness ratio for hierarchy-path and
	// combo-pinyin queries.
	PathWeight float64

	// LevelBonus is a flat per-level additive bonus, favoring higher
	// administrative levels on otherwise equal matches.
	LevelBonus map[region.Level]float64

	// EditDistanceRatio sets the fuzzy threshold proportional to query
	// length; MaxEditDistance caps it.
	EditDistanceRatio float64
	MaxEditDistance   int

	// FuzzyTrigger is the minimum query length for the fuzzy fallback;
	// shorter queries are near everything.
	FuzzyTrigger int

	// DefaultLimit applies when a caller passes no result limit.
	DefaultLimit int
}

// DefaultConfig returns the tuning used by the shipped dataset.
func DefaultConfig() Config {
	return Config{
		ExactWeight:    1.0,
		PrefixWeight:   0.75,
		ComboWeight:    0.6,
		FuzzyWeight:    0.3,
		PositionWeight: 0.2,
		PathWeight:     0.5,
		LevelBonus: map[region.Level]float64{
			region.LevelCountry:  0.35,
			region.LevelProvince: 0.3,
			region.LevelCity:     0.25,
			region.LevelDistrict: 0.15,
			region.LevelStreet:   0.1,
			region.LevelVillage:  0.05,
		},
		EditDistanceRatio: 0.4,
		MaxEditDistance:   3,
		FuzzyTrigger:      5,
		DefaultLimit:      10,
	}
}
