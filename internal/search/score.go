package search

import (
	"sort"

	"regionsearch/internal/index"
)

// score combines a candidate's signals with the configured weights. The
// strategy weight dominates so an exact match always outranks a fuzzy one;
// the level bonus breaks ties toward coarser administrative units.
func (e *Engine) score(ix *index.Index, c candidate) float64 {
	s := e.strategyWeight(c.strategy) * c.quality
	s += e.cfg.PositionWeight * c.position
	s += e.cfg.PathWeight * c.pathRatio
	if r, ok := ix.Region(c.id); ok {
		s += e.cfg.LevelBonus[r.Level]
	}
	return s
}

func (e *Engine) strategyWeight(s Strategy) float64 {
	switch s {
	case StrategyExact, StrategyPath:
		return e.cfg.ExactWeight
	case StrategyPrefix:
		return e.cfg.PrefixWeight
	case StrategyCombo:
		return e.cfg.ComboWeight
	case StrategyFuzzy:
		return e.cfg.FuzzyWeight
	default:
		return 0
	}
}

// merge collapses candidates to one scored result per region, keeping the
// highest-scoring strategy for each, and orders by score descending with
// id as the deterministic tiebreak.
func (e *Engine) merge(ix *index.Index, cands []candidate) []Result {
	best := make(map[uint32]Result, len(cands))
	for _, c := range cands {
		s := e.score(ix, c)
		if prev, ok := best[c.id]; ok && prev.Score >= s {
			continue
		}
		r, ok := ix.Region(c.id)
		if !ok {
			continue
		}
		best[c.id] = Result{
			Region:   r,
			Score:    s,
			Strategy: c.strategy,
			Path:     ix.Path(c.id),
		}
	}

	out := make([]Result, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Region.ID < out[j].Region.ID
	})
	return out
}
