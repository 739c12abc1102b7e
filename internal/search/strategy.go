package search

import (
	"context"
	"strings"

	"regionsearch/internal/index"
	"regionsearch/internal/region"
)

// Strategy names the retrieval path that produced a result.
type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategyPrefix Strategy = "prefix"
	StrategyPath   Strategy = "path"
	StrategyCombo  Strategy = "combo"
	StrategyFuzzy  Strategy = "fuzzy"
)

// candidate is one region produced by one retrieval strategy, carrying the
// per-strategy match-quality signals consumed by scoring.
type candidate struct {
	id        uint32
	strategy  Strategy
	quality   float64 // 0..1, how completely the query matched
	position  float64 // 0..1, 1 = match at the start of the field
	pathRatio float64 // 0..1, fraction of hierarchy levels matched in order
}

// strategyFunc is a pure function of (query, immutable index); strategies
// have no data dependency on each other and run in parallel.
type strategyFunc func(ctx context.Context, ix *index.Index, q string) []candidate

// exactName matches the whole query against the name token space (full
// names, suffix-stripped names, aliases, single characters).
func (e *Engine) exactName(_ context.Context, ix *index.Index, q string) []candidate {
	ids := ix.ExactName(q)
	if trimmed := region.TrimSuffix(q); trimmed != q {
		ids.UnionInPlace(ix.ExactName(trimmed))
	}
	return fixedCandidates(ids.Slice(), StrategyExact, 1.0, 1.0)
}

// exactPinyin matches the normalized query against full-pinyin tokens.
func (e *Engine) exactPinyin(_ context.Context, ix *index.Index, q string) []candidate {
	py := index.NormalizePinyin(q)
	ids := ix.ExactPinyin(py)
	if trimmed := region.TrimPinyinSuffix(py); trimmed != py {
		ids.UnionInPlace(ix.ExactPinyin(trimmed))
	}
	return fixedCandidates(ids.Slice(), StrategyExact, 1.0, 1.0)
}

// exactShort matches the query against short-pinyin initials.
func (e *Engine) exactShort(_ context.Context, ix *index.Index, q string) []candidate {
	return fixedCandidates(ix.ExactShort(q).Slice(), StrategyExact, 1.0, 1.0)
}

// namePrefix walks the name trie and grades each hit by how much of the
// region's name the query covers.
func (e *Engine) namePrefix(_ context.Context, ix *index.Index, q string) []candidate {
	var out []candidate
	qlen := len([]rune(q))
	for _, id := range ix.NamePrefix(q).Slice() {
		r, ok := ix.Region(id)
		if !ok {
			continue
		}
		out = append(out, candidate{
			id:       id,
			strategy: StrategyPrefix,
			quality:  coverage(qlen, strings.ToLower(r.Name)),
			position: 1.0,
		})
	}
	return out
}

// pinyinPrefix walks the full-pinyin trie.
func (e *Engine) pinyinPrefix(_ context.Context, ix *index.Index, q string) []candidate {
	py := index.NormalizePinyin(q)
	var out []candidate
	qlen := len(py)
	for _, id := range ix.PinyinPrefix(py).Slice() {
		r, ok := ix.Region(id)
		if !ok {
			continue
		}
		out = append(out, candidate{
			id:       id,
			strategy: StrategyPrefix,
			quality:  coverage(qlen, index.NormalizePinyin(r.PinyinFull)),
			position: 1.0,
		})
	}
	return out
}

// shortPrefix walks the short-pinyin trie.
func (e *Engine) shortPrefix(_ context.Context, ix *index.Index, q string) []candidate {
	var out []candidate
	qlen := len(q)
	for _, id := range ix.ShortPrefix(q).Slice() {
		r, ok := ix.Region(id)
		if !ok {
			continue
		}
		out = append(out, candidate{
			id:       id,
			strategy: StrategyPrefix,
			quality:  coverage(qlen, strings.ToLower(r.PinyinShort)),
			position: 1.0,
		})
	}
	return out
}

// hierarchyPath resolves separator-delimited segments in hierarchy order.
// Each segment narrows to regions descending from a previous match; a
// segment that matches out of order is skipped and does not count toward
// path completeness.
func (e *Engine) hierarchyPath(_ context.Context, ix *index.Index, q string) []candidate {
	segments := SplitPath(q)
	if len(segments) == 0 {
		return nil
	}

	var matched []uint32
	matchedSegs := 0
	for _, seg := range segments {
		ids := segmentLookup(ix, seg)
		if len(ids) == 0 {
			continue
		}
		if matchedSegs == 0 {
			matched = ids
			matchedSegs++
			continue
		}
		var narrowed []uint32
		for _, id := range ids {
			if descendsFrom(ix, id, matched) {
				narrowed = append(narrowed, id)
			}
		}
		if len(narrowed) == 0 {
			// Out of hierarchy order: skip the segment.
			continue
		}
		matched = narrowed
		matchedSegs++
	}
	if len(matched) == 0 {
		return nil
	}

	ratio := float64(matchedSegs) / float64(len(segments))
	out := make([]candidate, 0, len(matched))
	for _, id := range matched {
		out = append(out, candidate{
			id:        id,
			strategy:  StrategyPath,
			quality:   1.0,
			position:  1.0,
			pathRatio: ratio,
		})
	}
	return out
}

// fuzzy re-ranks the n-gram pre-filter by edit distance against names and
// pinyin, keeping candidates within a threshold proportional to query
// length. The scan checks ctx periodically so a deadline yields partial
// rather than late results.
func (e *Engine) fuzzy(ctx context.Context, ix *index.Index, q string) []candidate {
	qRunes := []rune(q)
	maxDist := int(e.cfg.EditDistanceRatio * float64(len(qRunes)))
	if maxDist < 1 {
		maxDist = 1
	}
	if maxDist > e.cfg.MaxEditDistance {
		maxDist = e.cfg.MaxEditDistance
	}

	var out []candidate
	for i, id := range ix.NgramCandidates(q).Slice() {
		if i%128 == 0 && ctx.Err() != nil {
			return out
		}
		r, ok := ix.Region(id)
		if !ok {
			continue
		}

		name := strings.ToLower(r.Name)
		py := index.NormalizePinyin(r.PinyinFull)
		dist := levenshtein(q, name)
		field := name
		if py != "" {
			if d := levenshtein(q, py); d < dist {
				dist, field = d, py
			}
		}
		if dist > maxDist {
			continue
		}
		out = append(out, candidate{
			id:       id,
			strategy: StrategyFuzzy,
			quality:  1.0 - float64(dist)/float64(maxDist+1),
			position: positionScore(field, q),
		})
	}
	return out
}

// segmentLookup resolves one path segment against the exact name space,
// falling back to normalized pinyin.
func segmentLookup(ix *index.Index, seg string) []uint32 {
	seg = strings.ToLower(seg)
	ids := ix.ExactName(seg)
	if trimmed := region.TrimSuffix(seg); trimmed != seg {
		ids.UnionInPlace(ix.ExactName(trimmed))
	}
	if ids.IsEmpty() {
		py := index.NormalizePinyin(seg)
		ids = ix.ExactPinyin(py)
		if trimmed := region.TrimPinyinSuffix(py); trimmed != py {
			ids.UnionInPlace(ix.ExactPinyin(trimmed))
		}
	}
	return ids.Slice()
}

// descendsFrom reports whether any strict ancestor of id is in anchors.
func descendsFrom(ix *index.Index, id uint32, anchors []uint32) bool {
	chain := ix.AncestorIDs(id)
	if len(chain) < 2 {
		return false
	}
	for _, anc := range chain[:len(chain)-1] {
		for _, a := range anchors {
			if anc == a {
				return true
			}
		}
	}
	return false
}

// fixedCandidates wraps a candidate set where every member shares the same
// signals, as with exact lookups.
func fixedCandidates(ids []uint32, s Strategy, quality, position float64) []candidate {
	if len(ids) == 0 {
		return nil
	}
	out := make([]candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, candidate{id: id, strategy: s, quality: quality, position: position})
	}
	return out
}

// coverage grades a prefix match by the fraction of the field the query
// covers: matching all of "foshan" beats matching the front of
// "foshanzhen".
func coverage(qlen int, field string) float64 {
	flen := len([]rune(field))
	if flen == 0 || qlen > flen {
		return 0.5
	}
	return float64(qlen) / float64(flen)
}

// positionScore is the normalized match-position signal: 1 at the start of
// the field, decaying toward 0, and 0 when the query is not a substring.
func positionScore(field, q string) float64 {
	idx := strings.Index(field, q)
	if idx < 0 {
		return 0
	}
	flen := len(field)
	if flen == 0 {
		return 0
	}
	return 1.0 - float64(idx)/float64(flen)
}
