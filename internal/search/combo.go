package search

import (
	"context"

	"regionsearch/internal/index"
	"regionsearch/internal/region"
)

const (
	comboMinFragments = 2
	comboMaxFragments = 4
	comboMaxFragLen   = 4
)

// combo splits a run of initials like "gdfs" into contiguous fragments and
// resolves each fragment as short pinyin at successive administrative
// levels, requiring each match to be a child of the previous one. Fewer
// fragments are tried first so "gdfs" resolves as gd+fs before g+d+f+s.
func (e *Engine) combo(ctx context.Context, ix *index.Index, q string) []candidate {
	runes := []rune(q)
	n := len(runes)
	if n < comboMinFragments {
		return nil
	}

	seen := make(map[uint32]candidate)
	for k := comboMinFragments; k <= comboMaxFragments && k <= n; k++ {
		if ctx.Err() != nil {
			break
		}
		for _, cuts := range splitIndices(n, k) {
			frags := fragments(runes, cuts)
			if tooLong(frags) {
				continue
			}
			for _, chain := range e.resolveChain(ix, frags) {
				leaf := chain[len(chain)-1]
				add(seen, candidate{
					id:        leaf,
					strategy:  StrategyCombo,
					quality:   1.0,
					position:  1.0,
					pathRatio: 1.0,
				})
				// A resolved city also surfaces its districts, at
				// reduced quality since the query never named them.
				if r, ok := ix.Region(leaf); ok && r.Level == region.LevelCity {
					for _, child := range ix.ChildrenOf(leaf).Slice() {
						add(seen, candidate{
							id:        child,
							strategy:  StrategyCombo,
							quality:   0.7,
							position:  1.0,
							pathRatio: 1.0,
						})
					}
				}
			}
		}
		if len(seen) > 0 {
			// A coarser split already resolved; finer splits of the
			// same letters only add noise.
			break
		}
	}

	out := make([]candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	return out
}

// resolveChain matches fragments against short pinyin level by level. The
// first fragment anchors at province or city; each later fragment must
// resolve to a child of its predecessor.
func (e *Engine) resolveChain(ix *index.Index, frags []string) [][]uint32 {
	anchorLevels := []region.Level{region.LevelProvince, region.LevelCity}
	var chains [][]uint32
	for _, lvl := range anchorLevels {
		anchors := ix.ExactShort(frags[0]).Intersect(ix.LevelSet(lvl))
		for _, anchor := range anchors.Slice() {
			chains = append(chains, extend(ix, []uint32{anchor}, frags[1:])...)
		}
	}
	return chains
}

func extend(ix *index.Index, chain []uint32, rest []string) [][]uint32 {
	if len(rest) == 0 {
		return [][]uint32{chain}
	}
	head := chain[len(chain)-1]
	matches := ix.ExactShort(rest[0]).Intersect(ix.ChildrenOf(head))
	var out [][]uint32
	for _, id := range matches.Slice() {
		next := make([]uint32, len(chain), len(chain)+1)
		copy(next, chain)
		out = append(out, extend(ix, append(next, id), rest[1:])...)
	}
	return out
}

// splitIndices enumerates the ways to place k-1 cut points in a string of
// length n, yielding k non-empty contiguous fragments.
func splitIndices(n, k int) [][]int {
	if k < 1 || k > n {
		return nil
	}
	cuts := make([]int, k-1)
	for i := range cuts {
		cuts[i] = i + 1
	}
	var out [][]int
	for {
		out = append(out, append([]int(nil), cuts...))
		// Advance the odometer: rightmost cut that can still move.
		i := len(cuts) - 1
		for i >= 0 {
			limit := n - (len(cuts) - 1 - i) - 1
			if cuts[i] < limit {
				break
			}
			i--
		}
		if i < 0 {
			return out
		}
		cuts[i]++
		for j := i + 1; j < len(cuts); j++ {
			cuts[j] = cuts[j-1] + 1
		}
	}
}

func fragments(runes []rune, cuts []int) []string {
	out := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, c := range append(cuts, len(runes)) {
		out = append(out, string(runes[prev:c]))
		prev = c
	}
	return out
}

func tooLong(frags []string) bool {
	for _, f := range frags {
		if len(f) > comboMaxFragLen {
			return true
		}
	}
	return false
}

// add keeps the best candidate per id.
func add(seen map[uint32]candidate, c candidate) {
	if prev, ok := seen[c.id]; ok && prev.quality >= c.quality {
		return
	}
	seen[c.id] = c
}
