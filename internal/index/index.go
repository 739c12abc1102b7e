// Package index builds and holds the frozen region index bundle.
//
// The mutable Builder and the immutable Index are distinct types: the
// builder has exclusive ownership during construction, Build freezes the
// structures one-way, and the resulting Index is safely shared by any
// number of concurrent readers without locking.
package index

import (
	"slices"

	"regionsearch/internal/index/bitmap"
	"regionsearch/internal/index/inverted"
	"regionsearch/internal/index/trie"
	"regionsearch/internal/region"
)

// Parts is the bundle of index structures persisted as RIDX sections.
// Region entries carry only authoritative fields; derived fields (children,
// path) are recomputed during assembly so a loaded bundle can never disagree
// with its own region table.
type Parts struct {
	Regions []region.Region

	NameTrie   *trie.Trie
	PinyinTrie *trie.Trie
	ShortTrie  *trie.Trie

	NameExact   *inverted.Index
	PinyinExact *inverted.Index
	ShortExact  *inverted.Index

	NameNgrams   *inverted.Ngram
	PinyinNgrams *inverted.Ngram
}

func newParts() *Parts {
	return &Parts{
		NameTrie:     trie.New(),
		PinyinTrie:   trie.New(),
		ShortTrie:    trie.New(),
		NameExact:    inverted.New(),
		PinyinExact:  inverted.New(),
		ShortExact:   inverted.New(),
		NameNgrams:   inverted.NewNgram(NgramSize),
		PinyinNgrams: inverted.NewNgram(NgramSize),
	}
}

// Stats summarizes a built index, persisted in the metadata section.
type Stats struct {
	Regions      int `msgpack:"regions" json:"regions"`
	NameTokens   int `msgpack:"name_tokens" json:"name_tokens"`
	PinyinTokens int `msgpack:"pinyin_tokens" json:"pinyin_tokens"`
	ShortTokens  int `msgpack:"short_tokens" json:"short_tokens"`
	NgramWindows int `msgpack:"ngram_windows" json:"ngram_windows"`
}

// Index is the frozen, read-only region index bundle. All fields are
// populated once by NewFromParts and never mutated afterwards.
type Index struct {
	parts *Parts

	regions   map[uint32]region.Region
	ids       []uint32 // ascending
	levels    map[region.Level]*bitmap.Set
	children  map[uint32]*bitmap.Set
	ancestors map[uint32][]uint32 // root..self, self included
}

// NewFromParts assembles and validates a frozen Index from its persisted
// parts. It recomputes derived fields (children, ancestor chains, paths,
// per-level sets), rejects duplicate ids, dangling parents, and parent
// cycles with an IntegrityError, and verifies that every id referenced by
// any index structure exists in the region table (ErrInconsistent).
func NewFromParts(p *Parts) (*Index, error) {
	if len(p.Regions) == 0 {
		return nil, ErrNoRegions
	}

	regions := make(map[uint32]region.Region, len(p.Regions))
	ids := make([]uint32, 0, len(p.Regions))
	for _, r := range p.Regions {
		if r.ID == 0 {
			return nil, integrityErr(r.ID, "zero region id")
		}
		if _, ok := regions[r.ID]; ok {
			return nil, integrityErr(r.ID, "duplicate region id")
		}
		regions[r.ID] = r
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)

	// Parent links must resolve within the table and form a forest.
	ancestors := make(map[uint32][]uint32, len(regions))
	for _, id := range ids {
		chain := []uint32{id}
		cur := regions[id]
		for !cur.Root() {
			parent, ok := regions[cur.ParentID]
			if !ok {
				return nil, integrityErr(cur.ID, "unknown parent %d", cur.ParentID)
			}
			if slices.Contains(chain, parent.ID) {
				return nil, integrityErr(id, "parent cycle through %d", parent.ID)
			}
			chain = append(chain, parent.ID)
			cur = parent
		}
		slices.Reverse(chain)
		ancestors[id] = chain
	}

	// Derived fields: children, path, per-level sets.
	levels := make(map[region.Level]*bitmap.Set)
	children := make(map[uint32]*bitmap.Set)
	for _, id := range ids {
		r := regions[id]

		set, ok := levels[r.Level]
		if !ok {
			set = bitmap.New()
			levels[r.Level] = set
		}
		set.Add(id)

		if !r.Root() {
			cs, ok := children[r.ParentID]
			if !ok {
				cs = bitmap.New()
				children[r.ParentID] = cs
			}
			cs.Add(id)
		}
	}
	for _, id := range ids {
		r := regions[id]
		chain := ancestors[id]
		r.Path = make([]string, len(chain))
		for i, anc := range chain {
			r.Path[i] = regions[anc].Name
		}
		if cs, ok := children[id]; ok {
			r.Children = cs.Slice()
		} else {
			r.Children = nil
		}
		regions[id] = r
	}

	ix := &Index{
		parts:     p,
		regions:   regions,
		ids:       ids,
		levels:    levels,
		children:  children,
		ancestors: ancestors,
	}
	if err := ix.checkConsistency(); err != nil {
		return nil, err
	}
	return ix, nil
}

// checkConsistency verifies that no index structure references an id
// missing from the region table.
func (ix *Index) checkConsistency() error {
	known := bitmap.FromSlice(ix.ids)
	structures := []interface{ AllIDs() *bitmap.Set }{
		ix.parts.NameTrie, ix.parts.PinyinTrie, ix.parts.ShortTrie,
		ix.parts.NameExact, ix.parts.PinyinExact, ix.parts.ShortExact,
		ix.parts.NameNgrams, ix.parts.PinyinNgrams,
	}
	for _, s := range structures {
		if !s.AllIDs().SubsetOf(known) {
			return ErrInconsistent
		}
	}
	return nil
}

// Parts exposes the persisted structures for the storage codec.
func (ix *Index) Parts() *Parts {
	return ix.parts
}

// Region returns a copy of the region with the given id.
func (ix *Index) Region(id uint32) (region.Region, bool) {
	r, ok := ix.regions[id]
	return r, ok
}

// IDs returns all region ids in ascending order. Callers must not mutate
// the returned slice.
func (ix *Index) IDs() []uint32 {
	return ix.ids
}

// Len returns the number of regions in the table.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// ExactName looks up a lowercased name token in the exact name index.
func (ix *Index) ExactName(token string) *bitmap.Set {
	return ix.parts.NameExact.Lookup(token)
}

// ExactPinyin looks up a normalized full-pinyin token.
func (ix *Index) ExactPinyin(token string) *bitmap.Set {
	return ix.parts.PinyinExact.Lookup(token)
}

// ExactShort looks up a short-pinyin initials token.
func (ix *Index) ExactShort(token string) *bitmap.Set {
	return ix.parts.ShortExact.Lookup(token)
}

// NamePrefix returns regions whose name starts with prefix.
func (ix *Index) NamePrefix(prefix string) *bitmap.Set {
	return ix.parts.NameTrie.PrefixSearch(prefix)
}

// PinyinPrefix returns regions whose full pinyin starts with prefix.
func (ix *Index) PinyinPrefix(prefix string) *bitmap.Set {
	return ix.parts.PinyinTrie.PrefixSearch(prefix)
}

// ShortPrefix returns regions whose short pinyin starts with prefix.
func (ix *Index) ShortPrefix(prefix string) *bitmap.Set {
	return ix.parts.ShortTrie.PrefixSearch(prefix)
}

// NgramCandidates returns the union of name and pinyin n-gram hits for
// text, the coarse pre-filter for the fuzzy strategy.
func (ix *Index) NgramCandidates(text string) *bitmap.Set {
	out := ix.parts.NameNgrams.Candidates(text)
	out.UnionInPlace(ix.parts.PinyinNgrams.Candidates(text))
	return out
}

// LevelSet returns the set of regions at the given administrative level.
func (ix *Index) LevelSet(l region.Level) *bitmap.Set {
	if set, ok := ix.levels[l]; ok {
		return set.Clone()
	}
	return bitmap.New()
}

// ChildrenOf returns the direct children of a region.
func (ix *Index) ChildrenOf(id uint32) *bitmap.Set {
	if set, ok := ix.children[id]; ok {
		return set.Clone()
	}
	return bitmap.New()
}

// AncestorIDs returns the root..self id chain for a region, self included.
// Callers must not mutate the returned slice.
func (ix *Index) AncestorIDs(id uint32) []uint32 {
	return ix.ancestors[id]
}

// Path returns the root..self name chain for a region.
func (ix *Index) Path(id uint32) []string {
	if r, ok := ix.regions[id]; ok {
		return r.Path
	}
	return nil
}

// Stats reports table and token counts for the bundle.
func (ix *Index) Stats() Stats {
	return Stats{
		Regions:      len(ix.ids),
		NameTokens:   ix.parts.NameExact.Tokens(),
		PinyinTokens: ix.parts.PinyinExact.Tokens(),
		ShortTokens:  ix.parts.ShortExact.Tokens(),
		NgramWindows: ix.parts.NameNgrams.Grams() + ix.parts.PinyinNgrams.Grams(),
	}
}
