// Package region defines the administrative-division data model shared by
// the index builder, the storage codec, and the search engine.
//
// A Region is a node in the division hierarchy (country → province → city →
// district → ...). Regions are constructed in bulk by the index builder and
// are immutable afterwards; the parent relation is a weak id reference into
// the flat region table, never an owning link.
package region

// Record is the build-time input for one region, as supplied by the external
// ETL step. Pinyin fields are pre-computed upstream and may be empty; the
// core never romanizes anything itself.
type Record struct {
	ID          uint32   `json:"id" msgpack:"id"`
	Name        string   `json:"name" msgpack:"name"`
	Level       Level    `json:"level" msgpack:"level"`
	ParentID    uint32   `json:"parent_id,omitempty" msgpack:"parent_id"`
	PinyinFull  string   `json:"pinyin_full,omitempty" msgpack:"pinyin_full"`
	PinyinShort string   `json:"pinyin_short,omitempty" msgpack:"pinyin_short"`
	Aliases     []string `json:"aliases,omitempty" msgpack:"aliases"`
}

// Region is one entry in the frozen region table. Children and Path are
// derived at build time from the ParentID relation; ParentID == 0 marks a
// root region (region ids start at 1).
type Region struct {
	ID          uint32   `json:"id" msgpack:"id"`
	Name        string   `json:"name" msgpack:"name"`
	Level       Level    `json:"level" msgpack:"level"`
	ParentID    uint32   `json:"parent_id,omitempty" msgpack:"parent_id"`
	PinyinFull  string   `json:"pinyin_full,omitempty" msgpack:"pinyin_full"`
	PinyinShort string   `json:"pinyin_short,omitempty" msgpack:"pinyin_short"`
	Aliases     []string `json:"aliases,omitempty" msgpack:"aliases"`
	Children    []uint32 `json:"children,omitempty" msgpack:"children"`
	Path        []string `json:"path" msgpack:"path"`
}

// Root reports whether the region has no parent.
func (r Region) Root() bool {
	return r.ParentID == 0
}
