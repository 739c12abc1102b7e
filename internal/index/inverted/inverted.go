// Package inverted provides the exact-token inverted index and the
// character n-gram index, both mapping strings to bitmap candidate sets.
package inverted

import (
	"github.com/vmihailenco/msgpack/v5"

	"regionsearch/internal/index/bitmap"
)

// Index is an exact-token map from token to region-id set. Used for
// short-pinyin initials and whole-name exact matches.
type Index struct {
	postings map[string]*bitmap.Set
}

// New returns an empty inverted index.
func New() *Index {
	return &Index{postings: make(map[string]*bitmap.Set)}
}

// Insert associates id with token. Repeat insertions are no-ops.
func (ix *Index) Insert(token string, id uint32) {
	if token == "" {
		return
	}
	set, ok := ix.postings[token]
	if !ok {
		set = bitmap.New()
		ix.postings[token] = set
	}
	set.Add(id)
}

// Lookup returns the set for an exact token, empty if absent.
func (ix *Index) Lookup(token string) *bitmap.Set {
	if set, ok := ix.postings[token]; ok {
		return set.Clone()
	}
	return bitmap.New()
}

// Tokens returns the number of distinct tokens.
func (ix *Index) Tokens() int {
	return len(ix.postings)
}

// AllIDs returns the union of every posting set, for consistency checks.
func (ix *Index) AllIDs() *bitmap.Set {
	out := bitmap.New()
	for _, set := range ix.postings {
		out.UnionInPlace(set)
	}
	return out
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (ix *Index) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(ix.postings)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (ix *Index) DecodeMsgpack(dec *msgpack.Decoder) error {
	ix.postings = make(map[string]*bitmap.Set)
	return dec.Decode(&ix.postings)
}
