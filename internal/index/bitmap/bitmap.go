// Package bitmap provides the region-id set used as the common candidate-set
// currency across all index structures.
//
// Sets are backed by roaring bitmaps, which pick a dense or sparse container
// per 64K id block internally; callers only see set semantics. Iteration
// order is always ascending id, which is what makes scoring deterministic.
package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Set is a deduplicated set of region ids.
// The zero value is not usable; use New or FromSlice.
type Set struct {
	bm *roaring.Bitmap
}

// New returns an empty set.
func New() *Set {
	return &Set{bm: roaring.New()}
}

// FromSlice returns a set containing the given ids.
func FromSlice(ids []uint32) *Set {
	return &Set{bm: roaring.BitmapOf(ids...)}
}

// Add inserts an id. Adding an existing id is a no-op.
func (s *Set) Add(id uint32) {
	s.bm.Add(id)
}

// Contains reports whether the set holds id.
func (s *Set) Contains(id uint32) bool {
	return s.bm.Contains(id)
}

// Union returns a new set with the elements of both sets.
// A nil other is treated as empty.
func (s *Set) Union(other *Set) *Set {
	if other == nil {
		return s.Clone()
	}
	return &Set{bm: roaring.Or(s.bm, other.bm)}
}

// UnionInPlace folds other into s. A nil other is a no-op.
func (s *Set) UnionInPlace(other *Set) {
	if other == nil {
		return
	}
	s.bm.Or(other.bm)
}

// Intersect returns a new set with the elements common to both sets.
// A nil other yields the empty set.
func (s *Set) Intersect(other *Set) *Set {
	if other == nil {
		return New()
	}
	return &Set{bm: roaring.And(s.bm, other.bm)}
}

// SubsetOf reports whether every element of s is in other.
func (s *Set) SubsetOf(other *Set) bool {
	if other == nil {
		return s.IsEmpty()
	}
	return roaring.And(s.bm, other.bm).GetCardinality() == s.bm.GetCardinality()
}

// Cardinality returns the number of ids in the set.
func (s *Set) Cardinality() int {
	return int(s.bm.GetCardinality())
}

// IsEmpty reports whether the set has no elements.
func (s *Set) IsEmpty() bool {
	return s.bm.IsEmpty()
}

// Slice returns the ids in ascending order.
func (s *Set) Slice() []uint32 {
	return s.bm.ToArray()
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return &Set{bm: s.bm.Clone()}
}

// EncodeMsgpack implements msgpack.CustomEncoder using the roaring
// portable serialization as the payload.
func (s *Set) EncodeMsgpack(enc *msgpack.Encoder) error {
	data, err := s.bm.ToBytes()
	if err != nil {
		return err
	}
	return enc.EncodeBytes(data)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *Set) DecodeMsgpack(dec *msgpack.Decoder) error {
	data, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	s.bm = roaring.New()
	return s.bm.UnmarshalBinary(data)
}
