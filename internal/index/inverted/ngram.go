package inverted

import (
	"github.com/vmihailenco/msgpack/v5"

	"regionsearch/internal/index/bitmap"
)

// Ngram indexes every contiguous n-rune window of inserted texts, giving a
// coarse typo-tolerant pre-filter. Candidates returns a union, never a final
// score: callers are expected to re-rank with edit distance.
type Ngram struct {
	n        int
	postings map[string]*bitmap.Set
}

// NewNgram returns an empty n-gram index. n must be at least 1.
func NewNgram(n int) *Ngram {
	if n < 1 {
		n = 1
	}
	return &Ngram{n: n, postings: make(map[string]*bitmap.Set)}
}

// N returns the configured window length.
func (g *Ngram) N() int {
	return g.n
}

// Insert indexes every n-rune window of text to id. Texts shorter than n
// are indexed as a single window.
func (g *Ngram) Insert(text string, id uint32) {
	for _, w := range windows(text, g.n) {
		set, ok := g.postings[w]
		if !ok {
			set = bitmap.New()
			g.postings[w] = set
		}
		set.Add(id)
	}
}

// Candidates decomposes text into n-rune windows and returns the union of
// the sets for every window present in the index.
func (g *Ngram) Candidates(text string) *bitmap.Set {
	out := bitmap.New()
	for _, w := range windows(text, g.n) {
		if set, ok := g.postings[w]; ok {
			out.UnionInPlace(set)
		}
	}
	return out
}

// Grams returns the number of distinct windows indexed.
func (g *Ngram) Grams() int {
	return len(g.postings)
}

// AllIDs returns the union of every posting set, for consistency checks.
func (g *Ngram) AllIDs() *bitmap.Set {
	out := bitmap.New()
	for _, set := range g.postings {
		out.UnionInPlace(set)
	}
	return out
}

// windows returns all contiguous n-rune windows of text. A non-empty text
// shorter than n is returned whole.
func windows(text string, n int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= n {
		return []string{text}
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

type ngramEnc struct {
	N        int                    `msgpack:"n"`
	Postings map[string]*bitmap.Set `msgpack:"p"`
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (g *Ngram) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(ngramEnc{N: g.n, Postings: g.postings})
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (g *Ngram) DecodeMsgpack(dec *msgpack.Decoder) error {
	var e ngramEnc
	if err := dec.Decode(&e); err != nil {
		return err
	}
	g.n = e.N
	g.postings = e.Postings
	if g.postings == nil {
		g.postings = make(map[string]*bitmap.Set)
	}
	return nil
}
