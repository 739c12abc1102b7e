// Package trie implements a prefix tree over token strings (names, full
// pinyin, short-pinyin initials) mapping every prefix to the set of region
// ids whose tokens start with it.
//
// Each node along a token's rune path accumulates the id, so a prefix lookup
// is a single O(len(prefix)) walk ending at a node whose set is the answer;
// no subtree collection is needed at query time.
package trie

import (
	"github.com/vmihailenco/msgpack/v5"

	"regionsearch/internal/index/bitmap"
)

type node struct {
	ids      *bitmap.Set
	children map[rune]*node
}

func newNode() *node {
	return &node{ids: bitmap.New()}
}

// Trie is a mutable prefix tree. It is built single-threaded and must not
// be mutated once queries start.
type Trie struct {
	root   *node
	tokens int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert associates id with every prefix of token. Re-inserting the same
// (token, id) pair is a no-op.
func (t *Trie) Insert(token string, id uint32) {
	if token == "" {
		return
	}
	n := t.root
	for _, r := range token {
		child, ok := n.children[r]
		if !ok {
			if n.children == nil {
				n.children = make(map[rune]*node)
			}
			child = newNode()
			n.children[r] = child
		}
		child.ids.Add(id)
		n = child
	}
	t.tokens++
}

// PrefixSearch returns the set of ids whose tokens start with query.
// An empty or unmatched query yields the empty set.
func (t *Trie) PrefixSearch(query string) *bitmap.Set {
	if query == "" {
		return bitmap.New()
	}
	n := t.root
	for _, r := range query {
		child, ok := n.children[r]
		if !ok {
			return bitmap.New()
		}
		n = child
	}
	return n.ids.Clone()
}

// Insertions returns the number of Insert calls, counted for build stats.
func (t *Trie) Insertions() int {
	return t.tokens
}

// AllIDs returns the union of every id stored anywhere in the trie.
// Used for index/table consistency checks at load time.
func (t *Trie) AllIDs() *bitmap.Set {
	out := bitmap.New()
	for _, child := range t.root.children {
		// Every id below a first-level node is already present in that
		// node's set, so one level is enough.
		out.UnionInPlace(child.ids)
	}
	return out
}

// encNode is the serialized shape of one trie node. Child runes are encoded
// as strings because msgpack map keys must be strings for portability.
type encNode struct {
	IDs      *bitmap.Set         `msgpack:"b"`
	Children map[string]*encNode `msgpack:"c,omitempty"`
}

func toEnc(n *node) *encNode {
	e := &encNode{IDs: n.ids}
	if len(n.children) > 0 {
		e.Children = make(map[string]*encNode, len(n.children))
		for r, child := range n.children {
			e.Children[string(r)] = toEnc(child)
		}
	}
	return e
}

func fromEnc(e *encNode) *node {
	n := &node{ids: e.IDs}
	if n.ids == nil {
		n.ids = bitmap.New()
	}
	if len(e.Children) > 0 {
		n.children = make(map[rune]*node, len(e.Children))
		for s, child := range e.Children {
			for _, r := range s {
				n.children[r] = fromEnc(child)
				break
			}
		}
	}
	return n
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (t *Trie) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeInt(int64(t.tokens)); err != nil {
		return err
	}
	return enc.Encode(toEnc(t.root))
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (t *Trie) DecodeMsgpack(dec *msgpack.Decoder) error {
	tokens, err := dec.DecodeInt()
	if err != nil {
		return err
	}
	var root encNode
	if err := dec.Decode(&root); err != nil {
		return err
	}
	t.tokens = tokens
	t.root = fromEnc(&root)
	return nil
}
