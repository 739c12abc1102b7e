package ridx

import (
	"regionsearch/internal/index/inverted"
	"regionsearch/internal/index/trie"
	"regionsearch/internal/region"
)

// Section payload shapes. Field tags are part of the on-disk format.

type regionPayload struct {
	Regions []region.Region `msgpack:"regions"`
}

type triesPayload struct {
	Name   *trie.Trie `msgpack:"name"`
	Pinyin *trie.Trie `msgpack:"pinyin"`
	Short  *trie.Trie `msgpack:"short"`
}

type invertedPayload struct {
	Name   *inverted.Index `msgpack:"name"`
	Pinyin *inverted.Index `msgpack:"pinyin"`
	Short  *inverted.Index `msgpack:"short"`
}

type ngramPayload struct {
	Name   *inverted.Ngram `msgpack:"name"`
	Pinyin *inverted.Ngram `msgpack:"pinyin"`
}
