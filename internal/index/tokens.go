package index

import (
	"strings"

	"regionsearch/internal/region"
)

// NgramSize is the window length for the typo-tolerant pre-filter indexes.
const NgramSize = 2

// NormalizePinyin lowercases a romanized name and strips the spaces some
// datasets put between syllables ("guang dong" → "guangdong").
func NormalizePinyin(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// indexRegion derives every token variant for one region and inserts them
// into the builder's structures:
//
//	name (and its suffix-stripped form) → exact, trie, n-grams
//	single name characters              → exact (single-char queries)
//	aliases                             → exact, trie, n-grams
//	full pinyin (and stripped form)     → exact, trie, n-grams
//	short pinyin                        → exact, trie
//
// Path segments need no separate insertion: each segment is itself a region
// name and is indexed when its own region is processed.
func (b *Builder) indexRegion(p *Parts, r region.Region) {
	id := r.ID

	indexName := func(name string) {
		name = strings.ToLower(name)
		if name == "" {
			return
		}
		p.NameExact.Insert(name, id)
		if trimmed := region.TrimSuffix(name); trimmed != name {
			p.NameExact.Insert(trimmed, id)
		}
		for _, c := range name {
			p.NameExact.Insert(string(c), id)
		}
		p.NameTrie.Insert(name, id)
		p.NameNgrams.Insert(name, id)
	}

	indexName(r.Name)
	for _, alias := range r.Aliases {
		indexName(alias)
	}

	if py := NormalizePinyin(r.PinyinFull); py != "" {
		p.PinyinExact.Insert(py, id)
		p.PinyinTrie.Insert(py, id)
		p.PinyinNgrams.Insert(py, id)
		if trimmed := region.TrimPinyinSuffix(py); trimmed != py {
			p.PinyinExact.Insert(trimmed, id)
			p.PinyinTrie.Insert(trimmed, id)
		}
	}

	if short := strings.ToLower(r.PinyinShort); short != "" {
		p.ShortExact.Insert(short, id)
		p.ShortTrie.Insert(short, id)
	}
}
