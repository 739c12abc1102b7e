package search

import (
	"strings"
	"unicode"
)

// Kind is the classified query type, decided purely from the query string.
// Strategy dispatch is a fixed mapping from Kind to strategy functions.
type Kind int

const (
	KindUnknown Kind = iota
	KindChineseName
	KindHierarchyPath
	KindFullPinyin
	KindShortPinyin
	KindComboPinyin
)

func (k Kind) String() string {
	switch k {
	case KindChineseName:
		return "chinese_name"
	case KindHierarchyPath:
		return "hierarchy_path"
	case KindFullPinyin:
		return "full_pinyin"
	case KindShortPinyin:
		return "short_pinyin"
	case KindComboPinyin:
		return "combo_pinyin"
	default:
		return "unknown"
	}
}

// pathSeparators chain hierarchy segments ("广东省>佛山市", "guangdong/foshan").
const pathSeparators = ">/-_"

// Classify assigns a query type:
//
//	two or more separator-delimited segments          → HierarchyPath
//	any Han character                                 → ChineseName
//	letters, ≤2                                       → ShortPinyin
//	letters, 3, no vowel                              → ShortPinyin
//	letters, 4–8, not syllable-shaped                 → ComboPinyin
//	letters, syllable-shaped or >8                    → FullPinyin
//	anything else                                     → Unknown
func Classify(query string) Kind {
	q := strings.TrimSpace(query)
	if q == "" {
		return KindUnknown
	}

	if len(SplitPath(q)) >= 2 {
		return KindHierarchyPath
	}
	if containsHan(q) {
		return KindChineseName
	}

	lower := strings.ReplaceAll(strings.ToLower(q), " ", "")
	if !isLetters(lower) {
		return KindUnknown
	}

	n := len(lower)
	switch {
	case n <= 2:
		return KindShortPinyin
	case n == 3:
		if looksLikeSyllables(lower) {
			return KindFullPinyin
		}
		return KindShortPinyin
	case n <= 8 && !looksLikeSyllables(lower):
		// Four to eight letters that do not scan as pinyin syllables are
		// read as concatenated per-level initials ("gdfs").
		return KindComboPinyin
	default:
		return KindFullPinyin
	}
}

// SplitPath splits a query on hierarchy separators, dropping empty
// segments. A query without separators yields a single segment.
func SplitPath(q string) []string {
	parts := strings.FieldsFunc(q, func(r rune) bool {
		return strings.ContainsRune(pathSeparators, r)
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// looksLikeSyllables reports whether s could be full-syllable pinyin: it
// needs at least one vowel and never runs three consonants in a row.
func looksLikeSyllables(s string) bool {
	const vowels = "aeiou"
	if !strings.ContainsAny(s, vowels) {
		return false
	}
	streak := 0
	for _, r := range s {
		if strings.ContainsRune(vowels, r) {
			streak = 0
			continue
		}
		streak++
		if streak > 2 {
			return false
		}
	}
	return true
}
