package region

import "strings"

// Common administrative suffixes. Queries and names are compared both with
// and without these so "广东" still matches "广东省" exactly.
var nameSuffixes = []string{
	"特别行政区",
	"自治州",
	"自治区",
	"省",
	"市",
	"区",
	"县",
}

// pinyinSuffixes mirror nameSuffixes for romanized names ("guangdongsheng").
var pinyinSuffixes = []string{"sheng", "shi"}

// TrimSuffix strips one trailing administrative suffix from a name, if any.
// Longer suffixes are tried first so "自治区" wins over "区".
func TrimSuffix(name string) string {
	for _, s := range nameSuffixes {
		if len(name) > len(s) && strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)]
		}
	}
	return name
}

// TrimPinyinSuffix strips one trailing romanized suffix from a pinyin name.
func TrimPinyinSuffix(pinyin string) string {
	for _, s := range pinyinSuffixes {
		if len(pinyin) > len(s) && strings.HasSuffix(pinyin, s) {
			return pinyin[:len(pinyin)-len(s)]
		}
	}
	return pinyin
}
