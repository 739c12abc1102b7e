package search

import (
	"context"
	"errors"
	"testing"

	"regionsearch/internal/index"
	"regionsearch/internal/region"
)

// testEngine builds an engine over a small slice of the real dataset:
// Guangdong with two cities and one district, plus Shanghai.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	b := index.NewBuilder(nil)
	b.Add(
		region.Record{ID: 1, Name: "广东省", Level: region.LevelProvince, PinyinFull: "guangdong", PinyinShort: "gd"},
		region.Record{ID: 2, Name: "佛山市", Level: region.LevelCity, ParentID: 1, PinyinFull: "foshan", PinyinShort: "fs"},
		region.Record{ID: 3, Name: "广州市", Level: region.LevelCity, ParentID: 1, PinyinFull: "guangzhou", PinyinShort: "gz", Aliases: []string{"羊城"}},
		region.Record{ID: 4, Name: "禅城区", Level: region.LevelDistrict, ParentID: 2, PinyinFull: "chancheng", PinyinShort: "cc"},
		region.Record{ID: 5, Name: "上海市", Level: region.LevelProvince, PinyinFull: "shanghai", PinyinShort: "sh"},
	)
	ix, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(ix, DefaultConfig(), nil)
}

func search(t *testing.T, e *Engine, q string) []Result {
	t.Helper()
	rs, err := e.Search(context.Background(), q, Options{})
	if err != nil {
		t.Fatalf("Search(%q): %v", q, err)
	}
	return rs
}

func ids(rs []Result) []uint32 {
	out := make([]uint32, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Region.ID)
	}
	return out
}

func contains(rs []Result, id uint32) bool {
	for _, r := range rs {
		if r.Region.ID == id {
			return true
		}
	}
	return false
}

func TestSearchTopResult(t *testing.T) {
	tests := []struct {
		query string
		top   uint32
	}{
		{"佛山", 2},
		{"佛山市", 2},
		{"广东省", 1},
		{"羊城", 3}, // alias
		{"foshan", 2},
		{"guangdong", 1},
		{"fs", 2},
		{"sh", 5},
		{"禅城区", 4},
	}
	e := testEngine(t)
	for _, tt := range tests {
		rs := search(t, e, tt.query)
		if len(rs) == 0 {
			t.Errorf("Search(%q) returned nothing", tt.query)
			continue
		}
		if rs[0].Region.ID != tt.top {
			t.Errorf("Search(%q) top = %d (%v), want %d", tt.query, rs[0].Region.ID, ids(rs), tt.top)
		}
	}
}

func TestSearchComboPinyin(t *testing.T) {
	e := testEngine(t)
	rs := search(t, e, "gdfs")
	if len(rs) == 0 {
		t.Fatal("no results for gdfs")
	}
	if rs[0].Region.ID != 2 {
		t.Fatalf("gdfs top = %d (%v), want 佛山市", rs[0].Region.ID, ids(rs))
	}
	if rs[0].Strategy != StrategyCombo {
		t.Errorf("gdfs strategy = %q, want combo", rs[0].Strategy)
	}
	// The matched city surfaces its districts below it.
	if !contains(rs, 4) {
		t.Errorf("gdfs results %v missing district 4", ids(rs))
	}
	for _, r := range rs {
		if r.Region.ID == 4 && r.Score >= rs[0].Score {
			t.Errorf("district score %v >= city score %v", r.Score, rs[0].Score)
		}
	}
}

func TestSearchHierarchyPath(t *testing.T) {
	e := testEngine(t)

	rs := search(t, e, "广东省>佛山市")
	if len(rs) == 0 || rs[0].Region.ID != 2 {
		t.Fatalf("path query top = %v, want [2 ...]", ids(rs))
	}
	if rs[0].Strategy != StrategyPath {
		t.Errorf("strategy = %q, want path", rs[0].Strategy)
	}
	full := rs[0].Score

	// Reversed order still finds the city but at a strictly lower score:
	// the out-of-order segment is skipped, not matched.
	rev := search(t, e, "佛山市>广东省")
	if len(rev) == 0 || rev[0].Region.ID != 2 {
		t.Fatalf("reversed path top = %v, want [2 ...]", ids(rev))
	}
	if rev[0].Score >= full {
		t.Errorf("reversed score %v >= in-order score %v", rev[0].Score, full)
	}

	// Pinyin segments resolve too.
	rs = search(t, e, "guangdong/foshan")
	if len(rs) == 0 || rs[0].Region.ID != 2 {
		t.Errorf("pinyin path top = %v, want [2 ...]", ids(rs))
	}
}

func TestSearchFuzzy(t *testing.T) {
	e := testEngine(t)
	rs := search(t, e, "fozan")
	if !contains(rs, 2) {
		t.Fatalf("fozan results %v missing 佛山市", ids(rs))
	}

	exact := search(t, e, "foshan")
	if len(exact) == 0 || exact[0].Region.ID != 2 {
		t.Fatalf("foshan top = %v", ids(exact))
	}
	var fuzzyScore float64
	for _, r := range rs {
		if r.Region.ID == 2 {
			fuzzyScore = r.Score
		}
	}
	if fuzzyScore >= exact[0].Score {
		t.Errorf("fuzzy score %v >= exact score %v", fuzzyScore, exact[0].Score)
	}
}

func TestSearchPrefix(t *testing.T) {
	e := testEngine(t)

	// "guang" prefixes both guangdong and guangzhou.
	rs := search(t, e, "guang")
	if !contains(rs, 1) || !contains(rs, 3) {
		t.Fatalf("guang results %v, want both 1 and 3", ids(rs))
	}

	// "广" single character hits 广东省 and 广州市.
	rs = search(t, e, "广")
	if !contains(rs, 1) || !contains(rs, 3) {
		t.Fatalf("广 results %v, want both 1 and 3", ids(rs))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := testEngine(t)
	for _, q := range []string{"", "   "} {
		if _, err := e.Search(context.Background(), q, Options{}); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Search(%q) err = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestSearchNoMatch(t *testing.T) {
	e := testEngine(t)
	rs := search(t, e, "zzzzzzzzzz")
	if len(rs) != 0 {
		t.Errorf("expected no results, got %v", ids(rs))
	}
}

func TestSearchOptions(t *testing.T) {
	e := testEngine(t)

	rs, err := e.Search(context.Background(), "guang", Options{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 {
		t.Fatalf("Limit: 1 returned %d results", len(rs))
	}

	all := search(t, e, "guang")
	rs, err = e.Search(context.Background(), "guang", Options{MinScore: all[0].Score})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rs {
		if r.Score < all[0].Score {
			t.Errorf("MinScore leaked score %v", r.Score)
		}
	}

	// Restricting strategies drops everything the plan would otherwise run.
	rs, err = e.Search(context.Background(), "fozan", Options{Strategies: []Strategy{StrategyExact}})
	if err != nil {
		t.Fatal(err)
	}
	if contains(rs, 2) {
		t.Errorf("exact-only search matched fuzzily: %v", ids(rs))
	}
}

func TestSearchCanceledContext(t *testing.T) {
	e := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A canceled context yields partial (possibly empty) results, not an
	// error: strategies skip rather than fail.
	if _, err := e.Search(ctx, "foshan", Options{}); err != nil {
		t.Fatalf("Search with canceled ctx: %v", err)
	}
}

func TestSwap(t *testing.T) {
	e := testEngine(t)

	b := index.NewBuilder(nil)
	b.Add(region.Record{ID: 9, Name: "北京市", Level: region.LevelProvince, PinyinFull: "beijing", PinyinShort: "bj"})
	ix, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	e.Swap(ix)

	if rs := search(t, e, "foshan"); len(rs) != 0 {
		t.Errorf("old data survived swap: %v", ids(rs))
	}
	rs := search(t, e, "北京市")
	if len(rs) != 1 || rs[0].Region.ID != 9 {
		t.Errorf("new data not visible after swap: %v", ids(rs))
	}
}

func TestResultOrderingDeterministic(t *testing.T) {
	e := testEngine(t)
	first := ids(search(t, e, "guang"))
	for i := 0; i < 5; i++ {
		if got := ids(search(t, e, "guang")); len(got) != len(first) {
			t.Fatalf("result count changed: %v vs %v", got, first)
		} else {
			for j := range got {
				if got[j] != first[j] {
					t.Fatalf("ordering changed: %v vs %v", got, first)
				}
			}
		}
	}
}
