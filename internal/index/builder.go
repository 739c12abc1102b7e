package index

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"regionsearch/internal/logging"
	"regionsearch/internal/region"
)

// Builder accumulates region records and builds the frozen Index in one
// atomic pass. It is single-threaded and exclusively owned by the caller
// until Build returns; any validation failure aborts the whole build and
// leaves no partially usable index behind.
type Builder struct {
	logger  *slog.Logger
	records []region.Record
}

// NewBuilder returns an empty builder. logger may be nil.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logging.Default(logger).With("component", "builder")}
}

// Add appends records to the pending input. Validation happens in Build.
func (b *Builder) Add(recs ...region.Record) {
	b.records = append(b.records, recs...)
}

// Len returns the number of pending records.
func (b *Builder) Len() int {
	return len(b.records)
}

// Build validates the records, derives every token variant, populates the
// trie/inverted/n-gram structures, and freezes the bundle. Rebuilding from
// the same input answers all queries identically.
func (b *Builder) Build() (*Index, error) {
	if len(b.records) == 0 {
		return nil, ErrNoRegions
	}
	start := time.Now()

	seen := make(map[uint32]bool, len(b.records))
	for _, rec := range b.records {
		if rec.ID == 0 {
			return nil, integrityErr(rec.ID, "zero region id")
		}
		if seen[rec.ID] {
			return nil, integrityErr(rec.ID, "duplicate region id")
		}
		if rec.Name == "" {
			return nil, integrityErr(rec.ID, "empty region name")
		}
		seen[rec.ID] = true
	}
	for _, rec := range b.records {
		if rec.ParentID != 0 && !seen[rec.ParentID] {
			return nil, integrityErr(rec.ID, "unknown parent %d", rec.ParentID)
		}
	}

	parts := newParts()
	parts.Regions = make([]region.Region, 0, len(b.records))
	for _, rec := range b.records {
		parts.Regions = append(parts.Regions, region.Region{
			ID:          rec.ID,
			Name:        rec.Name,
			Level:       rec.Level,
			ParentID:    rec.ParentID,
			PinyinFull:  rec.PinyinFull,
			PinyinShort: rec.PinyinShort,
			Aliases:     slices.Clone(rec.Aliases),
		})
	}
	slices.SortFunc(parts.Regions, func(a, b region.Region) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, r := range parts.Regions {
		b.indexRegion(parts, r)
	}

	// Assembly resolves parent chains (rejecting cycles), computes derived
	// fields, and runs the index/table consistency check.
	ix, err := NewFromParts(parts)
	if err != nil {
		return nil, err
	}

	stats := ix.Stats()
	b.logger.Info("index built",
		"regions", stats.Regions,
		"name_tokens", stats.NameTokens,
		"pinyin_tokens", stats.PinyinTokens,
		"short_tokens", stats.ShortTokens,
		"ngram_windows", stats.NgramWindows,
		"elapsed", time.Since(start))

	return ix, nil
}
