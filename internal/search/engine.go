// Package search classifies free-form queries over Chinese administrative
// regions and answers them by fanning out to the retrieval strategies the
// query shape calls for.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"regionsearch/internal/index"
	"regionsearch/internal/logging"
	"regionsearch/internal/region"
)

// Result is one scored region returned from a search.
type Result struct {
	Region   region.Region `json:"region"`
	Score    float64       `json:"score"`
	Strategy Strategy      `json:"strategy"`
	Path     []string      `json:"path"`
}

// Options narrows a single search call. The zero value means the engine
// defaults: DefaultLimit results, no score floor, all strategies.
type Options struct {
	Limit      int
	MinScore   float64
	Strategies []Strategy // restrict to these strategies; nil means all
}

// Engine answers queries against an immutable index snapshot. The snapshot
// is swappable, so searches proceed during a reload and each call sees a
// consistent index throughout.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	idx    atomic.Pointer[index.Index]
}

// New creates an engine over ix. A nil logger discards.
func New(ix *index.Index, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "search")),
	}
	e.idx.Store(ix)
	return e
}

// Swap atomically replaces the index snapshot. In-flight searches finish
// against the snapshot they started with.
func (e *Engine) Swap(ix *index.Index) {
	e.idx.Store(ix)
	e.logger.Info("index swapped", slog.Int("regions", ix.Len()))
}

// Index returns the current snapshot.
func (e *Engine) Index() *index.Index {
	return e.idx.Load()
}

// Search classifies the query, runs the matching strategies in parallel,
// and returns merged results ordered by score. A blank query is
// ErrInvalidQuery. When ctx has a deadline, strategies that miss it are
// dropped and the results of the ones that finished are returned.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}

	ix := e.idx.Load()
	kind := Classify(query)
	e.logger.Debug("search",
		slog.String("query", query),
		slog.String("kind", kind.String()))

	funcs := e.plan(kind, opts.Strategies)
	if len(funcs) == 0 {
		return []Result{}, nil
	}

	// Each strategy reads the shared snapshot and writes only its own
	// slot; the mutex guards the append of finished slots.
	var mu sync.Mutex
	var cands []candidate
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range funcs {
		fn := fn
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			got := fn(gctx, ix, strings.ToLower(query))
			mu.Lock()
			cands = append(cands, got...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := e.merge(ix, cands)
	if opts.MinScore > 0 {
		results = aboveFloor(results, opts.MinScore)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// plan maps a query kind to the strategies worth running for it.
func (e *Engine) plan(kind Kind, allow []Strategy) []strategyFunc {
	var out []strategyFunc
	pick := func(s Strategy, fn strategyFunc) {
		if allowed(allow, s) {
			out = append(out, fn)
		}
	}
	switch kind {
	case KindChineseName:
		pick(StrategyExact, e.exactName)
		pick(StrategyPrefix, e.namePrefix)
		pick(StrategyFuzzy, e.fuzzyIfLong)
	case KindHierarchyPath:
		pick(StrategyPath, e.hierarchyPath)
	case KindFullPinyin:
		pick(StrategyExact, e.exactPinyin)
		pick(StrategyPrefix, e.pinyinPrefix)
		pick(StrategyFuzzy, e.fuzzyIfLong)
	case KindShortPinyin:
		pick(StrategyExact, e.exactShort)
		pick(StrategyPrefix, e.shortPrefix)
	case KindComboPinyin:
		pick(StrategyCombo, e.combo)
		pick(StrategyPrefix, e.pinyinPrefix)
		pick(StrategyPrefix, e.shortPrefix)
	default:
		pick(StrategyExact, e.exactName)
		pick(StrategyExact, e.exactPinyin)
		pick(StrategyPrefix, e.namePrefix)
		pick(StrategyFuzzy, e.fuzzyIfLong)
	}
	return out
}

// fuzzyIfLong gates the fuzzy scan behind the minimum query length; short
// queries produce too many near matches to be useful.
func (e *Engine) fuzzyIfLong(ctx context.Context, ix *index.Index, q string) []candidate {
	if len([]rune(q)) < e.cfg.FuzzyTrigger {
		return nil
	}
	return e.fuzzy(ctx, ix, q)
}

func allowed(allow []Strategy, s Strategy) bool {
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if a == s {
			return true
		}
	}
	return false
}

func aboveFloor(rs []Result, floor float64) []Result {
	out := rs[:0]
	for _, r := range rs {
		if r.Score >= floor {
			out = append(out, r)
		}
	}
	return out
}
