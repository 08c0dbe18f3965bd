// Package search implements the hybrid search pipeline: local fuzzy lookup,
// optional external provider fan-out, merge, rank, and quality labeling.
package search

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helmick/nutriseek/internal/fuzzy"
	"github.com/helmick/nutriseek/internal/models"
	"github.com/helmick/nutriseek/internal/provider"
	"github.com/helmick/nutriseek/internal/searchcache"
	"github.com/helmick/nutriseek/internal/store"
)

// DefaultSufficientFraction decides when local results alone are enough: the
// provider fan-out is skipped once local hits cover this fraction of the
// requested limit.
const DefaultSufficientFraction = 0.8

// Config carries the orchestrator's tuning knobs.
type Config struct {
	Limit              int
	LocalLimit         int
	SufficientFraction float64
	FuzzyThreshold     float64
	DebounceInterval   time.Duration
	ProviderTimeout    time.Duration
	CacheTTL           time.Duration
	QualityHigh        int
	QualityMedium      int
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.LocalLimit <= 0 {
		c.LocalLimit = fuzzy.DefaultLimit
	}
	if c.SufficientFraction <= 0 || c.SufficientFraction > 1 {
		c.SufficientFraction = DefaultSufficientFraction
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = provider.DefaultTimeout
	}
	return c
}

// Options are per-request overrides.
type Options struct {
	Limit           int
	IncludeExternal bool
	MaxWait         time.Duration
}

// Result is a finished search: the merged, ranked records plus the quality
// descriptor explaining where they came from.
type Result struct {
	Results []models.FoodRecord  `json:"results"`
	Quality models.SearchQuality `json:"quality"`
}

// Service runs searches against the local index and the configured external
// adapters.
type Service struct {
	cfg      Config
	store    store.Store
	index    *fuzzy.Index
	cache    *searchcache.Cache
	adapters []provider.Adapter
	logger   *slog.Logger
	debounce *Debouncer

	// gen orders searches so a completion overtaken by a newer query does
	// not overwrite its state.
	gen atomic.Int64

	mu         sync.Mutex
	lastQuery  string
	lastResult *Result
}

// New builds a search service. The index and cache are injected so callers
// control their lifetime and tests can prime them.
func New(cfg Config, st store.Store, index *fuzzy.Index, cache *searchcache.Cache, adapters []provider.Adapter, logger *slog.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		cfg:      cfg,
		store:    st,
		index:    index,
		cache:    cache,
		adapters: adapters,
		logger:   logger,
		debounce: NewDebouncer(cfg.DebounceInterval),
	}
}

// Search runs the full pipeline for query. It never fails outright: provider
// errors degrade the answer to local data, and an empty query yields an
// empty low-quality result.
func (s *Service) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	res, _, err := s.search(ctx, query, opts)
	return res, err
}

func (s *Service) search(ctx context.Context, query string, opts Options) (*Result, int64, error) {
	norm := searchcache.Normalize(query)
	if norm == "" {
		empty := &Result{
			Results: []models.FoodRecord{},
			Quality: models.SearchQuality{Quality: models.QualityLow, Method: models.MethodFuzzy},
		}
		return empty, s.gen.Load(), nil
	}

	gen := s.gen.Add(1)

	s.mu.Lock()
	if norm == s.lastQuery && s.lastResult != nil {
		res := s.lastResult
		s.mu.Unlock()
		return res, gen, nil
	}
	s.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	local, usedFallback := s.localSearch(norm)

	var external []models.FoodRecord
	fromCache := false
	externalAttempted := false
	if opts.IncludeExternal && !s.sufficient(len(local), limit) {
		if cached, ok := s.cache.Get(norm); ok {
			external = cached
			fromCache = true
		} else {
			externalAttempted = true
			timeout := s.cfg.ProviderTimeout
			if opts.MaxWait > 0 && opts.MaxWait < timeout {
				timeout = opts.MaxWait
			}
			external = provider.FetchAll(ctx, s.adapters, norm, limit, timeout, s.logger)
			// An empty fan-out is indistinguishable from an all-providers
			// outage, so only positive answers are cached.
			if len(external) > 0 {
				s.cache.Put(norm, external)
			}
		}
	}

	totalFound := len(local) + len(external)
	merged := Merge(local, external, limit)
	Rank(merged, norm)

	method := decideMethod(len(local), len(external), usedFallback, externalAttempted, fromCache)
	res := &Result{
		Results: merged,
		Quality: Classify(totalFound, len(merged), method, s.cfg.QualityHigh, s.cfg.QualityMedium),
	}

	s.bumpExactMatch(norm, merged)

	if s.gen.Load() == gen {
		s.mu.Lock()
		s.lastQuery = norm
		s.lastResult = res
		s.mu.Unlock()
	}
	return res, gen, nil
}

// SearchDebounced schedules a search after the quiet period, replacing any
// pending one, and invokes fn with the result. fn is skipped when a newer
// search started while this one ran.
func (s *Service) SearchDebounced(query string, opts Options, fn func(*Result)) {
	s.debounce.Schedule(func() {
		res, gen, err := s.search(context.Background(), query, opts)
		if err != nil {
			s.logger.Warn("debounced search failed", slog.String("query", query), slog.String("error", err.Error()))
			return
		}
		if s.gen.Load() == gen && fn != nil {
			fn(res)
		}
	})
}

// Close cancels any pending debounced search.
func (s *Service) Close() {
	s.debounce.Stop()
}

// localSearch queries the fuzzy index, rebuilding it first when the store's
// record count has drifted from the indexed snapshot. When the fuzzy pass
// comes up empty it degrades to the substring fallback scan.
func (s *Service) localSearch(norm string) ([]models.FoodRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.Count()
	if err != nil {
		s.logger.Warn("record count unavailable, using stale index", slog.String("error", err.Error()))
	} else if s.index.Stale(count) {
		records, err := s.store.ReadAll()
		if err != nil {
			s.logger.Warn("index rebuild failed, using stale index", slog.String("error", err.Error()))
		} else {
			s.index.Build(records)
		}
	}

	cands := s.index.Search(norm, s.cfg.LocalLimit)
	if len(cands) > 0 {
		out := make([]models.FoodRecord, len(cands))
		for i, c := range cands {
			out[i] = c.Record
		}
		return out, false
	}
	return s.index.Fallback(norm, s.cfg.LocalLimit), true
}

func (s *Service) sufficient(localCount, limit int) bool {
	need := int(math.Ceil(s.cfg.SufficientFraction * float64(limit)))
	return localCount >= need
}

// bumpExactMatch records usage on the first stored result whose name equals
// the query exactly. External candidates have no id and are never counted.
func (s *Service) bumpExactMatch(norm string, merged []models.FoodRecord) {
	for _, rec := range merged {
		if rec.ID != "" && strings.ToLower(rec.Name) == norm {
			if err := s.store.IncrementSearchCount(rec.ID); err != nil {
				s.logger.Warn("search count update failed", slog.String("id", rec.ID), slog.String("error", err.Error()))
			}
			return
		}
	}
}
