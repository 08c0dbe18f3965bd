// Package provider implements adapters for remote food databases. Each
// adapter translates a free-text query into zero or more food records
// normalized to the common schema: per-100g nutrients, source "external",
// verified, and no persistence id.
package provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helmick/nutriseek/internal/models"
)

// Fetch defaults. Every adapter call is individually time-boxed so one slow
// provider cannot stall the search beyond the budget.
const (
	DefaultTimeout  = 3 * time.Second
	DefaultPageSize = 20
)

// Adapter is one remote food database.
type Adapter interface {
	Name() string
	// Search issues one provider-specific request and returns normalized
	// candidates. Implementations must honour ctx cancellation.
	Search(ctx context.Context, query string, pageSize int) ([]models.FoodRecord, error)
}

// FetchAll queries all adapters concurrently and unions their results.
// A failing, slow, or malformed adapter contributes an empty list and a log
// line; FetchAll itself never fails.
func FetchAll(ctx context.Context, adapters []Adapter, query string, pageSize int, timeout time.Duration, logger *slog.Logger) []models.FoodRecord {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var mu sync.Mutex
	var out []models.FoodRecord

	g := new(errgroup.Group)
	for _, a := range adapters {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			recs, err := a.Search(actx, query, pageSize)
			if err != nil {
				logger.Warn("provider: search failed",
					slog.String("provider", a.Name()),
					slog.String("query", query),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			out = append(out, recs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// filterRelevant drops candidates whose name does not contain the original
// query (case-insensitive). Providers return broad popularity-ranked result
// sets; this keeps unrelated high-popularity products out.
func filterRelevant(query string, recs []models.FoodRecord) []models.FoodRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return recs
	}
	out := recs[:0]
	for _, rec := range recs {
		if strings.Contains(strings.ToLower(rec.Name), q) {
			out = append(out, rec)
		}
	}
	return out
}

// scaleToPer100g converts per-serving nutrient values to a 100-gram basis.
// A non-positive serving weight means the serving is treated as 100 g, so
// the values pass through unchanged.
func scaleToPer100g(n models.Nutrients, servingGrams float64) models.Nutrients {
	if servingGrams <= 0 {
		return n
	}
	f := 100 / servingGrams
	return models.Nutrients{
		Kcal:    n.Kcal * f,
		Protein: n.Protein * f,
		Carbs:   n.Carbs * f,
		Fat:     n.Fat * f,
	}
}
