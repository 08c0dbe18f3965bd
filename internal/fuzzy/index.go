// Package fuzzy provides the in-memory approximate-match index over the
// current food record set. The index is a read-only snapshot: it is rebuilt
// from the store when the record count changes, never patched incrementally.
package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/helmick/nutriseek/internal/models"
)

// Field weights. Lower-weight fields are penalized: a raw score s in (0,1)
// becomes s^weight, which grows (worsens) as the weight shrinks.
const (
	weightName  = 1.0
	weightBrand = 0.5
	weightTag   = 0.3
)

// Matching defaults. The acceptance threshold is tunable via configuration;
// these are the fallbacks.
const (
	DefaultThreshold = 0.45
	MinQueryLength   = 2
	DefaultLimit     = 10
)

// Candidate is one approximate match. Score is the internal match score:
// lower is better, 0 is exact.
type Candidate struct {
	Record models.FoodRecord
	Score  float64
}

// Index answers ranked candidate queries over a record snapshot.
type Index struct {
	threshold float64
	records   []models.FoodRecord
	size      int
	built     bool
}

// New creates an index with the given acceptance threshold.
func New(threshold float64) *Index {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Index{threshold: threshold}
}

// Build snapshots the record set. Records without a name are skipped so a
// single corrupt entry cannot abort indexing of the rest.
func (ix *Index) Build(records []models.FoodRecord) {
	snapshot := make([]models.FoodRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		snapshot = append(snapshot, r)
	}
	ix.records = snapshot
	ix.size = len(records)
	ix.built = true
}

// Stale reports whether the index should be rebuilt for a record set of the
// given size. This is a cheap staleness check on size only, not a guarantee
// of content equality.
func (ix *Index) Stale(count int) bool {
	return !ix.built || count != ix.size
}

// Size returns the record count the index was built from.
func (ix *Index) Size() int {
	return ix.size
}

// Search returns candidates whose match score falls below the acceptance
// threshold, best first, capped at limit. Queries shorter than
// MinQueryLength match nothing.
func (ix *Index) Search(query string, limit int) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var out []Candidate
	for _, rec := range ix.records {
		score := ix.score(q, rec)
		if score < ix.threshold {
			out = append(out, Candidate{Record: rec, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Fallback performs a plain case-insensitive scan: a starts-with pass over
// names, then a contains pass over name, brand, and tags. It never fails;
// an empty result is valid.
func (ix *Index) Fallback(query string, limit int) []models.FoodRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	seen := make(map[string]struct{})
	var out []models.FoodRecord

	add := func(rec models.FoodRecord) bool {
		key := rec.DedupKey()
		if _, ok := seen[key]; ok {
			return len(out) < limit
		}
		seen[key] = struct{}{}
		out = append(out, rec)
		return len(out) < limit
	}

	for _, rec := range ix.records {
		if strings.HasPrefix(strings.ToLower(rec.Name), q) {
			if !add(rec) {
				return out
			}
		}
	}
	for _, rec := range ix.records {
		if containsAny(q, rec) {
			if !add(rec) {
				return out
			}
		}
	}
	return out
}

func containsAny(q string, rec models.FoodRecord) bool {
	if strings.Contains(strings.ToLower(rec.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Brand), q) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// score is the weighted best over the record's fields.
func (ix *Index) score(q string, rec models.FoodRecord) float64 {
	best := math.Pow(fieldScore(q, strings.ToLower(rec.Name)), weightName)
	if rec.Brand != "" {
		if s := math.Pow(fieldScore(q, strings.ToLower(rec.Brand)), weightBrand); s < best {
			best = s
		}
	}
	for _, tag := range rec.Tags {
		if s := math.Pow(fieldScore(q, strings.ToLower(tag)), weightTag); s < best {
			best = s
		}
	}
	return best
}

// fieldScore returns the normalized edit distance in [0, 1] between the
// query and the best-matching window of s. 0 means s equals or contains q.
func fieldScore(q, s string) float64 {
	if s == "" {
		return 1
	}
	if s == q || strings.Contains(s, q) {
		return 0
	}

	rq := []rune(q)
	rs := []rune(s)
	if len(rs) <= len(rq) {
		return normDist(levenshtein.ComputeDistance(q, s), len(rq))
	}

	best := len(rq)
	for i := 0; i+len(rq) <= len(rs); i++ {
		d := levenshtein.ComputeDistance(q, string(rs[i:i+len(rq)]))
		if d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return normDist(best, len(rq))
}

func normDist(d, qlen int) float64 {
	score := float64(d) / float64(qlen)
	if score > 1 {
		return 1
	}
	return score
}
