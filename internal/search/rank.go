package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/helmick/nutriseek/internal/models"
)

// Relevance tiers, highest first. Ranking is recomputed over the merged list
// so local and external candidates compete on equal footing regardless of
// which fuzzy score or provider order produced them.
const (
	tierExact        = 4
	tierPrefix       = 3
	tierNameContains = 2
	tierFieldMatch   = 1
	tierNone         = 0
)

// Rank orders records in place by textual relevance to the query. Ties
// within a tier fall back to locale-aware alphabetical order on the name so
// the ordering is stable across runs.
func Rank(records []models.FoodRecord, query string) {
	q := strings.ToLower(strings.TrimSpace(query))
	// Collators are not safe for concurrent use, so build one per call.
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := tier(records[i], q), tier(records[j], q)
		if ti != tj {
			return ti > tj
		}
		return col.CompareString(records[i].Name, records[j].Name) < 0
	})
}

func tier(rec models.FoodRecord, q string) int {
	if q == "" {
		return tierNone
	}
	name := strings.ToLower(rec.Name)
	switch {
	case name == q:
		return tierExact
	case strings.HasPrefix(name, q):
		return tierPrefix
	case strings.Contains(name, q):
		return tierNameContains
	}
	if strings.Contains(strings.ToLower(rec.Brand), q) {
		return tierFieldMatch
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return tierFieldMatch
		}
	}
	return tierNone
}
