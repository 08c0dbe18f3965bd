package search

import "github.com/helmick/nutriseek/internal/models"

// DefaultLimit caps the merged result list when the caller does not ask for
// a specific size.
const DefaultLimit = 20

// Merge combines the local and external candidate lists into one
// de-duplicated list. Local candidates come first: when the same logical
// food exists on both sides, the local copy (which may carry an id and a
// search count) wins. Identity is the (name, brand) dedup key, never the id.
func Merge(local, external []models.FoodRecord, limit int) []models.FoodRecord {
	if limit <= 0 {
		limit = DefaultLimit
	}

	seen := make(map[string]struct{}, len(local)+len(external))
	out := make([]models.FoodRecord, 0, limit)

	for _, list := range [][]models.FoodRecord{local, external} {
		for _, rec := range list {
			if len(out) >= limit {
				return out
			}
			key := rec.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
