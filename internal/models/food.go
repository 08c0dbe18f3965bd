// Package models defines the domain types for Nutriseek.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Record sources.
const (
	SourceUser     = "user"
	SourceExternal = "external"
	SourceAI       = "ai"
)

// Nutrients holds macro values normalized to a 100-gram basis.
type Nutrients struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Validate validates that all nutrient values are non-negative.
func (n Nutrients) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Kcal, validation.Min(0.0)),
		validation.Field(&n.Protein, validation.Min(0.0)),
		validation.Field(&n.Carbs, validation.Min(0.0)),
		validation.Field(&n.Fat, validation.Min(0.0)),
	)
}

// Serving is a named portion with its weight in grams.
type Serving struct {
	Label string  `json:"label"`
	Grams float64 `json:"grams"`
}

// Validate validates a serving entry.
func (s Serving) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Label, validation.Required),
		validation.Field(&s.Grams, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// DefaultServing is the serving assumed when a source reports none.
func DefaultServing() []Serving {
	return []Serving{{Label: "100g", Grams: 100}}
}

// FoodRecord is a single nutrition entry. ID is set only once the record is
// persisted; external candidates have no ID until accepted.
type FoodRecord struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Per100g     Nutrients `json:"per100g"`
	Servings    []Serving `json:"servings,omitempty"`
	Verified    bool      `json:"verified"`
	Source      string    `json:"source"`
	SearchCount int       `json:"search_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// Validate validates a food record.
func (r FoodRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Per100g),
		validation.Field(&r.Servings),
		validation.Field(&r.Source, validation.Required, validation.In(SourceUser, SourceExternal, SourceAI)),
		validation.Field(&r.SearchCount, validation.Min(0)),
	)
}

// DedupKey is the identity used to recognize two records as the same food
// regardless of source or persistence id: lowercased name and brand.
func (r FoodRecord) DedupKey() string {
	return strings.ToLower(r.Name) + "::" + strings.ToLower(r.Brand)
}

// Quality tiers for a search outcome.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// Search methods recorded in SearchQuality.
const (
	MethodFuzzy    = "fuzzy"
	MethodFallback = "fallback"
	MethodExternal = "external"
	MethodCached   = "cached"
	MethodHybrid   = "hybrid"
)

// SearchQuality summarizes how a search was answered and how well.
type SearchQuality struct {
	Quality     string `json:"quality"`
	Method      string `json:"method"`
	TotalFound  int    `json:"total_found"`
	QualityKept int    `json:"quality_kept"`
}

// DatasetFileMetadata is a lightweight representation of a seed file
// returned by dataset list operations.
type DatasetFileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
