package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/helmick/nutriseek/internal/models"
)

// Parse decodes a seed file into food records. A file holds either a single
// record object or an array of them. Records that fail to decode or validate
// are skipped rather than aborting the file; the skipped count is returned so
// callers can log it. An error is returned only when the file as a whole is
// not valid JSON.
func Parse(data []byte) ([]models.FoodRecord, int, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("dataset: empty file")
	}

	var raws []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, 0, fmt.Errorf("dataset: parse array: %w", err)
		}
	} else {
		if !json.Valid(trimmed) {
			return nil, 0, fmt.Errorf("dataset: invalid JSON")
		}
		raws = []json.RawMessage{json.RawMessage(trimmed)}
	}

	var (
		records []models.FoodRecord
		skipped int
	)
	for _, raw := range raws {
		var rec models.FoodRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}
		applyDefaults(&rec)
		if err := rec.Validate(); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// applyDefaults fills the fields a seed file may legitimately omit.
// Seed records never dictate persistence ids.
func applyDefaults(rec *models.FoodRecord) {
	rec.ID = ""
	if rec.Source == "" {
		rec.Source = models.SourceUser
	}
	if len(rec.Servings) == 0 {
		rec.Servings = models.DefaultServing()
	}
}
