package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helmick/nutriseek/internal/models"
)

const fdcDefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

// Nutrient numbers used by the FoodData Central search response.
const (
	fdcNutrientEnergy  = "208"
	fdcNutrientProtein = "203"
	fdcNutrientFat     = "204"
	fdcNutrientCarbs   = "205"
)

// FoodDataCentral queries the USDA FoodData Central search endpoint.
type FoodDataCentral struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFoodDataCentral creates the adapter. baseURL overrides the public API
// host (used in tests); empty means the default.
func NewFoodDataCentral(baseURL, apiKey string) *FoodDataCentral {
	if baseURL == "" {
		baseURL = fdcDefaultBaseURL
	}
	return &FoodDataCentral{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Adapter.
func (f *FoodDataCentral) Name() string { return "fdc" }

type fdcResponse struct {
	Foods []struct {
		Description     string  `json:"description"`
		BrandOwner      string  `json:"brandOwner"`
		FoodCategory    string  `json:"foodCategory"`
		ServingSize     float64 `json:"servingSize"`
		ServingSizeUnit string  `json:"servingSizeUnit"`
		FoodNutrients   []struct {
			NutrientNumber string  `json:"nutrientNumber"`
			UnitName       string  `json:"unitName"`
			Value          float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Search implements Adapter. FDC search results report nutrient values on a
// per-100g basis already; only the energy unit may need a kJ conversion.
func (f *FoodDataCentral) Search(ctx context.Context, query string, pageSize int) ([]models.FoodRecord, error) {
	u := fmt.Sprintf("%s/foods/search?query=%s&pageSize=%d&api_key=%s",
		f.baseURL, url.QueryEscape(query), pageSize, url.QueryEscape(f.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("fdc: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fdc: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fdc: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fdc: status %d", resp.StatusCode)
	}

	var pr fdcResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("fdc: parse response: %w", err)
	}

	records := make([]models.FoodRecord, 0, len(pr.Foods))
	for _, food := range pr.Foods {
		name := strings.TrimSpace(food.Description)
		if name == "" {
			continue
		}

		var per100 models.Nutrients
		for _, n := range food.FoodNutrients {
			switch n.NutrientNumber {
			case fdcNutrientEnergy:
				v := n.Value
				if strings.EqualFold(n.UnitName, "kJ") {
					v /= 4.184
				}
				per100.Kcal = v
			case fdcNutrientProtein:
				per100.Protein = n.Value
			case fdcNutrientCarbs:
				per100.Carbs = n.Value
			case fdcNutrientFat:
				per100.Fat = n.Value
			}
		}

		servings := models.DefaultServing()
		if food.ServingSize > 0 && isGramUnit(food.ServingSizeUnit) {
			servings = []models.Serving{{Label: "1 serving", Grams: food.ServingSize}}
		}

		records = append(records, models.FoodRecord{
			Name:        name,
			Brand:       strings.TrimSpace(food.BrandOwner),
			Category:    strings.TrimSpace(food.FoodCategory),
			Per100g:     per100,
			Servings:    servings,
			Verified:    true,
			Source:      models.SourceExternal,
			LastUpdated: time.Now(),
		})
	}
	return filterRelevant(query, records), nil
}

func isGramUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "grm", "gram", "grams":
		return true
	}
	return false
}
