package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helmick/nutriseek/internal/models"
)

const offDefaultBaseURL = "https://world.openfoodfacts.org"

// OpenFoodFacts queries the Open Food Facts product search endpoint.
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
}

// NewOpenFoodFacts creates the adapter. baseURL overrides the public API
// host (used in tests); empty means the default.
func NewOpenFoodFacts(baseURL string) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = offDefaultBaseURL
	}
	return &OpenFoodFacts{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Adapter.
func (o *OpenFoodFacts) Name() string { return "openfoodfacts" }

// flexFloat tolerates the API reporting numeric fields as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type offNutriments struct {
	Kcal100g       float64 `json:"energy-kcal_100g"`
	Protein100g    float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
	KcalServing    float64 `json:"energy-kcal_serving"`
	ProteinServing float64 `json:"proteins_serving"`
	CarbsServing   float64 `json:"carbohydrates_serving"`
	FatServing     float64 `json:"fat_serving"`
}

type offResponse struct {
	Products []struct {
		ProductName     string        `json:"product_name"`
		Brands          string        `json:"brands"`
		Categories      string        `json:"categories"`
		ServingQuantity flexFloat     `json:"serving_quantity"`
		Nutriments      offNutriments `json:"nutriments"`
	} `json:"products"`
}

// Search implements Adapter.
func (o *OpenFoodFacts) Search(ctx context.Context, query string, pageSize int) ([]models.FoodRecord, error) {
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		o.baseURL, url.QueryEscape(query), pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts: build request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts: status %d", resp.StatusCode)
	}

	var pr offResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("openfoodfacts: parse response: %w", err)
	}

	records := make([]models.FoodRecord, 0, len(pr.Products))
	for _, p := range pr.Products {
		name := strings.TrimSpace(p.ProductName)
		if name == "" {
			continue
		}
		grams := float64(p.ServingQuantity)
		n := p.Nutriments

		var per100 models.Nutrients
		if n.Kcal100g > 0 || n.Protein100g > 0 || n.Carbs100g > 0 || n.Fat100g > 0 {
			per100 = models.Nutrients{Kcal: n.Kcal100g, Protein: n.Protein100g, Carbs: n.Carbs100g, Fat: n.Fat100g}
		} else {
			// Per-serving values: scale by 100/servingGrams when the
			// serving weight is known, otherwise assume a 100 g serving.
			per100 = scaleToPer100g(models.Nutrients{
				Kcal: n.KcalServing, Protein: n.ProteinServing, Carbs: n.CarbsServing, Fat: n.FatServing,
			}, grams)
		}

		servings := models.DefaultServing()
		if grams > 0 {
			servings = []models.Serving{{Label: "1 serving", Grams: grams}}
		}

		records = append(records, models.FoodRecord{
			Name:        name,
			Brand:       firstCSV(p.Brands),
			Category:    firstCSV(p.Categories),
			Per100g:     per100,
			Servings:    servings,
			Verified:    true,
			Source:      models.SourceExternal,
			LastUpdated: time.Now(),
		})
	}
	return filterRelevant(query, records), nil
}

// firstCSV returns the first entry of a comma-separated provider field.
func firstCSV(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
