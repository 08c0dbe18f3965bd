package provider

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helmick/nutriseek/internal/models"
)

func offServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cgi/search.pl" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("search_terms") == "" {
			t.Error("missing search_terms parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenFoodFacts_Per100gValues(t *testing.T) {
	srv := offServer(t, `{"products": [{
		"product_name": "Roti Wrap",
		"brands": "Deli Fresh, Other",
		"categories": "Breads, Flatbreads",
		"nutriments": {"energy-kcal_100g": 297, "proteins_100g": 11, "carbohydrates_100g": 51, "fat_100g": 7}
	}]}`)

	out, err := NewOpenFoodFacts(srv.URL).Search(context.Background(), "roti", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	rec := out[0]
	if rec.Per100g.Kcal != 297 {
		t.Errorf("kcal = %v, want 297", rec.Per100g.Kcal)
	}
	if rec.Brand != "Deli Fresh" {
		t.Errorf("brand = %q, want first CSV entry", rec.Brand)
	}
	if rec.Source != models.SourceExternal || !rec.Verified || rec.ID != "" {
		t.Errorf("candidate contract violated: source=%q verified=%v id=%q", rec.Source, rec.Verified, rec.ID)
	}
	if len(rec.Servings) != 1 || rec.Servings[0].Grams != 100 {
		t.Errorf("servings = %v, want default 100g", rec.Servings)
	}
}

func TestOpenFoodFacts_PerServingScaled(t *testing.T) {
	// 120 kcal per 40 g serving must normalize to 300 kcal per 100 g.
	srv := offServer(t, `{"products": [{
		"product_name": "Roti Mini",
		"serving_quantity": "40",
		"nutriments": {"energy-kcal_serving": 120, "proteins_serving": 4, "carbohydrates_serving": 20, "fat_serving": 2}
	}]}`)

	out, err := NewOpenFoodFacts(srv.URL).Search(context.Background(), "roti", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	rec := out[0]
	if math.Abs(rec.Per100g.Kcal-300) > 1e-9 {
		t.Errorf("kcal = %v, want 300", rec.Per100g.Kcal)
	}
	if len(rec.Servings) != 1 || rec.Servings[0].Grams != 40 {
		t.Errorf("servings = %v, want the reported 40g serving", rec.Servings)
	}
}

func TestOpenFoodFacts_PreFilterDropsUnrelated(t *testing.T) {
	srv := offServer(t, `{"products": [
		{"product_name": "Roti Wrap", "nutriments": {"energy-kcal_100g": 297}},
		{"product_name": "Hot Sauce", "nutriments": {"energy-kcal_100g": 50}},
		{"product_name": ""}
	]}`)

	out, err := NewOpenFoodFacts(srv.URL).Search(context.Background(), "roti", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Roti Wrap" {
		t.Fatalf("out = %v, want only the relevant product", out)
	}
}

func TestOpenFoodFacts_ErrorResponses(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)
	if _, err := NewOpenFoodFacts(bad.URL).Search(context.Background(), "roti", 10); err == nil {
		t.Error("expected error for non-200 status")
	}

	malformed := offServer(t, `{"products": [`)
	if _, err := NewOpenFoodFacts(malformed.URL).Search(context.Background(), "roti", 10); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
