package api

import (
	"github.com/helmick/nutriseek/internal/models"
	"github.com/helmick/nutriseek/internal/search"
)

// CreateFoodRequest is the request body for storing a food record.
type CreateFoodRequest struct {
	Name     string           `json:"name" example:"Roti" validate:"required"`
	Brand    string           `json:"brand,omitempty" example:"Desi Foods"`
	Category string           `json:"category,omitempty" example:"Breads"`
	Tags     []string         `json:"tags,omitempty" example:"flatbread,wheat"`
	Per100g  models.Nutrients `json:"per100g"`
	Servings []models.Serving `json:"servings,omitempty"`
	Source   string           `json:"source,omitempty" example:"user"`
}

// FoodListResponse wraps catalog listings.
type FoodListResponse struct {
	Foods []models.FoodRecord `json:"foods" validate:"required"`
	Total int                 `json:"total" example:"42" validate:"required"`
}

// SearchResponse is the search payload: ranked records plus the quality
// descriptor (aliased from the domain layer).
type SearchResponse = search.Result
