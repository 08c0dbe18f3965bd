package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helmick/nutriseek/internal/apperr"
	"github.com/helmick/nutriseek/internal/models"
	"github.com/helmick/nutriseek/internal/search"
	"github.com/helmick/nutriseek/internal/store"
)

// FoodEventPublisher receives notifications about newly stored foods. The SSE
// broker satisfies it; tests pass nil.
type FoodEventPublisher interface {
	PublishFoodCreated(id, name string)
}

// Handler holds API route handlers.
type Handler struct {
	store    store.Store
	searcher *search.Service
	events   FoodEventPublisher
}

// NewHandler creates a new Handler.
func NewHandler(st store.Store, searcher *search.Service, events FoodEventPublisher) *Handler {
	return &Handler{store: st, searcher: searcher, events: events}
}

// Search handles GET /api/search.
//
//	@Summary		Hybrid food search
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	true	"Search query"
//	@Param			limit		query		int		false	"Max results"
//	@Param			external	query		bool	false	"Include external providers (default true)"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	includeExternal := true
	if v := r.URL.Query().Get("external"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid 'external' flag"))
			return
		}
		includeExternal = b
	}

	res, err := h.searcher.Search(r.Context(), q, search.Options{
		Limit:           limit,
		IncludeExternal: includeExternal,
	})
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListFoods handles GET /api/foods.
//
//	@Summary		List the stored food catalog
//	@Tags			foods
//	@Produce		json
//	@Success		200	{object}	FoodListResponse
//	@Security		BearerAuth
//	@Router			/foods [get]
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ReadAll()
	if err != nil {
		slog.Error("list foods failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.FoodRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"foods": items,
		"total": len(items),
	})
}

// CreateFood handles POST /api/foods.
//
//	@Summary		Store a user-submitted food record
//	@Tags			foods
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFoodRequest	true	"Food to store"
//	@Success		201		{object}	models.FoodRecord
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/foods [post]
func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	rec := models.FoodRecord{
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Tags:     req.Tags,
		Per100g:  req.Per100g,
		Servings: req.Servings,
		Source:   req.Source,
	}
	if rec.Source == "" {
		rec.Source = models.SourceUser
	}
	if len(rec.Servings) == 0 {
		rec.Servings = models.DefaultServing()
	}
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	id, err := h.store.Insert(rec)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("food already exists"))
		} else {
			slog.Error("create food failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	stored, err := h.store.FindByNameAndBrand(rec.Name, rec.Brand)
	if err != nil {
		slog.Error("read back created food failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if h.events != nil {
		h.events.PublishFoodCreated(stored.ID, stored.Name)
	}
	writeJSON(w, http.StatusCreated, stored)
}

// LookupFood handles GET /api/foods/lookup.
//
//	@Summary		Look a food up by its exact name and brand
//	@Tags			foods
//	@Produce		json
//	@Param			name	query		string	true	"Food name (case-insensitive)"
//	@Param			brand	query		string	false	"Brand (case-insensitive)"
//	@Success		200		{object}	models.FoodRecord
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/foods/lookup [get]
func (h *Handler) LookupFood(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	brand := r.URL.Query().Get("brand")

	rec, err := h.store.FindByNameAndBrand(name, brand)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("lookup food failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
