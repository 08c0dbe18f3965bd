// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Nutriseek tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helmick/nutriseek/internal/apperr"
	"github.com/helmick/nutriseek/internal/models"
	"github.com/helmick/nutriseek/internal/search"
	"github.com/helmick/nutriseek/internal/store"
)

// Server wraps the MCP server with Nutriseek tools.
type Server struct {
	mcp      *server.MCPServer
	store    store.Store
	searcher *search.Service
}

// New creates a new MCP server with all Nutriseek tools registered.
func New(st store.Store, searcher *search.Service) *Server {
	s := &Server{store: st, searcher: searcher}

	s.mcp = server.NewMCPServer(
		"Nutriseek",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_foods",
		mcp.WithDescription("Hybrid food search: fuzzy match over the local catalog, "+
			"optionally widened with external nutrition databases."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Food name to search for")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
		mcp.WithBoolean("external", mcp.Description("Include external providers (default true)")),
	), s.searchFoods)

	s.mcp.AddTool(mcp.NewTool("get_food",
		mcp.WithDescription("Fetch one stored food record by its exact name and brand (case-insensitive)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Food name")),
		mcp.WithString("brand", mcp.Description("Brand (empty for generic foods)")),
	), s.getFood)

	s.mcp.AddTool(mcp.NewTool("add_food",
		mcp.WithDescription("Store a new food record. Nutrient values MUST be per 100 g. "+
			"Read the contract first via the get_food_contract tool or the "+
			"nutriseek://food-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Food name")),
		mcp.WithString("brand", mcp.Description("Brand (empty for generic foods)")),
		mcp.WithString("category", mcp.Description("Category, e.g. Breads")),
		mcp.WithNumber("kcal", mcp.Description("Calories per 100 g")),
		mcp.WithNumber("protein", mcp.Description("Protein grams per 100 g")),
		mcp.WithNumber("carbs", mcp.Description("Carbohydrate grams per 100 g")),
		mcp.WithNumber("fat", mcp.Description("Fat grams per 100 g")),
	), s.addFood)

	s.mcp.AddTool(mcp.NewTool("list_foods",
		mcp.WithDescription("List every stored food record, one per line."),
	), s.listFoods)

	s.mcp.AddTool(mcp.NewTool("get_food_contract",
		mcp.WithDescription("Returns the canonical Nutriseek food record contract. "+
			"Call this before adding foods to ensure correct structure."),
	), s.getFoodContract)

	// Resource: food record contract.
	s.mcp.AddResource(
		mcp.NewResource("nutriseek://food-format", "Food Record Contract",
			mcp.WithResourceDescription("Canonical food record format that all stored foods must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFoodFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := int(req.GetFloat("limit", 0))
	external := req.GetBool("external", true)

	res, err := s.searcher.Search(ctx, query, search.Options{
		Limit:           limit,
		IncludeExternal: external,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	brand := req.GetString("brand", "")

	rec, err := s.store.FindByNameAndBrand(name, brand)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec := models.FoodRecord{
		Name:     name,
		Brand:    req.GetString("brand", ""),
		Category: req.GetString("category", ""),
		Per100g: models.Nutrients{
			Kcal:    req.GetFloat("kcal", 0),
			Protein: req.GetFloat("protein", 0),
			Carbs:   req.GetFloat("carbs", 0),
			Fat:     req.GetFloat("fat", 0),
		},
		Servings: models.DefaultServing(),
		Source:   models.SourceAI,
	}
	if err := rec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := s.store.Insert(rec)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("food already exists: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s (%s)", name, id)), nil
}

func (s *Server) listFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.store.ReadAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, rec := range records {
		line := rec.Name
		if rec.Brand != "" {
			line = fmt.Sprintf("%s (%s)", rec.Name, rec.Brand)
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getFoodContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FoodFormatContract), nil
}

func (s *Server) readFoodFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "nutriseek://food-format",
			MIMEType: "text/markdown",
			Text:     FoodFormatContract,
		},
	}, nil
}
