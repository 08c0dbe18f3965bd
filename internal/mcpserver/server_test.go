package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/helmick/nutriseek/internal/store"
	"github.com/helmick/nutriseek/internal/testutil"
)

func testServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	db := testutil.TestDB(t)
	srv := New(db, testutil.TestSearcher(t, db))
	return srv, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_foods":
		result, err = srv.searchFoods(ctx, req)
	case "get_food":
		result, err = srv.getFood(ctx, req)
	case "add_food":
		result, err = srv.addFood(ctx, req)
	case "list_foods":
		result, err = srv.listFoods(ctx, req)
	case "get_food_contract":
		result, err = srv.getFoodContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndGetFood(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_food", map[string]interface{}{
		"name":    "Roti",
		"brand":   "Desi Foods",
		"kcal":    297.0,
		"protein": 11.0,
		"carbs":   51.0,
		"fat":     7.0,
	})
	if r.IsError {
		t.Fatalf("add_food error: %s", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "added: Roti") {
		t.Errorf("add result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_food", map[string]interface{}{
		"name":  "roti",
		"brand": "DESI FOODS",
	})
	if r.IsError {
		t.Fatalf("get_food error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"name": "Roti"`) || !strings.Contains(text, `"kcal": 297`) {
		t.Errorf("get result = %q", text)
	}
	if !strings.Contains(text, `"source": "ai"`) {
		t.Errorf("MCP-created food should carry the ai source, got %q", text)
	}
}

func TestAddFoodDuplicate(t *testing.T) {
	srv, _ := testServer(t)

	args := map[string]interface{}{"name": "Roti"}
	if r := callTool(t, srv, "add_food", args); r.IsError {
		t.Fatalf("first add error: %s", resultText(r))
	}
	r := callTool(t, srv, "add_food", args)
	if !r.IsError {
		t.Error("expected error for duplicate food")
	}
}

func TestAddFoodRejectsNegativeValues(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_food", map[string]interface{}{
		"name": "Antifood",
		"kcal": -10.0,
	})
	if !r.IsError {
		t.Error("expected error for negative kcal")
	}
}

func TestGetFoodMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_food", map[string]interface{}{"name": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing food")
	}
}

func TestSearchFoods(t *testing.T) {
	srv, _ := testServer(t)

	_ = callTool(t, srv, "add_food", map[string]interface{}{"name": "Roti"})

	r := callTool(t, srv, "search_foods", map[string]interface{}{
		"query":    "rotti",
		"external": false,
	})
	if r.IsError {
		t.Fatalf("search_foods error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"name": "Roti"`) {
		t.Errorf("search result = %q, want the fuzzy match", text)
	}
	if !strings.Contains(text, `"method": "fuzzy"`) {
		t.Errorf("search result missing quality descriptor: %q", text)
	}
}

func TestListFoods(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "add_food", map[string]interface{}{"name": "Roti", "brand": "Desi Foods"})
	_ = callTool(t, srv, "add_food", map[string]interface{}{"name": "Naan"})

	r := callTool(t, srv, "list_foods", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Roti (Desi Foods)") || !strings.Contains(text, "Naan") {
		t.Errorf("list result = %q", text)
	}
}

func TestGetFoodContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_food_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "per 100 g") {
		t.Errorf("contract missing the per-100g rule: %q", text)
	}
}
