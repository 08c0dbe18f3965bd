package mcpserver

// FoodFormatContract describes the canonical food record format that
// LLM consumers should follow when adding foods or writing seed files.
const FoodFormatContract = `# Nutriseek Food Record Contract

Every food record stored in Nutriseek MUST follow this structure.

## Structure

` + "```" + `json
{
  "name": "Roti",
  "brand": "Desi Foods",
  "category": "Breads",
  "tags": ["flatbread", "wheat"],
  "per100g": {"kcal": 297, "protein": 11, "carbs": 51, "fat": 7},
  "servings": [{"label": "1 piece", "grams": 40}],
  "source": "user"
}
` + "```" + `

## Rules

1. **` + "`" + `name` + "`" + ` is required.** It is the primary display and matching field.
2. **Nutrient values are per 100 g.** Never submit per-serving values; convert
   them first (value * 100 / serving grams).
3. **Identity is (name, brand), case-insensitive.** Two records with the same
   name and brand are the same food; adding a duplicate is rejected.
4. **` + "`" + `servings` + "`" + `** is optional; each entry needs a label and a positive gram
   weight. When omitted, a single 100 g serving is assumed.
5. **` + "`" + `source` + "`" + `** is one of ` + "`" + `user` + "`" + `, ` + "`" + `external` + "`" + `, or ` + "`" + `ai` + "`" + `. Records created
   through MCP tools are stored as ` + "`" + `ai` + "`" + `.
6. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `whole-grain` + "`" + `).
7. Seed files under the dataset directory hold either one record object or a
   JSON array of them; the ` + "`" + `id` + "`" + ` field is never set by hand.
`
