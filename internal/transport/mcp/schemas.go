package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var locationProperties = map[string]interface{}{
	"latitude": map[string]interface{}{
		"type":        "number",
		"description": "Buyer latitude; used together with longitude",
	},
	"longitude": map[string]interface{}{
		"type":        "number",
		"description": "Buyer longitude; used together with latitude",
	},
	"pincode": map[string]interface{}{
		"type":        "string",
		"description": "Indian postal code, used when coordinates are not given",
	},
}

var pagingProperties = map[string]interface{}{
	"page": map[string]interface{}{
		"type":        "integer",
		"description": "Result page, starting at 1",
		"default":     1,
		"minimum":     1,
	},
	"limit": map[string]interface{}{
		"type":        "integer",
		"description": "Results per page (1-100)",
		"minimum":     1,
		"maximum":     100,
	},
}

func withProperties(sets ...map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

func stringList(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

func searchProductsTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolSearchProducts,
		Description: "Search the ONDC catalog with hybrid keyword and semantic matching, reranked by relevance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(locationProperties, pagingProperties, map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What the buyer is looking for, e.g. \"organic rice\"",
				},
				"relevance_threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum rerank score between 0 and 1",
					"minimum":     0,
					"maximum":     1,
				},
				"price_min": map[string]interface{}{
					"type":        "number",
					"description": "Lowest price in INR",
				},
				"price_max": map[string]interface{}{
					"type":        "number",
					"description": "Highest price in INR",
				},
				"categories":   stringList("Only products in one of these categories"),
				"brands":       stringList("Only products of one of these brands"),
				"provider_ids": stringList("Only products sold by one of these providers"),
				"available_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Drop products that are out of stock",
				},
			}),
			Required: []string{"query"},
		},
	}
}

func advancedSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolAdvancedSearch,
		Description: "Search products filtered by category, brand and price range",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(locationProperties, pagingProperties, map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Optional search text; derived from the category when empty",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category name, e.g. \"Oil & Ghee\"",
				},
				"brand": map[string]interface{}{
					"type":        "string",
					"description": "Brand or seller name",
				},
				"price_min": map[string]interface{}{
					"type":        "number",
					"description": "Lowest price in INR",
					"minimum":     0,
				},
				"price_max": map[string]interface{}{
					"type":        "number",
					"description": "Highest price in INR",
					"minimum":     0,
				},
			}),
		},
	}
}

func browseCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolBrowseCategories,
		Description: "List the product categories available in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
