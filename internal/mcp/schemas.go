package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func idProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     1,
	}
}

func tool(name, description string, properties map[string]interface{}, required ...string) mcp.Tool {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// filterProps are shared by the tools that select orders
func filterProps(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"from":        stringProp("Earliest order date, inclusive (YYYY-MM-DD)"),
		"to":          stringProp("Latest order date, inclusive (YYYY-MM-DD)"),
		"customer_id": idProp("Only orders of this customer"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func customerTools() []mcp.Tool {
	return []mcp.Tool{
		tool("create_customer", "Register a new customer", map[string]interface{}{
			"name":  stringProp("Customer name (required)"),
			"email": stringProp("Email address"),
			"phone": stringProp("Phone number"),
		}, "name"),
		tool("update_customer", "Replace a customer's name, email and phone", map[string]interface{}{
			"id":    idProp("Customer id"),
			"name":  stringProp("Customer name (required)"),
			"email": stringProp("Email address"),
			"phone": stringProp("Phone number"),
		}, "id", "name"),
		tool("delete_customer", "Delete a customer together with all of their orders", map[string]interface{}{
			"id": idProp("Customer id"),
		}, "id"),
		tool("list_customers", "List all customers ordered by name", nil),
	}
}

func productTools() []mcp.Tool {
	price := map[string]interface{}{
		"type":        "string",
		"description": "Unit price as a decimal string with at most 2 decimal places, e.g. \"3.50\"",
	}
	return []mcp.Tool{
		tool("create_product", "Add a product to the catalog", map[string]interface{}{
			"name":       stringProp("Product name, unique in the catalog"),
			"unit_price": price,
		}, "name", "unit_price"),
		tool("update_product", "Change a product's name or price. Saved orders keep the price they captured.", map[string]interface{}{
			"id":         idProp("Product id"),
			"name":       stringProp("Product name"),
			"unit_price": price,
		}, "id", "name", "unit_price"),
		tool("delete_product", "Remove a product from the catalog", map[string]interface{}{
			"id": idProp("Product id"),
		}, "id"),
		tool("list_products", "List the catalog ordered by name", nil),
	}
}

func draftTools() []mcp.Tool {
	draftID := stringProp("Draft id returned by start_order or edit_order")
	return []mcp.Tool{
		tool("start_order", "Start an empty draft for a new order", nil),
		tool("edit_order", "Load a saved order into a new draft for editing", map[string]interface{}{
			"order_id": idProp("Order id"),
		}, "order_id"),
		tool("add_line_item", "Add a catalog product to a draft at its current price", map[string]interface{}{
			"draft_id": draftID,
			"product":  stringProp("Product name as it appears in the catalog"),
			"quantity": map[string]interface{}{
				"type":        "integer",
				"description": "Quantity, greater than zero",
				"minimum":     1,
				"default":     1,
			},
		}, "draft_id", "product"),
		tool("remove_line_item", "Remove a line item from a draft by its zero-based position", map[string]interface{}{
			"draft_id": draftID,
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Zero-based item position",
				"minimum":     0,
			},
		}, "draft_id", "index"),
		tool("get_draft", "Show a draft's items and running total", map[string]interface{}{
			"draft_id": draftID,
		}, "draft_id"),
		tool("save_order", "Persist a draft as one atomic order", map[string]interface{}{
			"draft_id":    draftID,
			"customer_id": idProp("Customer placing the order"),
			"date":        stringProp("Order date (YYYY-MM-DD), defaults to today"),
		}, "draft_id", "customer_id"),
		tool("discard_draft", "Drop a draft without saving it", map[string]interface{}{
			"draft_id": draftID,
		}, "draft_id"),
	}
}

func orderTools() []mcp.Tool {
	return []mcp.Tool{
		tool("get_order", "Show a saved order with its line items", map[string]interface{}{
			"id": idProp("Order id"),
		}, "id"),
		tool("list_orders", "List saved orders, newest first", filterProps(map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of orders (1-500)",
				"default":     50,
				"minimum":     1,
				"maximum":     500,
			},
		})),
		tool("delete_order", "Delete an order and its line items", map[string]interface{}{
			"id": idProp("Order id"),
		}, "id"),
	}
}

func reportTools() []mcp.Tool {
	return []mcp.Tool{
		tool("dashboard", "Headline metrics: customers, orders, revenue, top product and top customer", nil),
		tool("export_report", "Export the filtered orders to CSV and/or PDF files", filterProps(map[string]interface{}{
			"formats": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": []string{"csv", "pdf"}},
				"description": "Formats to write, defaults to [\"csv\"]",
			},
		})),
		tool("summarize_orders", "Generate a sales analysis of the filtered orders", filterProps(nil)),
		tool("get_history", "Show the most recent entries of the action log", map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of entries, 0 for all",
				"default":     50,
				"minimum":     0,
			},
		}),
	}
}
