// Package mcp implements the Model Context Protocol (MCP) server for orderdesk.
//
// MCP is JSON-RPC 2.0 over stdio. Every tool delegates to internal/service
// and answers with a pretty-printed JSON text result.
//
// # Tools
//
// Customers and catalog:
//   - create_customer, update_customer, delete_customer, list_customers
//   - create_product, update_product, delete_product, list_products
//
// Orders are assembled in drafts before they are saved:
//   - start_order / edit_order: open a draft, returns draft_id
//   - add_line_item, remove_line_item, get_draft: work on the draft
//   - save_order: write the order and all its items in one transaction
//   - discard_draft: drop the draft
//
// Saved orders and reporting:
//   - get_order, list_orders, delete_order
//   - dashboard, export_report, summarize_orders, get_history
//
// # Example
//
//	{"name": "start_order", "arguments": {}}
//	→ {"draft_id": "5f0c…", "state": "draft", "items": [], "total": "0.00"}
//
//	{"name": "add_line_item", "arguments": {"draft_id": "5f0c…", "product": "widget", "quantity": 2}}
//	{"name": "save_order", "arguments": {"draft_id": "5f0c…", "customer_id": 1, "date": "2024-05-01"}}
//	→ {"saved": true, "order": {"id": 3, "total": "7.00", ...}}
//
// # Error Codes
//
//	-32602  invalid params or failed validation
//	-32001  customer, product, order or draft not found
//	-32603  store failure
//	-32002  summarization provider failure
//	-32003  draft busy with another call
//
// Money is always rendered as a string with two decimal places.
package mcp
