package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/orderdesk/internal/actionlog"
	"github.com/dshills/orderdesk/internal/report"
	"github.com/dshills/orderdesk/internal/service"
	"github.com/dshills/orderdesk/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters or failed validation
	ErrorCodeInternalError   = -32603 // Store failure
	ErrorCodeNotFound        = -32001 // Customer, product, order or draft does not exist
	ErrorCodeExternalService = -32002 // Summarization provider failed
	ErrorCodeDraftBusy       = -32003 // Another call is modifying the draft
)

const (
	defaultListLimit    = 50
	maxListLimit        = 500
	defaultHistoryLimit = 50
)

// Customers

func (s *Server) handleCreateCustomer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.CreateCustomer(ctx, types.Customer{
		Name:  getStringDefault(args, "name", ""),
		Email: getStringDefault(args, "email", ""),
		Phone: getStringDefault(args, "phone", ""),
	})
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"customer": c})
}

func (s *Server) handleUpdateCustomer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	c, err := s.svc.UpdateCustomer(ctx, types.Customer{
		ID:    id,
		Name:  getStringDefault(args, "name", ""),
		Email: getStringDefault(args, "email", ""),
		Phone: getStringDefault(args, "phone", ""),
	})
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"customer": c})
}

func (s *Server) handleDeleteCustomer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteCustomer(ctx, id); err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"deleted": true, "customer_id": id})
}

func (s *Server) handleListCustomers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customers, err := s.svc.ListCustomers(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	if customers == nil {
		customers = []*types.Customer{}
	}
	return result(map[string]interface{}{"customers": customers, "count": len(customers)})
}

// Products

func (s *Server) handleCreateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.CreateProduct(ctx, getStringDefault(args, "name", ""), priceArg(args))
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"product": productJSON(p)})
}

func (s *Server) handleUpdateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	p, err := s.svc.UpdateProduct(ctx, id, getStringDefault(args, "name", ""), priceArg(args))
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"product": productJSON(p)})
}

func (s *Server) handleDeleteProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteProduct(ctx, id); err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"deleted": true, "product_id": id})
}

func (s *Server) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := s.svc.ListProducts(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	out := make([]map[string]interface{}, len(products))
	for i, p := range products {
		out[i] = productJSON(p)
	}
	return result(map[string]interface{}{"products": out, "count": len(out)})
}

// Drafts

func (s *Server) handleStartOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(draftJSON(s.svc.StartOrder()))
}

func (s *Server) handleEditOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "order_id")
	if err != nil {
		return nil, err
	}
	v, err := s.svc.EditOrder(ctx, id)
	if err != nil {
		return nil, toolError(err)
	}
	return result(draftJSON(v))
}

func (s *Server) handleAddLineItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	draftID, err := requireString(args, "draft_id")
	if err != nil {
		return nil, err
	}
	product, err := requireString(args, "product")
	if err != nil {
		return nil, err
	}
	quantity, err := optionalInt(args, "quantity", 1)
	if err != nil {
		return nil, err
	}
	v, err := s.svc.AddItem(ctx, draftID, product, quantity)
	if err != nil {
		return nil, toolError(err)
	}
	return result(draftJSON(v))
}

func (s *Server) handleRemoveLineItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	draftID, err := requireString(args, "draft_id")
	if err != nil {
		return nil, err
	}
	index, err := requireInt(args, "index")
	if err != nil {
		return nil, err
	}
	v, err := s.svc.RemoveItem(draftID, index)
	if err != nil {
		return nil, toolError(err)
	}
	return result(draftJSON(v))
}

func (s *Server) handleGetDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	draftID, err := requireString(args, "draft_id")
	if err != nil {
		return nil, err
	}
	v, err := s.svc.Draft(draftID)
	if err != nil {
		return nil, toolError(err)
	}
	return result(draftJSON(v))
}

func (s *Server) handleSaveOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	draftID, err := requireString(args, "draft_id")
	if err != nil {
		return nil, err
	}
	customerID, err := requireID(args, "customer_id")
	if err != nil {
		return nil, err
	}
	date := getStringDefault(args, "date", s.now().Format(types.DateLayout))

	o, err := s.svc.SaveDraft(ctx, draftID, customerID, date)
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"saved": true, "order": orderJSON(o)})
}

func (s *Server) handleDiscardDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	draftID, err := requireString(args, "draft_id")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DiscardDraft(draftID); err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"discarded": true, "draft_id": draftID})
}

// Orders

func (s *Server) handleGetOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	o, err := s.svc.GetOrder(ctx, id)
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"order": orderJSON(o)})
}

func (s *Server) handleListOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := optionalArguments(request)
	filter, err := filterArg(args)
	if err != nil {
		return nil, err
	}
	if filter.Limit, err = optionalInt(args, "limit", defaultListLimit); err != nil {
		return nil, err
	}
	if filter.Limit < 1 || filter.Limit > maxListLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxListLimit), map[string]interface{}{
			"param": "limit",
			"value": filter.Limit,
		})
	}

	reports, err := s.svc.ListOrders(ctx, filter)
	if err != nil {
		return nil, toolError(err)
	}
	orders := make([]map[string]interface{}, len(reports))
	for i := range reports {
		o := orderJSON(&reports[i].Order)
		o["items_summary"] = reports[i].ItemsSummary
		delete(o, "items")
		orders[i] = o
	}
	return result(map[string]interface{}{"orders": orders, "count": len(orders)})
}

func (s *Server) handleDeleteOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requireID(args, "id")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteOrder(ctx, id); err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"deleted": true, "order_id": id})
}

// Reports and history

func (s *Server) handleDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.svc.Dashboard(ctx)
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{
		"total_customers": m.TotalCustomers,
		"total_products":  m.TotalProducts,
		"total_orders":    m.TotalOrders,
		"revenue":         m.Revenue.StringFixed(2),
		"top_product":     m.TopProduct,
		"top_customer":    m.TopCustomer,
	})
}

func (s *Server) handleExportReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := optionalArguments(request)

	var formats []string
	if raw, ok := args["formats"].([]interface{}); ok {
		for _, f := range raw {
			str, ok := f.(string)
			if !ok {
				return nil, newMCPError(ErrorCodeInvalidParams, "formats must be strings", map[string]interface{}{"param": "formats"})
			}
			formats = append(formats, str)
		}
	}

	filter, err := filterArg(args)
	if err != nil {
		return nil, err
	}
	paths, err := s.svc.ExportReport(ctx, filter, formats, "")
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"files": paths})
}

func (s *Server) handleSummarizeOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := filterArg(optionalArguments(request))
	if err != nil {
		return nil, err
	}
	sum, err := s.svc.SummarizeOrders(ctx, filter)
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{
		"summary":  sum.Text,
		"provider": sum.Provider,
		"model":    sum.Model,
		"cached":   sum.Cached,
	})
}

func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := optionalInt(optionalArguments(request), "limit", defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must not be negative", map[string]interface{}{"param": "limit", "value": limit})
	}
	entries, err := s.svc.History(limit)
	if errors.Is(err, actionlog.ErrNoHistory) {
		return result(map[string]interface{}{"entries": []string{}, "message": err.Error()})
	}
	if err != nil {
		return nil, toolError(err)
	}
	return result(map[string]interface{}{"entries": entries, "count": len(entries)})
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toolError maps a service error onto an MCP error code by kind
func toolError(err error) error {
	kind := types.KindOf(err)
	code := ErrorCodeInternalError
	switch {
	case errors.Is(err, service.ErrDraftBusy):
		code = ErrorCodeDraftBusy
	case kind == types.KindValidation:
		code = ErrorCodeInvalidParams
	case kind == types.KindNotFound:
		code = ErrorCodeNotFound
	case kind == types.KindExternalService:
		code = ErrorCodeExternalService
	}
	return newMCPError(code, err.Error(), map[string]interface{}{"kind": kind.String()})
}

func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// optionalArguments is used by tools whose parameters are all optional
func optionalArguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", missingParam(key)
	}
	return val, nil
}

func requireID(args map[string]interface{}, key string) (int64, error) {
	n, err := requireInt(args, key)
	if err != nil {
		return 0, err
	}
	id := int64(n)
	if id <= 0 {
		return 0, newMCPError(ErrorCodeInvalidParams, key+" must be a positive integer", map[string]interface{}{
			"param": key,
			"value": args[key],
		})
	}
	return id, nil
}

// priceArg accepts the price as a string or a JSON number
func priceArg(args map[string]interface{}) string {
	switch v := args["unit_price"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func filterArg(args map[string]interface{}) (report.Filter, error) {
	customerID, err := optionalInt(args, "customer_id", 0)
	if err != nil {
		return report.Filter{}, err
	}
	return report.Filter{
		From:       getStringDefault(args, "from", ""),
		To:         getStringDefault(args, "to", ""),
		CustomerID: int64(customerID),
	}, nil
}

func productJSON(p *types.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"unit_price": p.UnitPrice.StringFixed(2),
	}
}

func itemsJSON(items []types.LineItem) []map[string]interface{} {
	out := make([]map[string]interface{}, len(items))
	for i, item := range items {
		out[i] = map[string]interface{}{
			"index":      i,
			"product":    item.ProductName,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice.StringFixed(2),
			"subtotal":   item.Subtotal().StringFixed(2),
		}
	}
	return out
}

func orderJSON(o *types.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":            o.ID,
		"customer_id":   o.CustomerID,
		"customer_name": o.CustomerName,
		"date":          o.Date,
		"total":         o.Total.StringFixed(2),
		"items":         itemsJSON(o.Items),
	}
}

func draftJSON(v *service.DraftView) map[string]interface{} {
	out := map[string]interface{}{
		"draft_id": v.ID,
		"state":    v.State,
		"items":    itemsJSON(v.Items),
		"total":    v.Total.StringFixed(2),
	}
	if v.OrderID != 0 {
		out["order_id"] = v.OrderID
		out["customer_id"] = v.CustomerID
		out["date"] = v.Date
	}
	return out
}

func result(data map[string]interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(data)), nil
}

// formatJSON formats data as pretty JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// intArg reads a whole number. JSON numbers arrive as float64, so a
// fractional part, a string or any other type is rejected rather than
// truncated or defaulted.
func intArg(args map[string]interface{}, key string) (n int, present bool, err error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, true, invalidInt(key, raw)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	default:
		return 0, true, invalidInt(key, raw)
	}
}

func invalidInt(key string, value interface{}) error {
	return newMCPError(ErrorCodeInvalidParams, key+" must be an integer", map[string]interface{}{
		"param": key,
		"value": value,
	})
}

func requireInt(args map[string]interface{}, key string) (int, error) {
	n, present, err := intArg(args, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, missingParam(key)
	}
	return n, nil
}

// optionalInt returns defaultValue only when key is absent
func optionalInt(args map[string]interface{}, key string, defaultValue int) (int, error) {
	n, present, err := intArg(args, key)
	if err != nil || !present {
		return defaultValue, err
	}
	return n, nil
}

// getStringDefault gets a string from args with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}
