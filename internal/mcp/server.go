package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/orderdesk/internal/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "orderdesk"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	svc    *service.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewServer creates an MCP server exposing svc as tools
func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp, server.WithErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)))
}

// handlers maps each tool name to its handler
func (s *Server) handlers() map[string]server.ToolHandlerFunc {
	return map[string]server.ToolHandlerFunc{
		"create_customer":  s.handleCreateCustomer,
		"update_customer":  s.handleUpdateCustomer,
		"delete_customer":  s.handleDeleteCustomer,
		"list_customers":   s.handleListCustomers,
		"create_product":   s.handleCreateProduct,
		"update_product":   s.handleUpdateProduct,
		"delete_product":   s.handleDeleteProduct,
		"list_products":    s.handleListProducts,
		"start_order":      s.handleStartOrder,
		"edit_order":       s.handleEditOrder,
		"add_line_item":    s.handleAddLineItem,
		"remove_line_item": s.handleRemoveLineItem,
		"get_draft":        s.handleGetDraft,
		"save_order":       s.handleSaveOrder,
		"discard_draft":    s.handleDiscardDraft,
		"get_order":        s.handleGetOrder,
		"list_orders":      s.handleListOrders,
		"delete_order":     s.handleDeleteOrder,
		"dashboard":        s.handleDashboard,
		"export_report":    s.handleExportReport,
		"summarize_orders": s.handleSummarizeOrders,
		"get_history":      s.handleGetHistory,
	}
}

// tools returns every tool definition
func tools() []mcp.Tool {
	var all []mcp.Tool
	all = append(all, customerTools()...)
	all = append(all, productTools()...)
	all = append(all, draftTools()...)
	all = append(all, orderTools()...)
	all = append(all, reportTools()...)
	return all
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	handlers := s.handlers()
	for _, t := range tools() {
		handler, ok := handlers[t.Name]
		if !ok {
			s.logger.Error("tool has no handler", "tool", t.Name)
			continue
		}
		s.mcp.AddTool(t, s.logged(t.Name, handler))
	}
}

// logged wraps a handler with debug timing
func (s *Server) logged(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, request)
		s.logger.Debug("tool call", "tool", name, "duration", time.Since(start), "error", err)
		return res, err
	}
}
