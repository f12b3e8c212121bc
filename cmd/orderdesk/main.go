package main

import (
	"fmt"
	"os"

	"github.com/dshills/orderdesk/internal/app"
	"github.com/dshills/orderdesk/internal/config"
	"github.com/dshills/orderdesk/internal/logging"
	"github.com/dshills/orderdesk/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("OrderDesk MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	cfg := config.FromEnv()
	// Logs go to stderr; stdout is reserved for the MCP protocol
	logger := logging.Setup(cfg.LogLevel)
	logger.Info("orderdesk MCP server starting", "version", version, "build_mode", storage.BuildMode, "driver", storage.DriverName)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	err = a.ServeMCP()
	if cerr := a.Close(); cerr != nil {
		logger.Warn("close failed", "error", cerr)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
