package main

import (
	"fmt"
	"os"

	"github.com/dshills/orderdesk/internal/app"
	"github.com/dshills/orderdesk/internal/config"
	"github.com/dshills/orderdesk/internal/logging"
	"github.com/dshills/orderdesk/internal/storage"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("OrderDesk HTTP Server %s (%s, %s)\n", version, storage.BuildMode, storage.DriverName)
		os.Exit(0)
	}

	cfg := config.FromEnv()
	logger := logging.Setup(cfg.LogLevel)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	err = a.ServeHTTP()
	if cerr := a.Close(); cerr != nil {
		logger.Warn("close failed", "error", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
