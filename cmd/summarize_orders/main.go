// Command summarize_orders prints an analyst summary of the saved orders
// matching the given filter, using the configured summary provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dshills/orderdesk/internal/app"
	"github.com/dshills/orderdesk/internal/config"
	"github.com/dshills/orderdesk/internal/logging"
	"github.com/dshills/orderdesk/internal/report"
	"github.com/dshills/orderdesk/pkg/types"
)

func main() {
	from := flag.String("from", "", "first order date, YYYY-MM-DD")
	to := flag.String("to", "", "last order date, YYYY-MM-DD")
	customer := flag.Int64("customer", 0, "only orders of this customer ID")
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")
	flag.Parse()

	cfg := config.FromEnv()
	logger := logging.Setup(cfg.LogLevel)

	a, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := a.Service.SummarizeOrders(ctx, report.Filter{From: *from, To: *to, CustomerID: *customer})
	if err != nil {
		var te *types.Error
		if errors.As(err, &te) {
			fmt.Fprintf(os.Stderr, "Summary failed (%s): %v\n", te.Kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "Summary failed: %v\n", err)
		}
		a.Close()
		os.Exit(1)
	}

	fmt.Printf("Provider: %s (%s)", summary.Provider, summary.Model)
	if summary.Cached {
		fmt.Print(" [cached]")
	}
	fmt.Printf("\n\n%s\n", summary.Text)
}
