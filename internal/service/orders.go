package service

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/dshills/orderdesk/internal/report"
	"github.com/dshills/orderdesk/internal/summarizer"
	"github.com/dshills/orderdesk/pkg/types"
)

// ErrNoOrders is returned when a summary is requested for an empty selection
var ErrNoOrders = errors.New("no orders match the filter")

// GetOrder returns an order with its line items
func (s *Service) GetOrder(ctx context.Context, id int64) (*types.Order, error) {
	const op = "get order"
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, s.fail(op, storeErr(op, err, "order", id))
	}
	items, err := s.store.ListLineItems(ctx, id)
	if err != nil {
		return nil, s.fail(op, types.Persistence(op, err))
	}
	o.Items = items
	return o, nil
}

// ListOrders returns the filtered orders with items, newest first
func (s *Service) ListOrders(ctx context.Context, filter report.Filter) ([]report.OrderReport, error) {
	reports, err := report.Build(ctx, s.store, filter)
	if err != nil {
		return nil, s.fail("list orders", err)
	}
	return reports, nil
}

// DeleteOrder removes an order and its items
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	const op = "delete order"
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return s.fail(op, storeErr(op, err, "order", id))
	}
	s.record("Order deleted: ID %d", id)
	return nil
}

// Dashboard returns the headline metrics
func (s *Service) Dashboard(ctx context.Context) (*report.Metrics, error) {
	m, err := report.Dashboard(ctx, s.store)
	if err != nil {
		return nil, s.fail("dashboard", err)
	}
	return m, nil
}

// ExportReport writes the filtered orders in each format under the export
// directory, or under dir when it is not empty.
func (s *Service) ExportReport(ctx context.Context, filter report.Filter, formats []string, dir string) ([]string, error) {
	const op = "export report"
	if dir == "" {
		dir = s.exportDir
	}
	if dir == "" {
		return nil, types.Validationf(op, errors.New("export directory is not configured"), "set ORDERDESK_EXPORT_DIR or pass a directory")
	}

	reports, err := report.Build(ctx, s.store, filter)
	if err != nil {
		return nil, s.fail(op, err)
	}

	paths, err := report.ExportAll(ctx, filepath.Clean(dir), reports, formats, s.now())
	if errors.Is(err, report.ErrUnknownFormat) {
		return nil, types.Validation(op, err)
	}
	if err != nil {
		return nil, s.fail(op, types.Persistence(op, err))
	}

	for _, p := range paths {
		s.record("Report exported: %s (%d orders)", p, len(reports))
	}
	return paths, nil
}

// SummarizeOrders asks the configured provider for a sales analysis of the
// filtered orders. Provider failures come back as ExternalService errors.
func (s *Service) SummarizeOrders(ctx context.Context, filter report.Filter) (*summarizer.Summary, error) {
	const op = "summarize orders"
	if s.summarizer == nil {
		return nil, s.fail(op, types.External(op, summarizer.ErrNoProviderEnabled))
	}

	reports, err := report.Build(ctx, s.store, filter)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if len(reports) == 0 {
		return nil, types.NotFoundf(op, ErrNoOrders, "filter %+v", filter)
	}

	sum, err := s.summarizer.Summarize(ctx, summarizer.Request{Text: report.FormatForSummary(reports)})
	if err != nil {
		return nil, s.fail(op, types.External(op, err))
	}

	s.record("Order analysis generated via %s (%s), %d orders", sum.Provider, sum.Model, len(reports))
	return sum, nil
}
