package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"
)

// Export formats
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ErrUnknownFormat is returned for an export format other than csv or pdf
var ErrUnknownFormat = errors.New("unknown export format")

// Header is the column header shared by the CSV and PDF exports
var Header = []string{"Order ID", "Customer", "Date", "Order Total", "Product", "Quantity", "Unit Price"}

// Rows flattens reports into one row per line item. An order without
// items yields a single N/A row so it still shows up in the export.
func Rows(reports []OrderReport) [][]string {
	var rows [][]string
	for _, r := range reports {
		prefix := []string{
			strconv.FormatInt(r.ID, 10),
			r.CustomerName,
			r.Date,
			r.Total.StringFixed(2),
		}
		if len(r.Items) == 0 {
			rows = append(rows, append(append([]string{}, prefix...), "N/A", "0", "0.00"))
			continue
		}
		for _, item := range r.Items {
			rows = append(rows, append(append([]string{}, prefix...),
				item.ProductName,
				strconv.Itoa(item.Quantity),
				item.UnitPrice.StringFixed(2),
			))
		}
	}
	return rows
}

// WriteCSV writes reports as semicolon-delimited CSV with a header row.
func WriteCSV(w io.Writer, reports []OrderReport) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(reports)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// column widths in mm, summing to the printable A4 width
var pdfWidths = []float64{16, 38, 22, 24, 48, 18, 24}

// WritePDF writes reports as a paginated A4 table. The column header is
// repeated at the top of every page.
func WritePDF(w io.Writer, reports []OrderReport, generatedAt time.Time) error {
	if err := renderPDF(reports, generatedAt).Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func renderPDF(reports []OrderReport, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, 8, "Orders Report", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(0, 6, "Generated "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for i, h := range Header {
			pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 8)

	rows := Rows(reports)
	if len(rows) == 0 {
		pdf.CellFormat(0, 7, "No orders match the filter.", "1", 1, "C", false, 0, "")
	}
	for _, row := range rows {
		for i, cell := range row {
			align := "L"
			if i == 0 || (i >= 3 && i != 4) {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], 6, fitCell(pdf, tr(cell), pdfWidths[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}

// fitCell truncates s so it fits inside a column of width mm.
func fitCell(pdf *fpdf.Fpdf, s string, width float64) string {
	const padding = 2
	if pdf.GetStringWidth(s) <= width-padding {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width-padding {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// maxNameAttempts bounds the numeric suffixes tried when an export name is taken
const maxNameAttempts = 100

// ExportAll writes the requested formats into dir concurrently and returns
// the created file paths in the order the formats were given. Existing files
// are never overwritten: a taken name gets a _2, _3, ... suffix.
func ExportAll(ctx context.Context, dir string, reports []OrderReport, formats []string, now time.Time) ([]string, error) {
	formats, err := normalizeFormats(formats)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	stamp := now.Format("20060102_150405")
	paths := make([]string, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		base := filepath.Join(dir, "orders_report_"+stamp)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := writeFile(base, format, func(w io.Writer) error {
				if format == FormatPDF {
					return WritePDF(w, reports, now)
				}
				return WriteCSV(w, reports)
			})
			paths[i] = path
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// normalizeFormats lowercases and dedupes formats, defaulting to csv.
func normalizeFormats(formats []string) ([]string, error) {
	if len(formats) == 0 {
		return []string{FormatCSV}, nil
	}
	out := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != FormatCSV && f != FormatPDF {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// createExclusive creates base.ext, or base_N.ext when that name is taken
func createExclusive(base, ext string) (*os.File, string, error) {
	for n := 1; n <= maxNameAttempts; n++ {
		path := base + "." + ext
		if n > 1 {
			path = fmt.Sprintf("%s_%d.%s", base, n, ext)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("create %s.%s: %d names already taken", base, ext, maxNameAttempts)
}

func writeFile(base, ext string, write func(io.Writer) error) (path string, err error) {
	f, path, err := createExclusive(base, ext)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return path, write(f)
}
