package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"earnings-tracker/internal/earnings"
	"earnings-tracker/internal/interfaces"
)

// Row is one CSV line. Absent date values are written as empty strings and
// an unknown company name falls back to the ticker.
type Row struct {
	Ticker      string `csv:"ticker"`
	CompanyName string `csv:"company_name"`
	Date        string `csv:"date"`
	DateWords   string `csv:"date_words"`
	Time        string `csv:"time"`
	Timezone    string `csv:"timezone"`
}

// Rows flattens a report in display order: dated groups, then unavailable.
func Rows(report *earnings.Report) []*Row {
	records := report.Ordered()
	rows := make([]*Row, 0, len(records))
	for _, rec := range records {
		row := &Row{Ticker: rec.Ticker, CompanyName: rec.Company()}
		if et := rec.Earnings; et != nil {
			row.Date = et.Date()
			row.DateWords = et.DateWords()
			row.Time = et.Clock()
			row.Timezone = et.Zone()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the header and one row per ticker to w.
func WriteCSV(w io.Writer, report *earnings.Report) error {
	return gocsv.Marshal(Rows(report), w)
}

// Writer exports reports to a CSV file
type Writer struct{}

var _ interfaces.ReportExporter = (*Writer)(nil)

// NewWriter creates a CSV exporter
func NewWriter() *Writer {
	return &Writer{}
}

// Export writes the report to path, creating parent directories. The file
// is replaced on every run.
func (w *Writer) Export(ctx context.Context, report *earnings.Report, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(out, report); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
