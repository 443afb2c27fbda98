package exportobs

import (
	"context"
	"time"

	"earnings-tracker/internal/earnings"
	"earnings-tracker/internal/interfaces"
	"earnings-tracker/internal/logger"
	"earnings-tracker/internal/trace"
)

type observableExporter struct {
	exporter interfaces.ReportExporter
}

var _ interfaces.ReportExporter = (*observableExporter)(nil)

// Wrap wraps a ReportExporter with observability middleware
func Wrap(exporter interfaces.ReportExporter) interfaces.ReportExporter {
	return &observableExporter{
		exporter: exporter,
	}
}

// Export writes the report inside an "export.WriteCSV" span and logs the
// outcome with the row count.
func (o *observableExporter) Export(ctx context.Context, report *earnings.Report, path string) error {
	ctx, span := trace.StartSpan(ctx, "export.WriteCSV")
	defer span.End()
	trace.Annotate(span, "path", path)

	start := time.Now()
	err := o.exporter.Export(ctx, report, path)
	if err != nil {
		trace.Fail(span, err)
		logger.ErrorWithErr(ctx, "CSV export failed", err,
			"path", path,
		)
		return err
	}

	logger.Info(ctx, "CSV export written",
		"path", path,
		"rows", report.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
