// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/observability"
)

// JSONReporter writes report envelopes as a pretty-printed JSON array.
// It is thread safe.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger

	// mu protects the buffered reports.
	mu      sync.Mutex
	reports []*schemas.ReportEnvelope
}

// NewJSONReporter creates a reporter that buffers envelopes and emits them as
// one JSON document on Close. It takes ownership of the writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer:  writer,
		logger:  observability.GetLogger().Named("json_reporter"),
		reports: []*schemas.ReportEnvelope{},
	}
}

// Write buffers a single report envelope.
func (r *JSONReporter) Write(report *schemas.ReportEnvelope) error {
	if report == nil {
		return fmt.Errorf("cannot write a nil report")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)

	r.logger.Debug("Buffered report envelope",
		zap.String("scan_id", report.ScanID),
		zap.Int("nodes", len(report.Graph.Nodes)),
		zap.Int("edges", len(report.Graph.Edges)),
	)
	return nil
}

// Close serializes the buffered reports and closes the writer.
func (r *JSONReporter) Close() error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// A single scan is the common case; unwrap the array for it.
	var payload interface{} = r.reports
	if len(r.reports) == 1 {
		payload = r.reports[0]
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(payload)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode report to JSON", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode report output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Info("Successfully wrote JSON report",
		zap.Int("total_reports", len(r.reports)),
		zap.Duration("duration_ms", time.Since(startTime)),
	)
	return nil
}
