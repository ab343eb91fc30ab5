// internal/reporting/summary_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/observability"
)

// SummaryReporter writes a short human-readable digest of each report: the
// target, graph size, any high-risk nodes, and the recommendations text.
type SummaryReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSummaryReporter creates a summary reporter. It takes ownership of the
// writer.
func NewSummaryReporter(writer io.WriteCloser) *SummaryReporter {
	return &SummaryReporter{
		writer: writer,
		logger: observability.GetLogger().Named("summary_reporter"),
	}
}

// Write renders one report envelope as text.
func (r *SummaryReporter) Write(report *schemas.ReportEnvelope) error {
	if report == nil {
		return fmt.Errorf("cannot write a nil report")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.writer, "Scan %s\n", report.ScanID)
	fmt.Fprintf(r.writer, "Target: %s (%s)\n", report.Query.Raw, report.Query.Kind)
	fmt.Fprintf(r.writer, "Completed: %s\n", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(r.writer, "Graph: %d nodes, %d edges\n", len(report.Graph.Nodes), len(report.Graph.Edges))

	high := 0
	for _, node := range report.Graph.Nodes {
		if node.Detail.RiskLevel == schemas.RiskHigh {
			high++
			fmt.Fprintf(r.writer, "  [HIGH] %s: %s\n", node.Label, node.Detail.Value)
		}
	}
	if high == 0 {
		fmt.Fprintln(r.writer, "  No high-risk findings.")
	}

	if report.Recommendations != "" {
		fmt.Fprintf(r.writer, "\nRecommendations:\n%s\n", report.Recommendations)
	}
	fmt.Fprintln(r.writer)

	return nil
}

// Close closes the underlying writer.
func (r *SummaryReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Close(); err != nil {
		r.logger.Error("Failed to close output writer", zap.Error(err))
		return fmt.Errorf("failed to close output writer: %w", err)
	}
	return nil
}
