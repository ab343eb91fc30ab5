// -- internal/reporting/reporter.go --
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/xkilldash9x/recongraph/api/schemas"
)

// Reporter defines the interface for writing scan reports to an output.
type Reporter interface {
	// Write serializes a single report envelope.
	Write(report *schemas.ReportEnvelope) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format writing to outputPath. An empty
// path or "stdout" writes to standard output without closing it.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	cleanup := func() {
		if !isStdOut {
			writer.Close()
		}
	}

	switch format {
	case "json":
		// NewJSONReporter takes ownership of the writer.
		return NewJSONReporter(writer), nil
	case "summary":
		return NewSummaryReporter(writer), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
