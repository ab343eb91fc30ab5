package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
	"github.com/xkilldash9x/recongraph/internal/insight"
	"github.com/xkilldash9x/recongraph/internal/observability"
	"github.com/xkilldash9x/recongraph/internal/orchestrator"
	"github.com/xkilldash9x/recongraph/internal/reporting"
	"github.com/xkilldash9x/recongraph/internal/scanservice"
)

// newScanCmd creates and configures the `scan` command (attack-surface flow).
func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [target]",
		Short: "Maps the attack surface of an IP address, domain, or email",
		Args:  cobra.ExactArgs(1),
		PreRunE: bindScanFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, orchestrator.FlowAttackSurface, args[0])
		},
	}
	addOutputFlags(scanCmd)
	return scanCmd
}

// newFootprintCmd creates the `footprint` command (identity-centric flow).
func newFootprintCmd() *cobra.Command {
	footprintCmd := &cobra.Command{
		Use:   "footprint [target]",
		Short: "Maps the digital footprint of an email, phone number, or username",
		Args:  cobra.ExactArgs(1),
		PreRunE: bindScanFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, orchestrator.FlowFootprint, args[0])
		},
	}
	addOutputFlags(footprintCmd)
	return footprintCmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file path for the report. Defaults to stdout.")
	cmd.Flags().StringP("format", "f", "json", "Format for the output report ('json', 'summary').")
	cmd.Flags().Duration("timeout", 0, "Scan service request timeout. (Overrides config/env)")
}

// bindScanFlags binds flags to their corresponding Viper keys so command-line
// flags correctly override config file and environment values.
func bindScanFlags(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlag("scan_service.timeout", cmd.Flags().Lookup("timeout")); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Flags())
}

// runScan wires up the clients and drives one scan end to end.
func runScan(cmd *cobra.Command, flow orchestrator.Flow, target string) error {
	// Use the signal-aware context installed by Execute.
	ctx := cmd.Context()
	logger := observability.GetLogger()

	// Re-resolve the config: the flags bound in PreRunE apply with the right
	// precedence only now.
	resolved, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to finalize config with flag overrides: %w", err)
	}
	cfg = resolved

	scanID := uuid.New().String()
	logger.Info("Starting new scan",
		zap.String("scanID", scanID),
		zap.String("flow", string(flow)),
		zap.String("target", target),
	)

	scanClient, err := scanservice.NewClient(cfg.ScanService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scan service client: %w", err)
	}

	// The insight client is optional: without an API key the report carries
	// the static fallback text instead of generated recommendations.
	var insightSvc orchestrator.InsightService
	if cfg.Insight.APIKey != "" {
		client, err := insight.NewClient(cfg.Insight, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize insight client: %w", err)
		}
		insightSvc = client
	} else {
		logger.Warn("No insight API key configured, recommendations will be unavailable (set RECONGRAPH_INSIGHT_API_KEY)")
	}

	orch, err := orchestrator.New(cfg, logger, scanClient, insightSvc)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orch.Close()

	if err := orch.Submit(ctx, flow, target); err != nil {
		return err
	}
	snapshot := orch.Snapshot()

	report := &schemas.ReportEnvelope{
		ScanID:          scanID,
		Query:           snapshot.Query,
		Timestamp:       time.Now(),
		Graph:           *snapshot.Graph,
		Recommendations: snapshot.Recommendations,
	}

	outputPath := viper.GetString("output")
	format := viper.GetString("format")

	reporter, err := reporting.New(format, outputPath)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	if err := reporter.Write(report); err != nil {
		reporter.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	logger.Info("Scan complete",
		zap.String("scanID", scanID),
		zap.Int("nodes", len(report.Graph.Nodes)),
		zap.Int("edges", len(report.Graph.Edges)),
	)
	return nil
}
