package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudops/azure-vm-eol/pkg/auth"
	"github.com/cloudops/azure-vm-eol/pkg/config"
	"github.com/cloudops/azure-vm-eol/pkg/eol"
	"github.com/cloudops/azure-vm-eol/pkg/inventory"
	"github.com/cloudops/azure-vm-eol/pkg/logger"
	"github.com/cloudops/azure-vm-eol/pkg/report"
)

// Version information variables (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// NewScanCommand creates a new scan command
func NewScanCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan [flags] OUTPUT_PATH",
		Short: "Scan the tenant and write an EOL report",
		Long:  "Enumerate every VM in the tenant, classify each OS image against the vendor EOL calendars and write the report to OUTPUT_PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), format, args[0])
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: excel or csv (required)")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build commit, and build time information",
		Run: func(cmd *cobra.Command, args []string) {
			runVersion()
		},
	}

	return cmd
}

// runScan runs the discovery-and-classification pipeline: a background
// enumerator producing inventory records, a concurrent calendar prefetch,
// and a sink draining records into the report writer.
func runScan(ctx context.Context, format, outputPath string) error {
	logger := logger.GetLoggerFromContext(ctx)

	cfg := config.GetConfig()
	if cfg == nil {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	outputFormat := report.ParseOutputFormat(format)
	if outputFormat == report.FormatUnknown {
		logger.Errorf("Unknown output format %q specified. Valid formats are: excel, csv", format)
		if cfg.Output.StrictFormat {
			return fmt.Errorf("unknown output format %q", format)
		}
		return nil
	}

	// Cancel enumeration when the run aborts early (e.g. a calendar fetch
	// failure), so the producer goroutine unwinds instead of blocking on
	// the full channel.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("Detecting credentials")
	cred, err := auth.NewAuthProvider().UserCredential(cfg)
	if err != nil {
		return err
	}

	lister, err := inventory.NewAzureLister(cred)
	if err != nil {
		return err
	}

	logger.Info("Listing VMs in the tenant")
	enumerator := inventory.NewEnumerator(lister, logger, cfg.Scan.PageConcurrency, cfg.Scan.ChannelCapacity)
	records := enumerator.Run(ctx)

	// Fetch all vendor calendars while enumeration is already under way.
	// Any calendar failure is fatal: classification is meaningless without it.
	calendars := eol.NewClient(cfg.EOL.BaseURL, logger)
	if err := calendars.Prefetch(ctx, eol.Products()...); err != nil {
		return err
	}

	writer, err := report.NewWriter(outputFormat, outputPath)
	if err != nil {
		return err
	}

	sink := report.NewSink(calendars, writer, logger, cfg.Scan.EOLLookaheadMonths)
	drainErr := sink.Drain(ctx, records)
	// Flush whatever was written even when the drain failed; partial
	// output is never rolled back.
	closeErr := writer.Close()
	if drainErr != nil {
		return drainErr
	}
	if closeErr != nil {
		return closeErr
	}

	logger.Infof("Report written to %s", outputPath)
	return nil
}

// runVersion displays version information
func runVersion() {
	fmt.Printf("Azure VM EOL Scanner\n")
	fmt.Printf("Version: %s\n", Version)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Build Time: %s\n", BuildTime)
}
