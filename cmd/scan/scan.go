package scan

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/retirescan/internal/pipeline"
	"github.com/scan-io-git/retirescan/internal/report"
	"github.com/scan-io-git/retirescan/pkg/shared"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	"github.com/scan-io-git/retirescan/pkg/shared/errors"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	OutputPath     string
	Format         string
	TargetsOnly    bool
	Rules          []string
	ListRules      bool
	JsRepo         string
	Plugin         string
	Tolerant       bool
	Paths          []string
	AdditionalArgs []string
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	logger           hclog.Logger
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scan a folder and print violations as JSON
  retirescan scan /path/to/static_resources

  # Scan several paths and save a SARIF report
  retirescan scan --format sarif --output /path/to/report.sarif ./web ./resources/bundle.zip

  # Only look at files retire.js targets (.js/.mjs/.cjs/.resource/.zip and resources with metadata)
  retirescan scan --targets-only /path/to/project

  # Keep going when a single file or archive cannot be staged
  retirescan scan --tolerant /path/to/project

  # Report only high and critical vulnerabilities
  retirescan scan --rule LibraryWithKnownHighSeverityVulnerability --rule LibraryWithKnownCriticalSeverityVulnerability ./web

  # Pass additional arguments to retire
  retirescan scan ./web -- --ignore tests

  # List the rules
  retirescan scan --list-rules`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--output/-o PATH] [--format/-f json|sarif] [--targets-only] [--tolerant] [--rule NAME]... [--jsrepo PATH] [--plugin NAME] PATH... -- [args...]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scan files, folders and ZIP archives for JavaScript libraries with known vulnerabilities",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if scanOptions.ListRules {
		return shared.PrintResultAsJSON(report.Rules())
	}

	if err := validateScanArgs(&scanOptions, args, cmd.ArgsLenAtDash()); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid scan arguments: %w", err), 1)
	}

	return executeScan(cmd.Context(), &scanOptions)
}

// executeScan runs the pipeline over validated options and writes the report.
func executeScan(ctx context.Context, options *RunOptionsScan) error {
	if ctx == nil {
		ctx = context.Background()
	}

	inputs, err := prepareInputs(AppConfig, options)
	if err != nil {
		logger.Error("failed to prepare scan targets", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to prepare scan targets: %w", err), 1)
	}
	logger.Info("scan targets prepared", "files", len(inputs))

	opts := prepareOptions(AppConfig, options, logger)
	orchestrator := pipeline.New(newInvoker(AppConfig, options, logger), opts, logger.Named("pipeline"))

	res, scanErr := orchestrator.Scan(ctx, inputs)
	if scanErr != nil {
		logger.Error("scan command failed", "error", scanErr, "run", res.RunID, "state", res.State.String())
		return errors.NewCommandError(fmt.Errorf("scan command failed: %w", scanErr), 2)
	}

	violations, err := report.ToViolations(res.Findings)
	if err != nil {
		logger.Error("failed to convert findings", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to convert findings: %w", err), 2)
	}
	violations = report.FilterRules(violations, options.Rules)

	if err := writeResults(options, res, violations); err != nil {
		logger.Error("failed to write result", "error", err)
		return errors.NewCommandError(err, 2)
	}

	logger.Info("scan command completed successfully")
	logger.Info("statistic", "staged_files", res.Staged, "violations", len(violations), "diagnostics", len(res.Diagnostics))
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file or directory where the report will be saved. Printed to stdout when empty.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", report.FormatJSON, "Format of the report (json, sarif).")
	ScanCmd.Flags().BoolVar(&scanOptions.TargetsOnly, "targets-only", false, "Only scan files with a retire.js target extension or a resource metadata file.")
	ScanCmd.Flags().StringArrayVar(&scanOptions.Rules, "rule", nil, "Report only violations of the given rule. Can be repeated.")
	ScanCmd.Flags().BoolVar(&scanOptions.ListRules, "list-rules", false, "Print the rule catalog and exit.")
	ScanCmd.Flags().StringVar(&scanOptions.JsRepo, "jsrepo", "", "Path to a local retire.js vulnerability repository.")
	ScanCmd.Flags().StringVar(&scanOptions.Plugin, "plugin", "", "Name of a scanner plugin to run retire through.")
	ScanCmd.Flags().BoolVar(&scanOptions.Tolerant, "tolerant", false, "Report files that cannot be staged as diagnostics instead of failing.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
