package scan

import (
	"fmt"
	"os"

	"github.com/scan-io-git/retirescan/internal/report"
	"github.com/scan-io-git/retirescan/pkg/shared"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string, argsLenAtDash int) error {
	paths := args
	if argsLenAtDash > -1 {
		options.AdditionalArgs = args[argsLenAtDash:]
		paths = args[:argsLenAtDash]
	}

	if len(paths) == 0 {
		return fmt.Errorf("at least one target path must be specified")
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("the target path does not exist: %v", p)
			}
			return fmt.Errorf("the target path is not accessible: %w", err)
		}
	}
	options.Paths = paths

	if !shared.IsInList(options.Format, []string{report.FormatJSON, report.FormatSarif}) {
		return fmt.Errorf("unsupported format %q, expected %q or %q", options.Format, report.FormatJSON, report.FormatSarif)
	}

	for _, rule := range options.Rules {
		if !report.IsKnownRule(rule) {
			return fmt.Errorf("unknown rule %q", rule)
		}
	}

	if options.JsRepo != "" {
		if _, err := os.Stat(options.JsRepo); err != nil {
			return fmt.Errorf("the jsrepo file is not accessible: %w", err)
		}
	}
	return nil
}
