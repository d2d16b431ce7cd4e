package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/retirescan/pkg/shared"
)

// ValidateScanArgs checks the necessary fields in ScannerScanRequest and returns errors if they are not set
func ValidateScanArgs(args *shared.ScannerScanRequest) error {
	if args.TargetPath == "" {
		return fmt.Errorf("target path is required")
	}
	if args.ResultsPath == "" {
		return fmt.Errorf("results path is required")
	}

	info, err := os.Stat(args.TargetPath)
	if err != nil {
		return fmt.Errorf("target path does not exist: %s", args.TargetPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("target path is not a folder: %s", args.TargetPath)
	}

	resultsDir := filepath.Dir(args.ResultsPath)
	if _, err := os.Stat(resultsDir); err != nil {
		return fmt.Errorf("results folder does not exist: %s", resultsDir)
	}

	if args.FindingsExitCode < 1 || args.FindingsExitCode > 255 {
		return fmt.Errorf("findings exit code must be between 1 and 255: %d", args.FindingsExitCode)
	}
	for _, ext := range args.Extensions {
		if ext == "" || strings.Contains(ext, ",") {
			return fmt.Errorf("invalid extension %q", ext)
		}
	}
	return nil
}
