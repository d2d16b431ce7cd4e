package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
)

// Strategy is one way of making src available at dst.
type Strategy struct {
	Name  string
	Place func(src, dst string) error
}

// Symlink, Hardlink and Copy are the placement strategies, cheapest first.
var (
	Symlink  = Strategy{Name: "symlink", Place: os.Symlink}
	Hardlink = Strategy{Name: "link", Place: os.Link}
	Copy     = Strategy{Name: "copy", Place: CopyFile}
)

// DefaultStrategies returns symlink, hard link and byte copy in that order.
func DefaultStrategies() []Strategy {
	return []Strategy{Symlink, Hardlink, Copy}
}

// Placer tries its strategies in order until one succeeds.
type Placer struct {
	strategies []Strategy
	logger     hclog.Logger
}

// NewPlacer creates a Placer. With no strategies given it uses DefaultStrategies.
func NewPlacer(logger hclog.Logger, strategies ...Strategy) *Placer {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Placer{strategies: strategies, logger: logger}
}

// Place makes src available at dst and returns the name of the strategy that worked.
// If every strategy fails, the returned *errors.PlacementError holds each failure in attempt order.
func (p *Placer) Place(src, dst string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source path %q: %w", src, err)
	}

	var attempts []error
	for _, s := range p.strategies {
		err := s.Place(absSrc, dst)
		if err == nil {
			p.logger.Trace("file placed", "strategy", s.Name, "source", absSrc, "destination", dst)
			return s.Name, nil
		}
		p.logger.Trace("placement attempt failed", "strategy", s.Name, "error", err)
		attempts = append(attempts, fmt.Errorf("%s threw an error: %w", s.Name, err))
	}
	return "", &errs.PlacementError{Source: absSrc, Destination: dst, Attempts: attempts}
}

// ScannerFileName returns name with its extension replaced by the first of
// exts, unless it already carries one of them. Only an extension made of
// letters is replaced; otherwise the scanner extension is appended so version
// suffixes like "jquery-1.8.1" survive. exts are given without dots.
func ScannerFileName(name string, exts []string) string {
	base := filepath.Base(name)
	if len(exts) == 0 {
		return base
	}
	ext := filepath.Ext(base)
	current := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range exts {
		if current != "" && current == e {
			return base
		}
	}
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || (current != "" && !isLetters(current)) {
		stem = base
	}
	return stem + "." + exts[0]
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
