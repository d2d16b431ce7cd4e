// Package staging owns the temporary directory tree the scanner runs against.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

const (
	rootPattern    = "retirescan-"
	subdirPrefix   = "TMPDIR_"
	targetDirName  = "files"
	outputFileName = "output.json"
)

// Root is one staging directory, owned by a single pipeline run. Staged files
// live under Target; the scanner report is written next to it, outside the scan.
type Root struct {
	path    string
	target  string
	counter atomic.Uint64
	logger  hclog.Logger

	cleanupOnce sync.Once
	cleanupErr  error
}

// NewRoot creates a fresh staging root under parent (os.TempDir() when empty).
// The returned path is absolute with symlinks resolved so it matches what the
// scanner reports, even when parent is relative.
func NewRoot(parent string, logger hclog.Logger) (*Root, error) {
	if parent != "" {
		abs, err := filepath.Abs(parent)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve staging parent %q: %w", parent, err)
		}
		parent = abs
	}
	dir, err := os.MkdirTemp(parent, rootPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to resolve staging root %q: %w", dir, err)
	}
	target := filepath.Join(resolved, targetDirName)
	if err := os.Mkdir(target, 0o700); err != nil {
		os.RemoveAll(resolved)
		return nil, fmt.Errorf("failed to create staging target %q: %w", target, err)
	}
	logger.Debug("staging root created", "path", resolved)
	return &Root{path: resolved, target: target, logger: logger}, nil
}

// Path returns the absolute path of the root directory.
func (r *Root) Path() string {
	return r.path
}

// Target returns the directory handed to the scanner.
func (r *Root) Target() string {
	return r.target
}

// ResultsPath returns where the scanner report is written.
func (r *Root) ResultsPath() string {
	return filepath.Join(r.path, outputFileName)
}

// Subdir creates a directory with a name never used before in this root,
// directly under parent. An empty parent means Target; any other parent must
// lie inside Target.
func (r *Root) Subdir(parent string) (string, error) {
	if parent == "" {
		parent = r.target
	}
	parent, err := files.EnsureWithinRoot(r.target, parent)
	if err != nil {
		return "", fmt.Errorf("invalid staging parent: %w", err)
	}

	name := fmt.Sprintf("%s%d", subdirPrefix, r.counter.Add(1))
	dir := filepath.Join(parent, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create staging directory %q: %w", dir, err)
	}
	return dir, nil
}

// Cleanup removes the root and everything below it. It is safe to call more
// than once; failures are logged and returned but leave the Root unusable either way.
func (r *Root) Cleanup() error {
	r.cleanupOnce.Do(func() {
		if err := os.RemoveAll(r.path); err != nil {
			r.logger.Warn("failed to remove staging root", "path", r.path, "error", err)
			r.cleanupErr = fmt.Errorf("failed to remove staging root %q: %w", r.path, err)
			return
		}
		r.logger.Debug("staging root removed", "path", r.path)
	})
	return r.cleanupErr
}

// IsEmpty reports whether nothing has been staged under Target.
func (r *Root) IsEmpty() (bool, error) {
	entries, err := os.ReadDir(r.target)
	if err != nil {
		return false, fmt.Errorf("failed to read staging target %q: %w", r.target, err)
	}
	return len(entries) == 0, nil
}
