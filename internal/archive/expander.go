package archive

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/internal/classify"
	"github.com/scan-io-git/retirescan/internal/identity"
	"github.com/scan-io-git/retirescan/internal/staging"
	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

// Expander stages the text members of archives.
type Expander struct {
	open       Opener
	root       *staging.Root
	ids        *identity.Map
	extensions []string
	logger     hclog.Logger
}

// NewExpander creates an Expander writing into root and recording into ids.
// A nil open uses OpenZip.
func NewExpander(root *staging.Root, ids *identity.Map, extensions []string, open Opener, logger hclog.Logger) *Expander {
	if open == nil {
		open = OpenZip
	}
	return &Expander{
		open:       open,
		root:       root,
		ids:        ids,
		extensions: extensions,
		logger:     logger,
	}
}

// Expand stages every non-directory, non-binary member of archivePath into its
// own subdirectory of parent and returns how many members were staged. The
// first listing, read or extract failure stops the expansion of this archive.
func (e *Expander) Expand(ctx context.Context, archivePath, parent string) (int, error) {
	r, err := e.open(archivePath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	entries, err := r.Entries()
	if err != nil {
		return 0, err
	}

	staged := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return staged, fmt.Errorf("expansion of %q interrupted: %w", archivePath, err)
		}
		if entry.IsDir || strings.HasSuffix(entry.Name, "/") {
			continue
		}
		base := path.Base(entry.Name)
		if base == "." || base == "/" {
			continue
		}

		head, err := r.ReadEntry(entry, classify.SniffLen)
		if err != nil {
			return staged, err
		}
		if classify.IsBinary(head) {
			e.logger.Debug("skipping binary archive member", "archive", archivePath, "entry", entry.Name, "size", entry.Size)
			continue
		}

		dir, err := e.root.Subdir(parent)
		if err != nil {
			return staged, err
		}
		dst := filepath.Join(dir, files.ScannerFileName(base, e.extensions))
		if err := r.Extract(entry, dst); err != nil {
			return staged, err
		}

		id := identity.ArchiveMember(archivePath, entry.Name)
		if !e.ids.Put(dst, id) {
			return staged, fmt.Errorf("staged path %q already recorded", dst)
		}
		e.logger.Trace("staged archive member", "original", id.String(), "staged", dst)
		staged++
	}
	return staged, nil
}
