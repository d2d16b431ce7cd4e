// Package workspace turns the paths a user passes into the list of files to scan.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TargetExtensions are the extensions the target filter keeps.
var TargetExtensions = []string{".js", ".mjs", ".cjs", ".resource", ".zip"}

const resourceMetaSuffix = ".resource-meta.xml"

// Expand resolves every path to an absolute location and walks folders.
// The result is sorted and free of duplicates. Paths inside a folder named
// in skipFolders are left out.
func Expand(paths []string, skipFolders []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("path %q is not accessible: %w", p, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != abs && isSkipped(d.Name(), skipFolders) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() || d.Type()&fs.ModeSymlink != 0 {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func isSkipped(name string, skipFolders []string) bool {
	for _, s := range skipFolders {
		if name == s {
			return true
		}
	}
	return false
}

// FilterTargets keeps files with a target extension, or with a sibling
// <name>.resource-meta.xml in the same list, that do not sit inside a skipped folder.
func FilterTargets(files []string, skipFolders []string) []string {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}

	targets := []string{}
	for _, f := range files {
		if inSkippedFolder(f, skipFolders) {
			continue
		}
		ext := filepath.Ext(f)
		if hasTargetExtension(ext) {
			targets = append(targets, f)
			continue
		}
		meta := strings.TrimSuffix(f, ext) + resourceMetaSuffix
		if _, ok := set[meta]; ok {
			targets = append(targets, f)
		}
	}
	return targets
}

func hasTargetExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range TargetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func inSkippedFolder(path string, skipFolders []string) bool {
	sep := string(filepath.Separator)
	for _, s := range skipFolders {
		if strings.Contains(path, sep+s+sep) {
			return true
		}
	}
	return false
}
