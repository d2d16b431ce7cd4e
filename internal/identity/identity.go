// Package identity maps staged files back to the files the caller asked to scan.
package identity

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ZippedFileMarker joins an archive path and a member name into one string:
// <archive>::[ZIPPED_FILE]::<member>.
const ZippedFileMarker = "::[ZIPPED_FILE]::"

// Identity is the original location of a staged file. Member is empty for
// plain files and set for files that live inside the archive at Path.
type Identity struct {
	Path   string
	Member string
}

// File returns the identity of a plain file.
func File(path string) Identity {
	return Identity{Path: path}
}

// ArchiveMember returns the identity of member inside archive.
func ArchiveMember(archive, member string) Identity {
	return Identity{Path: archive, Member: member}
}

// InArchive reports whether the identity points inside an archive.
func (id Identity) InArchive() bool {
	return id.Member != ""
}

func (id Identity) String() string {
	if !id.InArchive() {
		return id.Path
	}
	return Join(id.Path, id.Member)
}

// Join builds the composite string for member inside archive.
func Join(archive, member string) string {
	return archive + ZippedFileMarker + member
}

// Split reverses Join on the first marker. ok is false for plain paths.
func Split(s string) (archive, member string, ok bool) {
	return strings.Cut(s, ZippedFileMarker)
}

// Parse turns a string produced by Identity.String back into an Identity.
func Parse(s string) Identity {
	if archive, member, ok := Split(s); ok {
		return ArchiveMember(archive, member)
	}
	return File(s)
}

// Map records staged path -> original identity. It is safe for concurrent
// inserts; each staged path is written once.
type Map struct {
	mu      sync.RWMutex
	entries map[string]Identity
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Identity)}
}

// Put records the identity for stagedPath. It returns false, and keeps the
// existing entry, if stagedPath was already recorded.
func (m *Map) Put(stagedPath string, id Identity) bool {
	key := filepath.Clean(stagedPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; exists {
		return false
	}
	m.entries[key] = id
	return true
}

// Lookup returns the identity recorded for stagedPath.
func (m *Map) Lookup(stagedPath string) (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.entries[filepath.Clean(stagedPath)]
	return id, ok
}

func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// StagedPaths returns every recorded staged path, sorted.
func (m *Map) StagedPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.entries))
	for p := range m.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
