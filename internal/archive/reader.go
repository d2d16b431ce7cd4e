// Package archive expands ZIP archives into the staging area.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
)

// Entry describes one member of an archive. Index is the member's position
// in the archive and is what readers use to find it, so members sharing a
// name stay distinct.
type Entry struct {
	Index int
	Name  string
	IsDir bool
	Size  uint64
}

// Reader is an opened archive.
type Reader interface {
	// Entries lists every member, directories included.
	Entries() ([]Entry, error)
	// ReadEntry returns at most limit leading bytes of the member, or the whole
	// member when limit is not positive.
	ReadEntry(e Entry, limit int64) ([]byte, error)
	// Extract writes the member to dst, which must not exist.
	Extract(e Entry, dst string) error
	Close() error
}

// Opener opens the archive at path.
type Opener func(path string) (Reader, error)

// zipReader is Reader over archive/zip. The central directory is read on the
// first call to Entries, so opening never fails for a readable file.
type zipReader struct {
	path string
	file *os.File
	zr   *zip.Reader
}

// OpenZip is the Opener for ZIP files on disk.
func OpenZip(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.ArchiveError{Archive: path, Op: errs.OpListEntries, Err: err}
	}
	return &zipReader{path: path, file: f}, nil
}

func (r *zipReader) load() error {
	if r.zr != nil {
		return nil
	}
	info, err := r.file.Stat()
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(r.file, info.Size())
	if err != nil {
		return err
	}
	r.zr = zr
	return nil
}

func (r *zipReader) Entries() ([]Entry, error) {
	if err := r.load(); err != nil {
		return nil, &errs.ArchiveError{Archive: r.path, Op: errs.OpListEntries, Err: err}
	}
	entries := make([]Entry, 0, len(r.zr.File))
	for i, f := range r.zr.File {
		entries = append(entries, Entry{
			Index: i,
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Size:  f.UncompressedSize64,
		})
	}
	return entries, nil
}

func (r *zipReader) lookup(e Entry) (*zip.File, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	if e.Index < 0 || e.Index >= len(r.zr.File) || r.zr.File[e.Index].Name != e.Name {
		return nil, fmt.Errorf("entry not found")
	}
	return r.zr.File[e.Index], nil
}

func (r *zipReader) ReadEntry(e Entry, limit int64) ([]byte, error) {
	data, err := r.read(e, limit)
	if err != nil {
		return nil, &errs.ArchiveError{Archive: r.path, Entry: e.Name, Op: errs.OpReadEntry, Err: err}
	}
	return data, nil
}

func (r *zipReader) read(e Entry, limit int64) ([]byte, error) {
	f, err := r.lookup(e)
	if err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var src io.Reader = rc
	if limit > 0 {
		src = io.LimitReader(rc, limit)
	}
	return io.ReadAll(src)
}

func (r *zipReader) Extract(e Entry, dst string) error {
	if err := r.extract(e, dst); err != nil {
		return &errs.ArchiveError{Archive: r.path, Entry: e.Name, Op: errs.OpExtractEntry, Err: err}
	}
	return nil
}

func (r *zipReader) extract(e Entry, dst string) error {
	f, err := r.lookup(e)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (r *zipReader) Close() error {
	return r.file.Close()
}
