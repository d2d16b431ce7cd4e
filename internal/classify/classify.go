// Package classify decides how an input file is handed to the scanner.
package classify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
)

// Kind is the outcome of classifying a file.
type Kind int

const (
	Ignore Kind = iota
	TextCandidate
	Archive
)

func (k Kind) String() string {
	switch k {
	case TextCandidate:
		return "text"
	case Archive:
		return "archive"
	default:
		return "ignore"
	}
}

// SniffLen is how many leading bytes the binary heuristic looks at.
const SniffLen = 512

// Classifier sorts files into text candidates, ZIP archives and the rest.
type Classifier struct {
	extensions []string
	logger     hclog.Logger
}

// New creates a Classifier. Files whose extension is one of extensions
// (given without the dot) are always text candidates.
func New(extensions []string, logger hclog.Logger) *Classifier {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = "." + strings.ToLower(strings.TrimPrefix(e, "."))
	}
	return &Classifier{extensions: exts, logger: logger}
}

// Classify reads the head of path and decides its Kind. Unreadable files are ignored.
func (c *Classifier) Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.extensions {
		if ext == e {
			return TextCandidate
		}
	}

	head, err := readHead(path, SniffLen)
	if err != nil {
		c.logger.Debug("unable to read file for classification, ignoring", "path", path, "error", err)
		return Ignore
	}
	if !IsBinary(head) {
		return TextCandidate
	}
	if IsZip(head) {
		return Archive
	}
	return Ignore
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return buf[:read], nil
}

// IsZip matches the local file header, central directory and spanned/EOCD
// signatures: 50 4B {03,05,07} {04,06,08}.
func IsZip(head []byte) bool {
	if len(head) < 4 {
		return false
	}
	return head[0] == 'P' && head[1] == 'K' &&
		(head[2] == 3 || head[2] == 5 || head[2] == 7) &&
		(head[3] == 4 || head[3] == 6 || head[3] == 8)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	magicPDF   = []byte("%PDF-")
)

// IsBinary reports whether data looks like binary content. A NUL byte means
// binary; otherwise more than 10% suspicious bytes (control characters or
// invalid UTF-8) does. Only the first 512 bytes are considered. Empty input is text.
func IsBinary(data []byte) bool {
	if len(data) > SniffLen {
		data = data[:SniffLen]
	}
	if len(data) == 0 {
		return false
	}
	if bytes.HasPrefix(data, bomUTF32BE) || bytes.HasPrefix(data, bomUTF32LE) {
		return false
	}
	if bytes.HasPrefix(data, bomUTF8) || bytes.HasPrefix(data, bomUTF16BE) || bytes.HasPrefix(data, bomUTF16LE) {
		return false
	}
	if bytes.HasPrefix(data, magicPDF) {
		return true
	}

	suspicious := 0
	for i := 0; i < len(data); {
		b := data[i]
		if b == 0 {
			return true
		}
		if b < utf8.RuneSelf {
			if isSuspiciousASCII(b) {
				suspicious++
			}
			i++
			continue
		}
		// A multi-byte rune cut off by the sniff window is not held against the data.
		if !utf8.FullRune(data[i:]) {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			suspicious++
		}
		i += size
	}
	return suspicious*100/len(data) > 10
}

// isSuspiciousASCII flags control characters other than \b \t \n \v \f \r and ESC.
func isSuspiciousASCII(b byte) bool {
	if b >= 7 && b <= 13 {
		return false
	}
	if b == 27 {
		return false
	}
	return b < 32 || b == 127
}
