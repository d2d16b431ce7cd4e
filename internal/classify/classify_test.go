package classify

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("lib/JsFileWithoutExt")
	require.NoError(t, err)
	_, err = f.Write([]byte("/*! jQuery v3.1.0 */"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0644))
		return p
	}

	tests := []struct {
		name string
		path string
		want Kind
	}{
		{"js by extension even if binary", write("weird.js", pngHeader), TextCandidate},
		{"uppercase native extension", write("UPPER.CJS", pngHeader), TextCandidate},
		{"text without extension", write("JsResWithoutExt", []byte("/*! jQuery v3.1.0 */\nvar a;\n")), TextCandidate},
		{"text with odd extension", write("JsResWithOddExt.foo", []byte("function x() {}\n")), TextCandidate},
		{"empty file", write("empty", nil), TextCandidate},
		{"zip with zip extension", write("ZipFile.zip", zipBytes(t)), Archive},
		{"zip without extension", write("ZipFileWithNoExt", zipBytes(t)), Archive},
		{"zip as resource", write("ZipFileAsResource.resource", zipBytes(t)), Archive},
		{"png image", write("ImageFileWithNoExt", pngHeader), Ignore},
		{"missing file", filepath.Join(dir, "does-not-exist"), Ignore},
	}

	c := New([]string{"js", "mjs", "cjs"}, hclog.NewNullLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path))
		})
	}
}

func TestIsZip(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{"local file header", []byte{0x50, 0x4B, 0x03, 0x04}, true},
		{"empty archive", []byte{0x50, 0x4B, 0x05, 0x06}, true},
		{"spanned archive", []byte{0x50, 0x4B, 0x07, 0x08}, true},
		{"wrong third byte", []byte{0x50, 0x4B, 0x01, 0x02}, false},
		{"too short", []byte{0x50, 0x4B, 0x03}, false},
		{"text", []byte("PKG info"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsZip(tt.head))
		})
	}
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"ascii source", []byte("var x = 1;\n\tconsole.log(x);\r\n"), false},
		{"utf8 text", []byte("// Grüße, 日本語のコメント\n"), false},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "text"...), false},
		{"utf16 bom", []byte{0xFF, 0xFE, 'a', 0x00}, false},
		{"nul byte", []byte("abc\x00def"), true},
		{"pdf", []byte("%PDF-1.7\n"), true},
		{"control noise", bytes.Repeat([]byte{0x01, 0x02, 'a'}, 20), true},
		{"few control bytes", append(bytes.Repeat([]byte("a"), 100), 0x01), false},
		{"truncated rune at window end", append(bytes.Repeat([]byte("a"), 511), 0xE6), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.data))
		})
	}
}
