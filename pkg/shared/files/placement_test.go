package files

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
)

func failing(name string, err error) Strategy {
	return Strategy{Name: name, Place: func(_, _ string) error { return err }}
}

func writeSource(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "library")
	require.NoError(t, os.WriteFile(src, []byte(content), 0644))
	return src, filepath.Join(t.TempDir(), "library.js")
}

func TestPlaceKeepsContentIdentical(t *testing.T) {
	content := "/*! jQuery v3.1.0 */\nconsole.log('x');\n"
	tests := []struct {
		name       string
		strategies []Strategy
		want       string
	}{
		{name: "default chain", strategies: nil, want: "symlink"},
		{name: "hardlink only", strategies: []Strategy{Hardlink}, want: "link"},
		{name: "copy only", strategies: []Strategy{Copy}, want: "copy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && tt.want == "symlink" {
				t.Skip("symlinks need elevated privileges on windows")
			}
			src, dst := writeSource(t, content)

			used, err := NewPlacer(hclog.NewNullLogger(), tt.strategies...).Place(src, dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, used)

			got, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestPlaceFallsBackToHardlinkNotCopy(t *testing.T) {
	src, dst := writeSource(t, "var a = 1;")
	copied := false
	spyCopy := Strategy{Name: "copy", Place: func(s, d string) error {
		copied = true
		return CopyFile(s, d)
	}}

	used, err := NewPlacer(hclog.NewNullLogger(),
		failing("symlink", errors.New("operation not permitted")), Hardlink, spyCopy).Place(src, dst)
	require.NoError(t, err)
	assert.Equal(t, "link", used)
	assert.False(t, copied)

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))
}

func TestPlaceReportsEveryFailureInOrder(t *testing.T) {
	src, dst := writeSource(t, "var a = 1;")

	_, err := NewPlacer(hclog.NewNullLogger(),
		failing("symlink", errors.New("no symlink permission")),
		failing("link", errors.New("cross-device link")),
		failing("copy", errors.New("disk full")),
	).Place(src, dst)

	var placementErr *errs.PlacementError
	require.ErrorAs(t, err, &placementErr)
	require.Len(t, placementErr.Attempts, 3)
	assert.EqualError(t, placementErr.Attempts[0], "symlink threw an error: no symlink permission")
	assert.EqualError(t, placementErr.Attempts[1], "link threw an error: cross-device link")
	assert.EqualError(t, placementErr.Attempts[2], "copy threw an error: disk full")
	assert.Equal(t, dst, placementErr.Destination)
}

func TestScannerFileName(t *testing.T) {
	exts := []string{"js", "mjs", "cjs"}
	tests := []struct {
		in   string
		want string
	}{
		{"jquery-3.1.0.js", "jquery-3.1.0.js"},
		{"module.MJS", "module.MJS"},
		{"JsResWithOddExt.foo", "JsResWithOddExt.js"},
		{"JsResWithoutExt", "JsResWithoutExt.js"},
		{"bundle.min.resource", "bundle.min.js"},
		{"dir/sub/file.txt", "file.js"},
		{".eslintrc", ".eslintrc.js"},
		{"jquery-1.8.1", "jquery-1.8.1.js"},
		{"angular-1.5.0-rc.1", "angular-1.5.0-rc.1.js"},
		{"lib.v2", "lib.v2.js"},
		{"trailing.", "trailing.js"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ScannerFileName(tt.in, exts))
		})
	}
}
