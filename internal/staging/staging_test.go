package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoot(t *testing.T) {
	parent := t.TempDir()
	root, err := NewRoot(parent, hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { root.Cleanup() })

	assert.True(t, filepath.IsAbs(root.Path()))
	resolved, err := filepath.EvalSymlinks(root.Path())
	require.NoError(t, err)
	assert.Equal(t, resolved, root.Path())
	assert.Equal(t, root.Path(), filepath.Dir(root.Target()))
	assert.Equal(t, root.Path(), filepath.Dir(root.ResultsPath()))
	assert.NotContains(t, root.ResultsPath(), root.Target()+string(filepath.Separator))

	empty, err := root.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestNewRootRelativeParent(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	require.NoError(t, os.Mkdir("reltmp", 0o755))

	root, err := NewRoot("reltmp", hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { root.Cleanup() })

	assert.True(t, filepath.IsAbs(root.Path()))
	assert.True(t, filepath.IsAbs(root.Target()))
	sub, err := root.Subdir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(sub))

	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolvedDir, "reltmp"), filepath.Dir(root.Path()))
}

func TestNewRootMissingParent(t *testing.T) {
	_, err := NewRoot(filepath.Join(t.TempDir(), "missing"), hclog.NewNullLogger())
	assert.Error(t, err)
}

func TestSubdirNamesAreUnique(t *testing.T) {
	root, err := NewRoot(t.TempDir(), hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { root.Cleanup() })

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		dir, err := root.Subdir("")
		require.NoError(t, err)
		assert.False(t, seen[filepath.Base(dir)], "name %q reused", filepath.Base(dir))
		seen[filepath.Base(dir)] = true
		assert.Equal(t, root.Target(), filepath.Dir(dir))
	}

	nested, err := root.Subdir(filepath.Join(root.Target(), "TMPDIR_1"))
	require.NoError(t, err)
	assert.False(t, seen[filepath.Base(nested)])
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSubdirOutsideRoot(t *testing.T) {
	root, err := NewRoot(t.TempDir(), hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { root.Cleanup() })

	_, err = root.Subdir(root.Path())
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	root, err := NewRoot(t.TempDir(), hclog.NewNullLogger())
	require.NoError(t, err)

	dir, err := root.Subdir("")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("x"), 0644))

	require.NoError(t, root.Cleanup())
	_, err = os.Stat(root.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, root.Cleanup(), "second cleanup is a no-op")
}
