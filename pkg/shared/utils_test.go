package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"target"}))
	assert.False(t, HasFlags(flags))

	require.NoError(t, flags.Parse([]string{"--output", "x"}))
	assert.True(t, HasFlags(flags))
}

func TestGetPluginVersions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "retirejs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retirejs", "VERSION"),
		[]byte(`{"version": "1.2.0", "plugin_type": "scanner"}`), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))

	all := GetPluginVersions(dir, "")
	assert.Equal(t, []string{"broken", "retirejs"}, SortedKeys(all))
	assert.Equal(t, PluginMeta{Version: "unknown", PluginType: "unknown"}, all["broken"])

	scanners := GetPluginVersions(dir, PluginTypeScanner)
	assert.Equal(t, map[string]PluginMeta{"retirejs": {Version: "1.2.0", PluginType: "scanner"}}, scanners)

	assert.Empty(t, GetPluginVersions(filepath.Join(dir, "missing"), ""))
}

func TestIsInList(t *testing.T) {
	assert.True(t, IsInList("json", []string{"json", "sarif"}))
	assert.False(t, IsInList("html", []string{"json", "sarif"}))
}
