package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"
)

// Versions holds build metadata of a binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// PluginMeta is the content of a plugin's VERSION file.
type PluginMeta struct {
	Version    string `json:"version"`
	PluginType string `json:"plugin_type"`
}

// HasFlags reports whether any flag was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}

// IsInList reports whether target is one of list.
func IsInList(target string, list []string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

// GetPluginVersions reads <pluginsDir>/<name>/VERSION for every plugin folder.
// An empty pluginType matches every plugin.
func GetPluginVersions(pluginsDir, pluginType string) map[string]PluginMeta {
	pluginsMeta := make(map[string]PluginMeta)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return pluginsMeta
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta := readVersionFile(filepath.Join(pluginsDir, entry.Name(), "VERSION"))
		if pluginType != "" && meta.PluginType != pluginType {
			continue
		}
		pluginsMeta[entry.Name()] = meta
	}
	return pluginsMeta
}

func readVersionFile(versionFilePath string) PluginMeta {
	unknown := PluginMeta{Version: "unknown", PluginType: "unknown"}
	data, err := os.ReadFile(versionFilePath)
	if err != nil {
		return unknown
	}
	var pm PluginMeta
	if err := json.Unmarshal(data, &pm); err != nil {
		return unknown
	}
	return pm
}

// SortedKeys returns the plugin names in order.
func SortedKeys(m map[string]PluginMeta) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintResultAsJSON writes v to stdout as indented JSON.
func PrintResultAsJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshaling the result data: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
