package config

import (
	"crypto/tls"
	"path/filepath"
	"time"
)

const (
	DefaultRetireCommand    = "retire"
	DefaultFindingsExitCode = 13
	DefaultRetireTimeout    = 10 * time.Minute
	DefaultWorkers          = 8
	DefaultRepositoryURL    = "https://raw.githubusercontent.com/RetireJS/retire.js/master/repository/jsrepository-v4.json"
	RepositoryFileName      = "jsrepository.json"
)

// DefaultExtensions are the file extensions the retire CLI recognizes as JavaScript.
func DefaultExtensions() []string {
	return []string{"js", "mjs", "cjs"}
}

// DefaultSkipFolders are folder names excluded by the target filter.
func DefaultSkipFolders() []string {
	return []string{"node_modules", "bower_components"}
}

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHttpClientConfig holds additional configuration settings for the resty http client.
type RestyHttpClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// General base configuration applicable to all HTTP clients.
func DefaultHttpConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig function returns a specific http config to Resty
func DefaultRestyConfig() RestyHttpClientConfig {
	baseConfig := DefaultHttpConfig()
	return RestyHttpClientConfig{
		BaseHTTPConfig: baseConfig,
		Debug:          false,
	}
}

// IsStrict reports whether staging failures abort the run. Defaults to true.
func IsStrict(cfg *Config) bool {
	return GetBoolValue(cfg, "Staging.Strict", true)
}

// GetHome returns the home folder, already resolved by ValidateConfig.
func GetHome(cfg *Config) string {
	return cfg.HomeFolder
}

// GetPluginsHome returns the folder scanner plugins are loaded from.
func GetPluginsHome(cfg *Config) string {
	return cfg.PluginsFolder
}

// GetRepositoryPath returns where update-repo stores the vulnerability repository.
func GetRepositoryPath(cfg *Config) string {
	return filepath.Join(GetHome(cfg), RepositoryFileName)
}
