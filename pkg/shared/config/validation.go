package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

const maxWorkers = 256

// ValidateConfig checks if the global configurations have valid values and fills in defaults.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateFolders(cfg); err != nil {
		return fmt.Errorf("YAML global config: folders are invalid: %w", err)
	}
	if err := ValidateRetireConfig(&cfg.Retire); err != nil {
		return fmt.Errorf("YAML global config: retire directive is invalid: %w", err)
	}
	if err := ValidateStagingConfig(&cfg.Staging); err != nil {
		return fmt.Errorf("YAML global config: staging directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HttpClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if len(cfg.Workspace.SkipFolders) == 0 {
		cfg.Workspace.SkipFolders = DefaultSkipFolders()
	}
	if cfg.Repository.URL == "" {
		cfg.Repository.URL = DefaultRepositoryURL
	}
	if _, err := url.ParseRequestURI(cfg.Repository.URL); err != nil {
		return fmt.Errorf("YAML global config: repository url is invalid: %w", err)
	}
	return nil
}

// ValidateFolders resolves the home and plugins folders from environment variables or defaults.
func ValidateFolders(cfg *Config) error {
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.PluginsFolder, "RETIRESCAN_PLUGINS_FOLDER", "plugins", cfg); err != nil {
		return fmt.Errorf("failed to update plugins folder: %w", err)
	}
	if envTemp := os.Getenv("RETIRESCAN_TEMP_FOLDER"); envTemp != "" {
		cfg.Staging.TempFolder = envTemp
	}
	if cfg.Staging.TempFolder != "" {
		expanded, err := files.ExpandPath(cfg.Staging.TempFolder)
		if err != nil {
			return fmt.Errorf("failed to expand temp folder %q: %w", cfg.Staging.TempFolder, err)
		}
		expanded, err = filepath.Abs(expanded)
		if err != nil {
			return fmt.Errorf("failed to resolve temp folder %q: %w", cfg.Staging.TempFolder, err)
		}
		if err := files.CreateFolderIfNotExists(expanded); err != nil {
			return fmt.Errorf("failed to create temp folder %q: %w", expanded, err)
		}
		cfg.Staging.TempFolder = expanded
	}
	return nil
}

// ValidateRetireConfig checks the scanner invocation settings.
func ValidateRetireConfig(retire *Retire) error {
	if retire == nil {
		return fmt.Errorf("retire configuration is nil")
	}
	retire.Command = SetThen(retire.Command, DefaultRetireCommand)
	retire.FindingsExitCode = SetThen(retire.FindingsExitCode, DefaultFindingsExitCode)
	retire.Timeout = SetThen(retire.Timeout, DefaultRetireTimeout)
	if len(retire.Extensions) == 0 {
		retire.Extensions = DefaultExtensions()
	}

	if retire.FindingsExitCode < 1 || retire.FindingsExitCode > 255 {
		return fmt.Errorf("findings_exit_code must be between 1 and 255: %d", retire.FindingsExitCode)
	}
	if err := validateDuration(retire.Timeout, "timeout", 24*time.Hour); err != nil {
		return err
	}
	for i, ext := range retire.Extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" || strings.ContainsAny(ext, `/\,`) {
			return fmt.Errorf("invalid extension %q", retire.Extensions[i])
		}
		retire.Extensions[i] = strings.ToLower(ext)
	}
	if retire.JsRepo != "" {
		expanded, err := files.ExpandPath(retire.JsRepo)
		if err != nil {
			return fmt.Errorf("failed to expand jsrepo path %q: %w", retire.JsRepo, err)
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("jsrepo is not a readable file: %w", err)
		}
		retire.JsRepo = expanded
	}
	return nil
}

// ValidateStagingConfig checks the staging settings.
func ValidateStagingConfig(staging *Staging) error {
	if staging == nil {
		return fmt.Errorf("staging configuration is nil")
	}
	staging.Workers = SetThen(staging.Workers, DefaultWorkers)
	if staging.Workers < 1 || staging.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d: %d", maxWorkers, staging.Workers)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HttpClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == "" {
		return nil
	}

	if !strings.Contains(proxy.Host, "://") {
		proxy.Host = "http://" + proxy.Host
	}
	proxy.Host = strings.TrimRight(proxy.Host, "/")
	if _, err := url.Parse(proxy.Host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	port, err := strconv.Atoi(proxy.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", proxy.Port)
	}
	return nil
}

// updateHome updates the HomeFolder from environment variables or sets a default value.
func updateHome(cfg *Config) error {
	if homeFolder := os.Getenv("RETIRESCAN_HOME"); homeFolder != "" {
		cfg.HomeFolder = homeFolder
	} else if cfg.HomeFolder == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.HomeFolder = filepath.Join(userHome, ".retirescan")
	}

	expandedHomePath, err := files.ExpandPath(cfg.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand new home path %q: %w", cfg.HomeFolder, err)
	}
	cfg.HomeFolder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", cfg.HomeFolder, err)
	}
	return nil
}

// updateFolder updates a folder path in the configuration.
func updateFolder(folder *string, envVar, defaultSubFolder string, cfg *Config) error {
	if envVarValue := os.Getenv(envVar); envVarValue != "" {
		*folder = envVarValue
	} else if *folder == "" {
		*folder = filepath.Join(GetHome(cfg), defaultSubFolder)
	}

	expandedPath, err := files.ExpandPath(*folder)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", *folder, err)
	}
	*folder = expandedPath

	if err := files.CreateFolderIfNotExists(expandedPath); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", expandedPath, err)
	}
	return nil
}
