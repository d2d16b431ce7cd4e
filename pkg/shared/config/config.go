package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is used when no --config flag is given. It may be absent.
const DefaultConfigFile = "config.yml"

type Config struct {
	Logger        Logger     `yaml:"logger"`
	Retire        Retire     `yaml:"retire"`
	Staging       Staging    `yaml:"staging"`
	Workspace     Workspace  `yaml:"workspace"`
	Repository    Repository `yaml:"repository"`
	HttpClient    HttpClient `yaml:"http_client"`
	HomeFolder    string     `yaml:"home_folder"`
	PluginsFolder string     `yaml:"plugins_folder"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Retire describes how the retire CLI is invoked.
type Retire struct {
	Command          string        `yaml:"command"`
	JsRepo           string        `yaml:"jsrepo"`
	FindingsExitCode int           `yaml:"findings_exit_code"`
	Extensions       []string      `yaml:"extensions"`
	AdditionalArgs   []string      `yaml:"additional_args"`
	Timeout          time.Duration `yaml:"timeout"`
	Plugin           string        `yaml:"plugin"`
}

// Staging controls the scratch copy handed to the scanner.
type Staging struct {
	TempFolder string `yaml:"temp_folder"`
	Workers    int    `yaml:"workers"`
	Strict     *bool  `yaml:"strict"`
}

type Workspace struct {
	TargetsOnly bool     `yaml:"targets_only"`
	SkipFolders []string `yaml:"skip_folders"`
}

type Repository struct {
	URL string `yaml:"url"`
}

type HttpClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML config at configPath. When configPath is the
// default file and it does not exist, an empty config is returned so that
// defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if configPath == DefaultConfigFile {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return config, nil
		}
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}
