package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
)

// LevelEnv overrides the log level when the config does not set one.
const LevelEnv = "RETIRESCAN_LOG_LEVEL"

// NewLogger writes to stderr so stdout stays free for reports.
func NewLogger(config *config.Config, name string) hclog.Logger {
	return newLogger(config, name, os.Stderr)
}

func newLogger(config *config.Config, name string, output io.Writer) hclog.Logger {
	var logLevel hclog.Level

	if config != nil && config.Logger.Level != "" {
		logLevel = getLogLevel(strings.ToUpper(config.Logger.Level))
	} else {
		// env variables has the second priority
		logLevel = getLogLevel(strings.ToUpper(os.Getenv(LevelEnv)))
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      output,
		Level:       logLevel,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
