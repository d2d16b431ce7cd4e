package shared

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-plugin"

	"github.com/scan-io-git/retirescan/pkg/shared/config"
	"github.com/scan-io-git/retirescan/pkg/shared/logger"
)

const PluginTypeScanner string = "scanner"

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "RETIRESCAN",
	MagicCookieValue: "4c0a8b1e9f3d27c65e1b0d8a7f29c3e6b5d41a70",
}

var PluginMap = map[string]plugin.Plugin{
	PluginTypeScanner: &ScannerPlugin{},
}

// WithPlugin starts the named plugin from the plugins folder, dispenses
// pluginType and passes it to f. The plugin process is killed when f returns.
func WithPlugin(cfg *config.Config, loggerName string, pluginType string, pluginName string, f func(interface{}) error) error {
	logger := logger.NewLogger(cfg, loggerName)

	pluginPath := filepath.Join(config.GetPluginsHome(cfg), pluginName)
	if _, err := os.Stat(pluginPath); err != nil {
		return fmt.Errorf("plugin %q is not available: %w", pluginName, err)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap,
		Cmd:             exec.Command(pluginPath),
		Logger:          logger,
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return fmt.Errorf("failed to connect to plugin %q: %w", pluginName, err)
	}

	raw, err := rpcClient.Dispense(pluginType)
	if err != nil {
		return fmt.Errorf("failed to dispense %s from plugin %q: %w", pluginType, pluginName, err)
	}

	return f(raw)
}
