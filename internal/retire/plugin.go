package retire

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/pkg/shared"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	"github.com/scan-io-git/retirescan/pkg/shared/validation"
)

// PluginInvoker runs the scan inside a go-plugin scanner binary.
type PluginInvoker struct {
	cfg    *config.Config
	name   string
	logger hclog.Logger
}

// NewPluginInvoker creates an invoker for the named plugin in the plugins folder.
func NewPluginInvoker(cfg *config.Config, name string, logger hclog.Logger) *PluginInvoker {
	return &PluginInvoker{cfg: cfg, name: name, logger: logger}
}

// Invoke starts the plugin, hands it the configuration and runs one scan.
// The plugin process does not observe ctx once the scan has started.
func (p *PluginInvoker) Invoke(ctx context.Context, req shared.ScannerScanRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Debug("running scan through plugin", "plugin", p.name, "target", req.TargetPath)

	return shared.WithPlugin(p.cfg, "plugin-"+p.name, shared.PluginTypeScanner, p.name, func(raw interface{}) error {
		scanner, ok := raw.(shared.Scanner)
		if !ok {
			return fmt.Errorf("plugin %q does not implement a scanner", p.name)
		}
		if _, err := scanner.Setup(*p.cfg); err != nil {
			return fmt.Errorf("plugin %q setup failed: %w", p.name, err)
		}
		if _, err := scanner.Scan(req); err != nil {
			return fmt.Errorf("plugin %q scan failed: %w", p.name, err)
		}
		return nil
	})
}

// ScannerRetire serves Executor through the shared.Scanner plugin contract.
type ScannerRetire struct {
	logger       hclog.Logger
	globalConfig *config.Config
}

// NewScannerRetire creates the plugin-side scanner.
func NewScannerRetire(logger hclog.Logger) *ScannerRetire {
	return &ScannerRetire{logger: logger}
}

// Setup stores the host configuration for later scans.
func (s *ScannerRetire) Setup(configData config.Config) (bool, error) {
	s.globalConfig = &configData
	return true, nil
}

// Scan runs retire once with the stored configuration.
func (s *ScannerRetire) Scan(args shared.ScannerScanRequest) (shared.ScannerScanResponse, error) {
	var result shared.ScannerScanResponse
	if s.globalConfig == nil {
		return result, fmt.Errorf("scanner is not set up")
	}
	if err := validation.ValidateScanArgs(&args); err != nil {
		return result, fmt.Errorf("invalid scan request: %w", err)
	}

	command := config.SetThen(s.globalConfig.Retire.Command, config.DefaultRetireCommand)
	executor := NewExecutor(command, s.globalConfig.Retire.Timeout, s.logger)
	if err := executor.Invoke(context.Background(), args); err != nil {
		return result, err
	}
	result.ResultsPath = args.ResultsPath
	return result, nil
}
