package scan

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/internal/pipeline"
	"github.com/scan-io-git/retirescan/internal/report"
	"github.com/scan-io-git/retirescan/internal/retire"
	"github.com/scan-io-git/retirescan/internal/workspace"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

// prepareInputs expands the target paths into the files handed to the pipeline.
func prepareInputs(cfg *config.Config, options *RunOptionsScan) ([]string, error) {
	inputs, err := workspace.Expand(options.Paths, cfg.Workspace.SkipFolders)
	if err != nil {
		return nil, err
	}
	if options.TargetsOnly || cfg.Workspace.TargetsOnly {
		inputs = workspace.FilterTargets(inputs, cfg.Workspace.SkipFolders)
	}
	return inputs, nil
}

// prepareOptions merges command flags over the configuration.
func prepareOptions(cfg *config.Config, options *RunOptionsScan, logger hclog.Logger) pipeline.Options {
	opts := pipeline.OptionsFromConfig(cfg)
	opts.JsRepo = resolveJsRepo(cfg, options.JsRepo)
	if opts.JsRepo != "" {
		logger.Debug("using local vulnerability repository", "path", opts.JsRepo)
	}
	if len(options.AdditionalArgs) > 0 {
		opts.AdditionalArgs = append(append([]string{}, opts.AdditionalArgs...), options.AdditionalArgs...)
	}
	if options.Tolerant {
		opts.Strict = false
	}
	return opts
}

// resolveJsRepo picks the flag, then the config, then a repository saved by update-repo.
func resolveJsRepo(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.Retire.JsRepo != "" {
		return cfg.Retire.JsRepo
	}
	saved := config.GetRepositoryPath(cfg)
	if _, err := os.Stat(saved); err == nil {
		return saved
	}
	return ""
}

// newInvoker runs retire directly or through a scanner plugin.
func newInvoker(cfg *config.Config, options *RunOptionsScan, logger hclog.Logger) pipeline.Invoker {
	pluginName := config.SetThen(options.Plugin, cfg.Retire.Plugin)
	if pluginName != "" {
		return retire.NewPluginInvoker(cfg, pluginName, logger.Named("plugin"))
	}
	return retire.NewExecutor(cfg.Retire.Command, cfg.Retire.Timeout, logger.Named("retire"))
}

// writeResults saves the report to the output path or prints it to stdout.
func writeResults(options *RunOptionsScan, res *pipeline.Result, violations []report.Violation) error {
	if violations == nil {
		violations = []report.Violation{}
	}

	if options.OutputPath == "" {
		var (
			data []byte
			err  error
		)
		if options.Format == report.FormatSarif {
			data, err = report.EncodeSarif(violations)
		} else {
			data, err = report.EncodeJSON(res, violations)
		}
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	outputPath, _, err := files.DetermineFileFullPath(options.OutputPath, fmt.Sprintf("retirescan-%s.%s", res.RunID, options.Format))
	if err != nil {
		return fmt.Errorf("failed to determine output path: %w", err)
	}
	if err := report.Write(options.Format, outputPath, res, violations); err != nil {
		return err
	}
	logger.Info("results saved to file", "path", outputPath)
	return nil
}
