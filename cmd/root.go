package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/retirescan/cmd/scan"
	updaterepo "github.com/scan-io-git/retirescan/cmd/update-repo"
	"github.com/scan-io-git/retirescan/cmd/version"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
	"github.com/scan-io-git/retirescan/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "retirescan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Retirescan finds JavaScript libraries with known vulnerabilities in files, folders and ZIP archives.",
		Long: `Retirescan stages the given files and the text members of ZIP archives into a scratch folder,
runs retire.js over it once and reports every finding against the original file or archive member.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(updaterepo.UpdateRepoCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *errs.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = config.DefaultConfigFile
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	scan.Init(AppConfig, logger.NewLogger(AppConfig, "core-scan"))
	updaterepo.Init(AppConfig, logger.NewLogger(AppConfig, "core-update-repo"))
}
