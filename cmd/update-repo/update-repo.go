package updaterepo

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/retirescan/internal/repository"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	"github.com/scan-io-git/retirescan/pkg/shared/errors"
	"github.com/scan-io-git/retirescan/pkg/shared/files"
	"github.com/scan-io-git/retirescan/pkg/shared/httpclient"
)

// RunOptionsUpdateRepo holds the arguments for the update-repo command.
type RunOptionsUpdateRepo struct {
	URL        string
	OutputPath string
}

var (
	AppConfig              *config.Config
	logger                 hclog.Logger
	updateRepoOptions      RunOptionsUpdateRepo
	exampleUpdateRepoUsage = `  # Download the vulnerability repository to the home folder
  retirescan update-repo

  # Download from a mirror into a custom location
  retirescan update-repo --url https://mirror.example.com/jsrepository.json --output /opt/retire/jsrepository.json`
)

// UpdateRepoCmd represents the update-repo command.
var UpdateRepoCmd = &cobra.Command{
	Use:                   "update-repo [--url URL] [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleUpdateRepoUsage,
	Short:                 "Download the retire.js vulnerability repository for offline scans",
	Args:                  cobra.NoArgs,
	RunE:                  runUpdateRepoCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runUpdateRepoCommand(cmd *cobra.Command, args []string) error {
	url := config.SetThen(updateRepoOptions.URL, AppConfig.Repository.URL)
	dst := config.GetRepositoryPath(AppConfig)
	if updateRepoOptions.OutputPath != "" {
		var err error
		dst, _, err = files.DetermineFileFullPath(updateRepoOptions.OutputPath, config.RepositoryFileName)
		if err != nil {
			logger.Error("invalid output path", "error", err)
			return errors.NewCommandError(fmt.Errorf("invalid output path: %w", err), 1)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := httpclient.InitializeRestyClient(logger.Named("http"), AppConfig)
	size, err := repository.NewUpdater(client, logger).Update(ctx, url, dst)
	if err != nil {
		logger.Error("update-repo command failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("update-repo command failed: %w", err), 2)
	}

	logger.Info("update-repo command completed successfully", "path", dst, "bytes", size)
	return nil
}

func init() {
	UpdateRepoCmd.Flags().StringVar(&updateRepoOptions.URL, "url", "", "URL of the retire.js vulnerability repository. Defaults to the configured repository url.")
	UpdateRepoCmd.Flags().StringVarP(&updateRepoOptions.OutputPath, "output", "o", "", "Path where the repository is saved. Defaults to the home folder.")
	UpdateRepoCmd.Flags().BoolP("help", "h", false, "Show help for the update-repo command.")
}
