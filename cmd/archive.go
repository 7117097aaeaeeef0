package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sf-data-move/internal/backup"
	"sf-data-move/internal/display"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Work with remotely stored backup archives",
	Long: `Work with backup archives held by the configured storage provider.

Backup directories can be archived to S3, Azure Blob Storage, Google
Cloud Storage, or a local base path after a migration run. Archives
listed here can be planned against with 'rollback plan --archive'.

Examples:
  # List archives on the configured provider
  sf-data-move archive list`,
}

// archiveListCmd lists available archives
var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives on the configured storage provider",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
}

// runArchiveList lists archives held by the storage provider
func runArchiveList(cmd *cobra.Command, args []string) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	displayService := display.NewService(config.Display)

	ctx := context.Background()

	factory := backup.NewArchiveProviderFactory()
	provider, err := factory.CreateArchiveProvider(ctx, config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}

	if err := provider.HealthCheck(ctx); err != nil {
		return fmt.Errorf("storage provider health check failed: %w", err)
	}

	archives, err := provider.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list archives: %w", err)
	}

	if len(archives) == 0 {
		displayService.Info("No archives found.")
		return nil
	}

	for _, name := range archives {
		fmt.Println(name)
	}
	displayService.Info(fmt.Sprintf("Total archives: %d", len(archives)))

	return nil
}
