package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sf-data-move/internal/backup"
	"sf-data-move/internal/display"
)

var manifestFormat string

// manifestCmd represents the manifest command
var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect backup manifests",
	Long: `Inspect the manifest of a migration backup directory.

Every backup directory written by a migration run contains a manifest
describing the objects it covers, their operations and their snapshot
files. These commands inspect a manifest without building a plan.

Examples:
  # Validate a backup directory
  sf-data-move manifest validate ./backups/run-20260815

  # Show manifest contents
  sf-data-move manifest show ./backups/run-20260815`,
}

// manifestValidateCmd validates a backup manifest
var manifestValidateCmd = &cobra.Command{
	Use:   "validate <backup-dir>",
	Short: "Validate a backup directory's manifest",
	Long: `Validate the manifest of a backup directory.

Checks that the manifest parses, that object entries are well formed,
and that the snapshot files each entry references exist on disk.

Examples:
  # Validate a backup directory
  sf-data-move manifest validate ./backups/run-20260815`,
	Args: cobra.ExactArgs(1),
	RunE: runManifestValidate,
}

// manifestShowCmd displays a backup manifest
var manifestShowCmd = &cobra.Command{
	Use:   "show <backup-dir>",
	Short: "Display a backup directory's manifest",
	Long: `Display the manifest of a backup directory.

Examples:
  # Show manifest contents as a table
  sf-data-move manifest show ./backups/run-20260815

  # Show manifest contents as JSON
  sf-data-move manifest show ./backups/run-20260815 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runManifestShow,
}

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.AddCommand(manifestValidateCmd)
	manifestCmd.AddCommand(manifestShowCmd)

	manifestShowCmd.Flags().StringVar(&manifestFormat, "format", "table", "output format (table, json)")
}

// runManifestValidate validates a backup manifest and its files
func runManifestValidate(cmd *cobra.Command, args []string) error {
	backupDir := args[0]

	config, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	displayService := display.NewService(config.Display)

	manifest, err := backup.LoadManifest(backupDir)
	if err != nil {
		displayService.Error(fmt.Sprintf("Manifest validation failed: %v", err))
		return err
	}

	displayService.Success(fmt.Sprintf("Manifest parsed: %d object(s)", len(manifest.Objects)))

	var problems int
	for _, record := range manifest.Objects {
		if record.BackupFile != "" {
			path := backup.ResolveFile(backupDir, record.BackupFile)
			if !backup.FileExists(path) {
				displayService.Warning(fmt.Sprintf("%s: backup file %q is missing", record.ObjectName, record.BackupFile))
				problems++
			}
		}
		if record.PostMigrationBackupFile != "" {
			path := backup.ResolveFile(backupDir, record.PostMigrationBackupFile)
			if !backup.FileExists(path) {
				displayService.Warning(fmt.Sprintf("%s: post-migration backup file %q is missing", record.ObjectName, record.PostMigrationBackupFile))
				problems++
			}
		}
		if !record.Operation.IsKnown() {
			displayService.Warning(fmt.Sprintf("%s: unknown operation %q", record.ObjectName, record.Operation))
			problems++
		}
	}

	if problems > 0 {
		displayService.Warning(fmt.Sprintf("%d problem(s) found; affected objects will be skipped during planning", problems))
		return nil
	}

	displayService.Success("All referenced files are present")
	return nil
}

// runManifestShow displays manifest contents
func runManifestShow(cmd *cobra.Command, args []string) error {
	backupDir := args[0]

	config, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	manifest, err := backup.LoadManifest(backupDir)
	if err != nil {
		return err
	}

	switch strings.ToLower(manifestFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(manifest)
	case "table":
		displayService := display.NewService(config.Display)

		if manifest.Mode != "" {
			displayService.Info(fmt.Sprintf("Mode: %s (phase %d)", manifest.Mode, manifest.PhaseNumber))
		}

		headers := []string{"OBJECT", "OPERATION", "EXTERNAL ID", "RECORDS", "BACKUP FILE"}
		rows := make([][]string, 0, len(manifest.Objects))
		for _, record := range manifest.Objects {
			rows = append(rows, []string{
				record.ObjectName,
				string(record.Operation),
				record.ExternalID,
				fmt.Sprintf("%d", record.RecordCount),
				record.BackupFile,
			})
		}
		displayService.PrintTable(headers, rows)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", manifestFormat)
	}
}
