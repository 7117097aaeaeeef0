package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"sf-data-move/internal/application"
	"sf-data-move/internal/display"
	"sf-data-move/internal/rollback"
)

var (
	// Rollback planning flags
	planArchive        string
	planOutputDir      string
	planStagingDir     string
	planUpsertFallback string
	planForce          bool
	promptPassphrase   bool

	// Rollback show flags
	showFormat string
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Plan the rollback of a completed migration run",
	Long: `Plan the rollback of a completed data migration run.

A migration run leaves behind a backup directory with a manifest and
per-object snapshots. Planning inverts each object's operation, picks
the snapshot file the engine will restore from, and synthesizes the
query that identifies the affected rows. The result is written as an
engine job file; this tool never executes DML itself.

Examples:
  # Plan a rollback from a local backup directory
  sf-data-move rollback plan ./backups/run-20260815

  # Plan against a remote archive
  sf-data-move rollback plan --archive run-20260815

  # Accept low-confidence queries without prompting
  sf-data-move rollback plan ./backups/run-20260815 --force

  # Inspect a previously written plan
  sf-data-move rollback show ./backups/run-20260815/rollback-config.json`,
}

// rollbackPlanCmd plans a rollback for a backup directory
var rollbackPlanCmd = &cobra.Command{
	Use:   "plan [backup-dir]",
	Short: "Build a rollback plan from a backup directory",
	Long: `Build a rollback plan from the backup directory of a migration run.

The backup directory may be given as an argument, or an archive name
may be fetched from the configured storage provider with --archive.
The plan is rendered for review and written as rollback-config.json.

Objects whose operation cannot be reversed, or whose required backup
files are missing, are excluded from the plan with a logged reason.
Plans containing full-object scans require explicit confirmation.

Examples:
  # Plan from a local directory
  sf-data-move rollback plan ./backups/run-20260815

  # Fetch an archive from the configured storage provider first
  sf-data-move rollback plan --archive run-20260815

  # Keep excluded upserts instead of converting them to deletes
  sf-data-move rollback plan ./backups/run-20260815 --upsert-fallback skip

  # Prompt for the backup passphrase instead of passing it on the CLI
  sf-data-move rollback plan ./backups/run-20260815 --prompt-passphrase`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRollbackPlan,
}

// rollbackShowCmd displays a previously written plan
var rollbackShowCmd = &cobra.Command{
	Use:   "show <plan-file>",
	Short: "Display a previously written rollback plan",
	Long: `Display a previously written rollback plan file.

Examples:
  # Show a plan as a table
  sf-data-move rollback show ./backups/run-20260815/rollback-config.json

  # Show a plan as JSON for scripting
  sf-data-move rollback show ./backups/run-20260815/rollback-config.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runRollbackShow,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)

	rollbackCmd.AddCommand(rollbackPlanCmd)
	rollbackCmd.AddCommand(rollbackShowCmd)

	rollbackPlanCmd.Flags().StringVar(&planArchive, "archive", "", "remote archive name to fetch and plan against")
	rollbackPlanCmd.Flags().StringVar(&planOutputDir, "output-dir", "", "directory for the plan file (default: backup dir)")
	rollbackPlanCmd.Flags().StringVar(&planStagingDir, "staging-dir", "", "local staging area for fetched archives")
	rollbackPlanCmd.Flags().StringVar(&planUpsertFallback, "upsert-fallback", "", "ambiguous upsert handling (delete, skip)")
	rollbackPlanCmd.Flags().BoolVar(&planForce, "force", false, "accept low-confidence plans without confirmation")
	rollbackPlanCmd.Flags().BoolVar(&promptPassphrase, "prompt-passphrase", false, "prompt for the backup passphrase")

	rollbackShowCmd.Flags().StringVar(&showFormat, "format", "table", "output format (table, json, yaml)")
}

// runRollbackPlan builds and writes a rollback plan
func runRollbackPlan(cmd *cobra.Command, args []string) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if len(args) > 0 {
		config.BackupDir = args[0]
	}
	if planArchive != "" {
		config.Archive = planArchive
	}
	if planOutputDir != "" {
		config.OutputDir = planOutputDir
	}
	if planStagingDir != "" {
		config.StagingDir = planStagingDir
	}
	if planUpsertFallback != "" {
		config.UpsertFallback = planUpsertFallback
	}
	if cmd.Flags().Changed("force") {
		config.Force = planForce
	}

	if config.BackupDir == "" && config.Archive == "" {
		return fmt.Errorf("a backup directory argument or --archive is required")
	}

	if promptPassphrase {
		passphrase, err := readPassphrase()
		if err != nil {
			return err
		}
		config.Passphrase = passphrase
	}

	app, err := application.NewApplication(*config)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Shutdown()

	if _, err := app.PlanRollback(context.Background()); err != nil {
		return err
	}

	return nil
}

// runRollbackShow displays a written plan file
func runRollbackShow(cmd *cobra.Command, args []string) error {
	planFile := args[0]

	config, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	plan, err := rollback.LoadConfig(planFile)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	switch strings.ToLower(showFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(plan)
	case "yaml":
		out, err := yaml.Marshal(plan)
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		fmt.Print(string(out))
		return nil
	case "table":
		displayService := display.NewService(config.Display)
		displayService.RenderPlan(plan)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", showFormat)
	}
}

// readPassphrase reads the backup passphrase without echoing it
func readPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Backup passphrase: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(raw), nil
}
