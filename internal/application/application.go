package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"sf-data-move/internal/backup"
	"sf-data-move/internal/display"
	"sf-data-move/internal/engine"
	appErrors "sf-data-move/internal/errors"
	"sf-data-move/internal/logging"
	"sf-data-move/internal/org"
	"sf-data-move/internal/rollback"
)

// Config holds the application configuration
type Config struct {
	Orgs org.Pair `mapstructure:"orgs" yaml:"orgs"`

	// BackupDir is a local backup directory; Archive names a remote
	// archive to fetch into a staging directory instead.
	BackupDir string               `mapstructure:"backup_dir" yaml:"backup_dir"`
	Archive   string               `mapstructure:"archive" yaml:"archive"`
	Storage   backup.StorageConfig `mapstructure:"storage" yaml:"storage"`

	Passphrase     string `mapstructure:"passphrase" yaml:"passphrase"`
	UpsertFallback string `mapstructure:"upsert_fallback" yaml:"upsert_fallback"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	StagingDir     string `mapstructure:"staging_dir" yaml:"staging_dir"`
	Force          bool   `mapstructure:"force" yaml:"force"`

	Display   *display.Config `mapstructure:"display" yaml:"display"`
	Verbose   bool            `mapstructure:"verbose" yaml:"verbose"`
	Quiet     bool            `mapstructure:"quiet" yaml:"quiet"`
	LogFile   string          `mapstructure:"log_file" yaml:"log_file"`
	LogFormat string          `mapstructure:"log_format" yaml:"log_format"`
	Timeout   time.Duration   `mapstructure:"timeout" yaml:"timeout"`
}

// Application wires the rollback planner together
type Application struct {
	config          Config
	logger          *logging.Logger
	display         *display.Service
	assembler       *rollback.Assembler
	retry           *appErrors.RetryHandler
	shutdownHandler *appErrors.GracefulShutdownHandler
}

// NewApplication creates a new application instance
func NewApplication(config Config) (*Application, error) {
	if err := config.Orgs.Validate(); err != nil {
		return nil, fmt.Errorf("org configuration validation failed: %w", err)
	}
	if config.BackupDir == "" && config.Archive == "" {
		return nil, fmt.Errorf("either a backup directory or an archive name is required")
	}

	logLevel := logging.LogLevelNormal
	if config.Quiet {
		logLevel = logging.LogLevelQuiet
	} else if config.Verbose {
		logLevel = logging.LogLevelVerbose
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:   logLevel,
		Format:  config.LogFormat,
		LogFile: config.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	displayConfig := config.Display
	if displayConfig == nil {
		displayConfig = display.DefaultConfig()
	}
	displayConfig.VerboseMode = config.Verbose
	displayConfig.QuietMode = config.Quiet
	if err := displayConfig.Validate(); err != nil {
		return nil, fmt.Errorf("display configuration validation failed: %w", err)
	}

	var encryption *backup.EncryptionConfig
	if config.Passphrase != "" {
		encryption = &backup.EncryptionConfig{Passphrase: config.Passphrase}
	}

	assembler := rollback.NewAssembler(logger, rollback.AssemblerOptions{
		UpsertFallback: rollback.UpsertFallback(config.UpsertFallback),
		Encryption:     encryption,
	})

	return &Application{
		config:          config,
		logger:          logger,
		display:         display.NewService(displayConfig),
		assembler:       assembler,
		retry:           appErrors.NewDefaultRetryHandler(),
		shutdownHandler: appErrors.NewGracefulShutdownHandler(),
	}, nil
}

// PlanRollback assembles the rollback plan, shows it to the operator and
// writes the engine job file. The returned plan is the one written.
func (app *Application) PlanRollback(ctx context.Context) (plan *rollback.Config, err error) {
	done := app.logger.LogOperationStart("plan_rollback", map[string]interface{}{
		"backup_dir": app.config.BackupDir,
		"archive":    app.config.Archive,
	})
	defer func() { done(err) }()

	app.setupSignalHandling()

	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	backupDir, err := app.resolveBackupDir(ctx)
	if err != nil {
		app.handlePlanError(err)
		return nil, err
	}

	plan, err = app.assembler.Assemble(backupDir, app.config.Orgs)
	if err != nil {
		app.handlePlanError(err)
		return nil, err
	}

	app.display.RenderPlan(plan)

	if len(plan.Objects) == 0 {
		return nil, fmt.Errorf("no objects in %s are eligible for rollback", backupDir)
	}

	if !app.config.Force {
		confirmed, err := app.display.ConfirmRiskyPlan(plan)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, fmt.Errorf("rollback plan rejected by operator")
		}
	}

	outputDir := app.config.OutputDir
	if outputDir == "" {
		outputDir = backupDir
	}

	path, err := engine.PrepareJob(plan, outputDir)
	if err != nil {
		app.handlePlanError(err)
		return nil, err
	}

	app.display.Success(fmt.Sprintf("Rollback plan written to %s (%d objects)", path, len(plan.Objects)))
	return plan, nil
}

// resolveBackupDir returns the local directory holding the backup to
// plan against, fetching a remote archive into staging when configured.
func (app *Application) resolveBackupDir(ctx context.Context) (string, error) {
	if app.config.Archive == "" {
		return app.config.BackupDir, nil
	}

	factory := backup.NewArchiveProviderFactory()
	provider, err := factory.CreateArchiveProvider(ctx, app.config.Storage)
	if err != nil {
		return "", fmt.Errorf("failed to create storage provider: %w", err)
	}

	if err := provider.HealthCheck(ctx); err != nil {
		return "", fmt.Errorf("storage provider health check failed: %w", err)
	}

	stagingBase := app.config.StagingDir
	if stagingBase == "" {
		stagingBase = os.TempDir()
	}
	stagingDir := filepath.Join(stagingBase, fmt.Sprintf("sf-data-move-%s", uuid.NewString()[:8]))
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	start := time.Now()
	err = app.retry.Retry(ctx, func() error {
		return provider.Fetch(ctx, app.config.Archive, stagingDir)
	})
	app.logger.LogArchiveFetch(string(app.config.Storage.Provider), app.config.Archive, stagingDir, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch archive %s: %w", app.config.Archive, err)
	}

	return stagingDir, nil
}

// setupSignalHandling sets up graceful shutdown on interrupt signals
func (app *Application) setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		app.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

		app.shutdownHandler.RegisterShutdownFunc(func() error {
			app.logger.Info("Performing graceful shutdown...")
			return nil
		})

		os.Exit(0)
	}()
}

// handlePlanError handles and logs planning errors
func (app *Application) handlePlanError(err error) {
	classified := appErrors.NewErrorClassifier().ClassifyError(err)

	userMessage := appErrors.FormatUserError(classified)
	fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage)

	var appErr *appErrors.AppError
	if errors.As(classified, &appErr) {
		app.logger.WithFields(map[string]interface{}{
			"error_type":  string(appErr.Type),
			"recoverable": appErr.IsRecoverable(),
			"context":     appErr.Context,
		}).Error("Rollback planning failed")

		app.provideTroubleshootingHints(appErr)
	}
}

// provideTroubleshootingHints provides helpful troubleshooting information
func (app *Application) provideTroubleshootingHints(appErr *appErrors.AppError) {
	switch appErr.Type {
	case appErrors.ErrorTypeManifest:
		fmt.Fprintf(os.Stderr, "\nTroubleshooting hints:\n")
		fmt.Fprintf(os.Stderr, "- Check that the directory is a backup created by a migration run\n")
		fmt.Fprintf(os.Stderr, "- Verify %s exists and is valid JSON\n", backup.ManifestFileName)
		fmt.Fprintf(os.Stderr, "- The backup may have been created by an incompatible version\n")

	case appErrors.ErrorTypeSnapshot:
		fmt.Fprintf(os.Stderr, "\nTroubleshooting hints:\n")
		fmt.Fprintf(os.Stderr, "- A snapshot file may be truncated or corrupted\n")
		fmt.Fprintf(os.Stderr, "- Check that compressed files were fully downloaded\n")

	case appErrors.ErrorTypePermission:
		fmt.Fprintf(os.Stderr, "\nTroubleshooting hints:\n")
		fmt.Fprintf(os.Stderr, "- Verify the backup passphrase is correct\n")
		fmt.Fprintf(os.Stderr, "- Check file permissions on the backup directory\n")

	case appErrors.ErrorTypeConnection:
		fmt.Fprintf(os.Stderr, "\nTroubleshooting hints:\n")
		fmt.Fprintf(os.Stderr, "- Check network connectivity to the storage provider\n")
		fmt.Fprintf(os.Stderr, "- Verify the storage credentials and bucket or container name\n")

	case appErrors.ErrorTypeTimeout:
		fmt.Fprintf(os.Stderr, "\nTroubleshooting hints:\n")
		fmt.Fprintf(os.Stderr, "- The operation may be taking longer than expected\n")
		fmt.Fprintf(os.Stderr, "- Try increasing the timeout value\n")
	}
}

// GetLogger returns the application logger
func (app *Application) GetLogger() *logging.Logger {
	return app.logger
}

// Shutdown performs graceful shutdown
func (app *Application) Shutdown() error {
	app.logger.Info("Shutting down application")
	return nil
}
