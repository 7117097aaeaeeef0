// Package engine is the boundary to the external data-move engine that
// executes migration and rollback jobs. This tool only plans; the plan
// file written into a job directory is the engine's input.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"sf-data-move/internal/logging"
	"sf-data-move/internal/rollback"
)

// JobFileName is the plan file the engine expects in its job directory.
const JobFileName = "rollback-config.json"

// Runner executes a prepared job directory.
type Runner interface {
	Execute(ctx context.Context, jobDir string) error
}

// PrepareJob writes the rollback plan into jobDir as an engine job.
// The directory is created if needed; an existing plan file is
// overwritten so re-planning the same run stays idempotent.
func PrepareJob(plan *rollback.Config, jobDir string) (string, error) {
	if err := plan.Validate(); err != nil {
		return "", fmt.Errorf("plan is not executable: %w", err)
	}

	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create job directory %s: %w", jobDir, err)
	}

	path := filepath.Join(jobDir, JobFileName)
	if err := plan.WriteFile(path); err != nil {
		return "", err
	}

	return path, nil
}

// CLIRunner invokes the engine binary on a job directory.
type CLIRunner struct {
	binary string
	args   []string
	logger *logging.Logger
}

// NewCLIRunner creates a runner for the given engine binary. Extra args
// are passed through verbatim before the job directory flag.
func NewCLIRunner(binary string, args []string, logger *logging.Logger) *CLIRunner {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &CLIRunner{
		binary: binary,
		args:   args,
		logger: logger,
	}
}

// Execute runs the engine on jobDir and streams its output to the
// current process.
func (r *CLIRunner) Execute(ctx context.Context, jobDir string) error {
	if r.binary == "" {
		return fmt.Errorf("no engine binary configured")
	}

	if _, err := os.Stat(filepath.Join(jobDir, JobFileName)); err != nil {
		return fmt.Errorf("job directory %s has no %s: %w", jobDir, JobFileName, err)
	}

	args := append(append([]string{}, r.args...), "--path", jobDir)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.WithFields(map[string]interface{}{
		"binary":  r.binary,
		"job_dir": jobDir,
	}).Info("Starting engine execution")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine execution failed: %w", err)
	}

	return nil
}
