package rollback

import (
	"fmt"
	"time"

	"sf-data-move/internal/backup"
	"sf-data-move/internal/logging"
	"sf-data-move/internal/migration"
	"sf-data-move/internal/org"
)

// AssemblerOptions configure rollback plan assembly.
type AssemblerOptions struct {
	// UpsertFallback selects the policy for ambiguous Upsert inversions.
	UpsertFallback UpsertFallback
	// Encryption provides the passphrase for encrypted snapshot files.
	Encryption *backup.EncryptionConfig
}

// Assembler builds a rollback plan from the backup directory of a completed
// migration run. Per-object problems are recoverable (skip and log); only a
// missing or malformed manifest fails the whole call.
type Assembler struct {
	inversion   *InversionEngine
	synthesizer *QuerySynthesizer
	logger      *logging.Logger
}

// NewAssembler creates a new Assembler instance.
func NewAssembler(logger *logging.Logger, opts AssemblerOptions) *Assembler {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	snapshots := backup.NewSnapshotReader(opts.Encryption)
	return &Assembler{
		inversion:   NewInversionEngine(opts.UpsertFallback),
		synthesizer: NewQuerySynthesizer(snapshots, logger),
		logger:      logger,
	}
}

// Assemble reads the manifest in backupDir and computes the rollback plan.
// The manifest and snapshot files are never modified; the same inputs
// always produce the same plan.
func (a *Assembler) Assemble(backupDir string, orgs org.Pair) (*Config, error) {
	start := time.Now()

	manifest, err := backup.LoadManifest(backupDir)
	if err != nil {
		a.logger.LogManifestLoad(backupDir, 0, err)
		return nil, fmt.Errorf("cannot plan rollback: %w", err)
	}
	a.logger.LogManifestLoad(backupDir, len(manifest.Objects), nil)

	// The engine's job model reads from sourceOrg and writes to targetOrg.
	// Rollback plans have always shipped with the roles exchanged relative
	// to the original run; kept as-is for engine compatibility. See the
	// compatibility note in DESIGN.md before changing this.
	swapped := orgs.Swapped()
	config := &Config{
		BackupDir:   backupDir,
		Mode:        manifest.Mode,
		PhaseNumber: manifest.PhaseNumber,
		SourceOrg:   swapped.Source,
		TargetOrg:   swapped.Target,
		Objects:     make([]Object, 0, len(manifest.Objects)),
	}

	var skipped int
	for _, record := range manifest.Objects {
		obj, ok := a.planObject(backupDir, record, config)
		if !ok {
			skipped++
			continue
		}
		config.Objects = append(config.Objects, obj)
	}

	a.logger.LogPlanAssembly(backupDir, len(config.Objects), skipped, time.Since(start), nil)
	return config, nil
}

// planObject computes the rollback entry for one manifest record, or
// reports that the object must be excluded.
func (a *Assembler) planObject(backupDir string, record backup.ObjectRecord, config *Config) (Object, bool) {
	hasUsableBackup := record.HasUsableBackup()

	// Per-row insert/modify hints for Upsert runs are not recorded at
	// manifest granularity, so the engine always sees "unknown" here.
	rollbackOp, reason, ok := a.inversion.Invert(record.Operation, hasUsableBackup, nil)
	if !ok {
		a.logger.LogObjectSkipped(record.ObjectName, reason)
		return Object{}, false
	}

	backupFile := a.chooseBackupFile(backupDir, record, rollbackOp)

	if !backup.FileExists(backupFile) {
		if rollbackOp == migration.OperationInsert || rollbackOp == migration.OperationUpdate {
			// Restores are data-driven; without the snapshot on disk there
			// is nothing to restore from.
			a.logger.LogObjectSkipped(record.ObjectName,
				fmt.Sprintf("%s rollback requires a backup file, %q is missing", rollbackOp, backupFile))
			return Object{}, false
		}
		// Deletion only needs a way to identify rows; fall back to the
		// query ladder alone.
		backupFile = ""
	}

	synthesized := a.synthesizer.Synthesize(record.ObjectName, record.ExternalID, rollbackOp, backupFile, record.OriginalQuery)

	if synthesized.Tier == TierDegradedRestore {
		config.AddWarning(fmt.Sprintf(
			"object %s: the backup file header could not be read; the restore query only selects identifier fields. Verify %q before executing.",
			record.ObjectName, backupFile))
	}

	if synthesized.Tier == TierFullScan {
		config.AddWarning(fmt.Sprintf(
			"object %s: no signal narrows the rows to delete; the plan falls back to an unfiltered retrieval of the whole object. Executing it without review could delete unrelated data.",
			record.ObjectName))
	}

	return Object{
		ObjectName:        record.ObjectName,
		OriginalOperation: record.Operation,
		RollbackOperation: rollbackOp,
		ExternalID:        record.ExternalID,
		Query:             synthesized.Query,
		BackupFile:        backupFile,
		ConfidenceTier:    synthesized.Tier,
	}, true
}

// chooseBackupFile selects the snapshot handed to the query synthesizer.
// Delete rollbacks prefer the post-run snapshot because it carries the
// identifiers assigned to the inserted rows; restores use the pre-run
// snapshot.
func (a *Assembler) chooseBackupFile(backupDir string, record backup.ObjectRecord, rollbackOp migration.DMLOperation) string {
	if rollbackOp == migration.OperationDelete {
		if post := backup.ResolveFile(backupDir, record.PostMigrationBackupFile); post != "" && backup.FileExists(post) {
			return post
		}
	}
	if !record.HasUsableBackup() {
		return ""
	}
	return backup.ResolveFile(backupDir, record.BackupFile)
}
