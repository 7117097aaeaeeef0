package engine

import (
	"path/filepath"
	"reflect"
	"testing"

	"sf-data-move/internal/migration"
	"sf-data-move/internal/org"
	"sf-data-move/internal/rollback"
)

func validPlan() *rollback.Config {
	return &rollback.Config{
		BackupDir:   "/backups/run-1",
		Mode:        "org-to-org",
		PhaseNumber: 1,
		SourceOrg:   org.Org{Alias: "staging"},
		TargetOrg:   org.Org{Alias: "prod"},
		Objects: []rollback.Object{{
			ObjectName:        "Account",
			OriginalOperation: migration.OperationInsert,
			RollbackOperation: migration.OperationDelete,
			Query:             "SELECT Id FROM Account",
			ConfidenceTier:    rollback.TierSnapshotIdentifiers,
		}},
	}
}

func TestPrepareJob(t *testing.T) {
	jobDir := filepath.Join(t.TempDir(), "job")
	plan := validPlan()

	path, err := PrepareJob(plan, jobDir)
	if err != nil {
		t.Fatalf("PrepareJob() error: %v", err)
	}
	if path != filepath.Join(jobDir, JobFileName) {
		t.Errorf("PrepareJob() path = %q", path)
	}

	loaded, err := rollback.LoadConfig(path)
	if err != nil {
		t.Fatalf("written job file does not load: %v", err)
	}
	if !reflect.DeepEqual(plan, loaded) {
		t.Error("job file round trip changed the plan")
	}
}

func TestPrepareJob_RejectsInvalidPlan(t *testing.T) {
	plan := validPlan()
	plan.Objects[0].Query = ""

	if _, err := PrepareJob(plan, t.TempDir()); err == nil {
		t.Fatal("PrepareJob() must reject a plan with an empty query")
	}
}
