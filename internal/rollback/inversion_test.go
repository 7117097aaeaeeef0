package rollback

import (
	"testing"

	"sf-data-move/internal/migration"
)

func boolPtr(b bool) *bool { return &b }

func TestInversionEngine_Invert(t *testing.T) {
	engine := NewInversionEngine(UpsertFallbackDelete)

	tests := []struct {
		name            string
		original        migration.DMLOperation
		hasUsableBackup bool
		wasInserted     *bool
		wantOp          migration.DMLOperation
		wantOK          bool
	}{
		{"insert with backup", migration.OperationInsert, true, nil, migration.OperationDelete, true},
		{"insert without backup", migration.OperationInsert, false, nil, migration.OperationDelete, true},
		{"update with backup", migration.OperationUpdate, true, nil, migration.OperationUpdate, true},
		{"update without backup", migration.OperationUpdate, false, nil, "", false},
		{"upsert without backup", migration.OperationUpsert, false, nil, migration.OperationDelete, true},
		{"upsert inserted row", migration.OperationUpsert, true, boolPtr(true), migration.OperationDelete, true},
		{"upsert modified row", migration.OperationUpsert, true, boolPtr(false), migration.OperationUpdate, true},
		{"upsert unknown outcome", migration.OperationUpsert, true, nil, migration.OperationDelete, true},
		{"delete with backup", migration.OperationDelete, true, nil, migration.OperationInsert, true},
		{"delete without backup", migration.OperationDelete, false, nil, "", false},
		{"delete hierarchy with backup", migration.OperationDeleteHierarchy, true, nil, migration.OperationInsert, true},
		{"delete hierarchy without backup", migration.OperationDeleteHierarchy, false, nil, "", false},
		{"delete source with backup", migration.OperationDeleteSource, true, nil, "", false},
		{"delete source without backup", migration.OperationDeleteSource, false, nil, "", false},
		{"readonly", migration.OperationReadonly, true, nil, "", false},
		{"unknown operation", migration.DMLOperation("Merge"), true, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason, ok := engine.Invert(tt.original, tt.hasUsableBackup, tt.wasInserted)
			if ok != tt.wantOK {
				t.Fatalf("Invert(%s) ok = %v, want %v", tt.original, ok, tt.wantOK)
			}
			if got != tt.wantOp {
				t.Errorf("Invert(%s) = %q, want %q", tt.original, got, tt.wantOp)
			}
			if !ok && reason == "" {
				t.Errorf("Invert(%s) skipped without a reason", tt.original)
			}
			if ok && reason != "" {
				t.Errorf("Invert(%s) succeeded but carries reason %q", tt.original, reason)
			}
		})
	}
}

func TestInversionEngine_UpsertSkipPolicy(t *testing.T) {
	engine := NewInversionEngine(UpsertFallbackSkip)

	if _, reason, ok := engine.Invert(migration.OperationUpsert, false, nil); ok {
		t.Fatal("skip policy should not invert an ambiguous upsert")
	} else if reason == "" {
		t.Error("skipped upsert should name a reason")
	}

	// An unambiguous upsert still inverts under the skip policy.
	got, _, ok := engine.Invert(migration.OperationUpsert, true, boolPtr(false))
	if !ok || got != migration.OperationUpdate {
		t.Errorf("Invert(Upsert, backup, modified) = %q, %v; want Update, true", got, ok)
	}
}

func TestNewInversionEngine_DefaultPolicy(t *testing.T) {
	engine := NewInversionEngine("")

	got, _, ok := engine.Invert(migration.OperationUpsert, false, nil)
	if !ok || got != migration.OperationDelete {
		t.Errorf("default policy should delete ambiguous upserts, got %q, %v", got, ok)
	}
}
