package rollback

import (
	"sf-data-move/internal/migration"
)

// UpsertFallback selects what to do with an Upsert whose per-row outcome
// (inserted vs. modified) cannot be determined. The conservative default
// treats all rows as insertions and removes them, which favors deleting
// over restoring wrong values.
type UpsertFallback string

const (
	UpsertFallbackDelete UpsertFallback = "delete"
	UpsertFallbackSkip   UpsertFallback = "skip"
)

// InversionEngine computes, for an operation executed by a completed run,
// the inverse operation that would undo it.
type InversionEngine struct {
	upsertFallback UpsertFallback
}

// NewInversionEngine creates a new InversionEngine instance.
func NewInversionEngine(upsertFallback UpsertFallback) *InversionEngine {
	if upsertFallback == "" {
		upsertFallback = UpsertFallbackDelete
	}
	return &InversionEngine{upsertFallback: upsertFallback}
}

// Invert returns the inverse of the original operation. wasInserted is an
// optional per-row hint for Upsert runs; nil means unknown. When no inverse
// exists, ok is false and reason names why for operator visibility.
func (ie *InversionEngine) Invert(original migration.DMLOperation, hasUsableBackup bool, wasInserted *bool) (inverse migration.DMLOperation, reason string, ok bool) {
	switch original {
	case migration.OperationInsert:
		// Rows created by the run must be removed, backup or not.
		return migration.OperationDelete, "", true

	case migration.OperationUpdate:
		if hasUsableBackup {
			return migration.OperationUpdate, "", true
		}
		return "", "update without a usable backup cannot be reversed", false

	case migration.OperationUpsert:
		if hasUsableBackup && wasInserted != nil {
			if *wasInserted {
				return migration.OperationDelete, "", true
			}
			return migration.OperationUpdate, "", true
		}
		// Without a backup, or with the insert/modify split unknown, we
		// cannot tell which rows were newly created; treat all rows as
		// insertions unless policy says to skip.
		if ie.upsertFallback == UpsertFallbackSkip {
			return "", "upsert outcome is ambiguous and policy is set to skip", false
		}
		return migration.OperationDelete, "", true

	case migration.OperationDelete, migration.OperationDeleteHierarchy:
		if hasUsableBackup {
			return migration.OperationInsert, "", true
		}
		return "", "deleted rows cannot be recreated without a backup", false

	case migration.OperationDeleteSource:
		return "", "source-side deletions are never reversible by this tool", false

	default:
		return "", "operation has no defined inverse", false
	}
}
