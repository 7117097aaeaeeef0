package rollback

import (
	"sf-data-move/internal/backup"
	"sf-data-move/internal/logging"
	"sf-data-move/internal/migration"
	"sf-data-move/internal/soql"
)

// SynthesizedQuery is the retrieval expression identifying the rows a
// rollback operation must target, tagged with its confidence tier.
type SynthesizedQuery struct {
	Query string
	Tier  ConfidenceTier
}

// QuerySynthesizer builds rollback retrieval queries. It never fails:
// every input yields some query, with decreasing confidence down the
// fallback ladder. The safety judgement belongs to the assembler and the
// operator, not here.
type QuerySynthesizer struct {
	soql      *soql.Builder
	snapshots *backup.SnapshotReader
	logger    *logging.Logger
}

// NewQuerySynthesizer creates a new QuerySynthesizer instance.
func NewQuerySynthesizer(snapshots *backup.SnapshotReader, logger *logging.Logger) *QuerySynthesizer {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &QuerySynthesizer{
		soql:      soql.NewBuilder(),
		snapshots: snapshots,
		logger:    logger,
	}
}

// Synthesize builds the retrieval query for one rollback object.
// backupFile is the snapshot the assembler picked as the data source, or ""
// when none is usable; originalQuery is the retrieval expression of the
// original run, if recorded.
func (qs *QuerySynthesizer) Synthesize(objectName, externalID string, rollbackOp migration.DMLOperation, backupFile, originalQuery string) SynthesizedQuery {
	var result SynthesizedQuery
	switch rollbackOp {
	case migration.OperationDelete:
		result = qs.synthesizeDelete(objectName, externalID, backupFile, originalQuery)
	default:
		// Update and Insert rollbacks both restore values from a snapshot.
		result = qs.synthesizeRestore(objectName, externalID, backupFile)
	}

	qs.logger.LogQueryTier(objectName, string(result.Tier), result.Query, result.Tier.Risky())
	return result
}

// synthesizeRestore builds the query for rollbacks that write values back
// (Update undoing an Update, Insert undoing a Delete). Selecting exactly
// the backed-up columns guarantees the undo restores the same field set
// that was captured.
func (qs *QuerySynthesizer) synthesizeRestore(objectName, externalID, backupFile string) SynthesizedQuery {
	if backupFile != "" {
		columns, err := qs.snapshots.ReadHeader(backupFile)
		if err == nil {
			return SynthesizedQuery{
				Query: qs.soql.SelectFields(objectName, columns),
				Tier:  TierBackupColumns,
			}
		}
		qs.logger.WithFields(map[string]interface{}{
			"object": objectName,
			"file":   backupFile,
			"error":  err.Error(),
		}).Warn("Snapshot header unreadable, degrading restore query")
	}

	// Without a snapshot this query cannot restore anything; the assembler
	// treats this path as unsafe for restore operations.
	fields := append([]string{"Id"}, migration.ExternalIDFields(externalID)...)
	return SynthesizedQuery{
		Query: qs.soql.SelectFields(objectName, fields),
		Tier:  TierDegradedRestore,
	}
}

// synthesizeDelete walks the disambiguation ladder for rollbacks that
// remove previously inserted rows. Each tier is used only if the previous
// one is unavailable.
func (qs *QuerySynthesizer) synthesizeDelete(objectName, externalID, backupFile, originalQuery string) SynthesizedQuery {
	// Tier 1: a post-run snapshot carrying assigned identifiers. Row
	// matching is delegated to that snapshot's identifier column.
	if backupFile != "" {
		hasIds, err := qs.snapshots.HasIdentifierColumn(backupFile)
		if err == nil && hasIds {
			return SynthesizedQuery{
				Query: qs.soql.SelectIdentifiers(objectName),
				Tier:  TierSnapshotIdentifiers,
			}
		}
		if err != nil {
			qs.logger.WithFields(map[string]interface{}{
				"object": objectName,
				"file":   backupFile,
				"error":  err.Error(),
			}).Warn("Snapshot unreadable, falling through delete ladder")
		}
	}

	// Tier 2: the predicate that selected the rows to insert will, if
	// still satisfied, select the rows to remove.
	if clause, ok := soql.FilterClause(originalQuery); ok {
		return SynthesizedQuery{
			Query: qs.soql.SelectWithFilter(objectName, clause),
			Tier:  TierOriginalFilter,
		}
	}

	// Tier 3: only a row cap survived; approximate by newest-first order.
	if cap, ok := soql.RowCap(originalQuery); ok {
		return SynthesizedQuery{
			Query: qs.soql.SelectMostRecent(objectName, cap),
			Tier:  TierCreatedOrderCap,
		}
	}

	// Tier 4: populated external-id fields. Composite keys require every
	// component present.
	if fields := nonIdentifierFields(externalID); len(fields) > 0 {
		return SynthesizedQuery{
			Query: qs.soql.SelectWhereNotNull(objectName, fields),
			Tier:  TierExternalIDNotNull,
		}
	}

	// Tier 5: last resort. Executing this blindly could delete unrelated
	// data; the assembler surfaces it for operator confirmation.
	return SynthesizedQuery{
		Query: qs.soql.SelectIdentifiers(objectName),
		Tier:  TierFullScan,
	}
}

// nonIdentifierFields returns the declared external-id fields that are not
// the system record identifier.
func nonIdentifierFields(externalID string) []string {
	var fields []string
	for _, f := range migration.ExternalIDFields(externalID) {
		if !migration.IsIdentifierField(f) {
			fields = append(fields, f)
		}
	}
	return fields
}
