package rollback

import (
	"encoding/json"
	"fmt"
	"os"

	"sf-data-move/internal/migration"
	"sf-data-move/internal/org"
)

// ConfidenceTier ranks the row-identification strategy behind a synthesized
// rollback query, highest confidence first.
type ConfidenceTier string

const (
	// TierBackupColumns restores values from a snapshot; the query selects
	// exactly the columns that were backed up.
	TierBackupColumns ConfidenceTier = "backup-columns"
	// TierSnapshotIdentifiers deletes rows matched against the identifiers
	// recorded in a post-run snapshot. The only high-confidence delete tier.
	TierSnapshotIdentifiers ConfidenceTier = "snapshot-identifiers"
	// TierOriginalFilter reuses the original run's filter clause verbatim.
	TierOriginalFilter ConfidenceTier = "original-filter"
	// TierCreatedOrderCap approximates the original row cap by ordering on
	// most-recently-created. Row order and cap boundary are not guaranteed
	// to match the original insertion set.
	TierCreatedOrderCap ConfidenceTier = "created-order-cap"
	// TierExternalIDNotNull filters on populated external-id fields. Can
	// over-match rows that share the same fields.
	TierExternalIDNotNull ConfidenceTier = "external-id-not-null"
	// TierFullScan is an unfiltered retrieval of the whole object. Must not
	// be executed without explicit operator confirmation.
	TierFullScan ConfidenceTier = "full-object-scan"
	// TierDegradedRestore selects only identifier and external-id fields
	// because no snapshot is resolvable; it cannot actually restore values.
	TierDegradedRestore ConfidenceTier = "degraded-restore"
)

// Level returns the numeric rank of the tier, 1 = highest confidence.
func (t ConfidenceTier) Level() int {
	switch t {
	case TierBackupColumns, TierSnapshotIdentifiers:
		return 1
	case TierOriginalFilter:
		return 2
	case TierCreatedOrderCap:
		return 3
	case TierExternalIDNotNull:
		return 4
	case TierFullScan:
		return 5
	case TierDegradedRestore:
		return 5
	default:
		return 5
	}
}

// Risky reports whether the tier carries real risk of acting on the wrong
// rows and should be surfaced loudly to the operator.
func (t ConfidenceTier) Risky() bool {
	switch t {
	case TierCreatedOrderCap, TierFullScan, TierDegradedRestore:
		return true
	default:
		return false
	}
}

// Object is one object entry of a rollback plan.
type Object struct {
	ObjectName        string                 `json:"objectName"`
	OriginalOperation migration.DMLOperation `json:"originalOperation"`
	RollbackOperation migration.DMLOperation `json:"rollbackOperation"`
	ExternalID        string                 `json:"externalId,omitempty"`
	Query             string                 `json:"query"`
	BackupFile        string                 `json:"backupFile,omitempty"`
	ConfidenceTier    ConfidenceTier         `json:"confidenceTier"`
}

// Validate validates a plan object.
func (o *Object) Validate() error {
	if o.ObjectName == "" {
		return fmt.Errorf("rollback object name cannot be empty")
	}
	if o.RollbackOperation == "" {
		return fmt.Errorf("rollback operation cannot be empty for object %s", o.ObjectName)
	}
	if o.Query == "" {
		return fmt.Errorf("rollback query cannot be empty for object %s", o.ObjectName)
	}
	return nil
}

// Config is a complete rollback plan, consumable by the external migration
// engine as an ordinary migration job.
type Config struct {
	BackupDir   string   `json:"backupDir"`
	Mode        string   `json:"mode"`
	PhaseNumber int      `json:"phaseNumber"`
	Objects     []Object `json:"objects"`
	SourceOrg   org.Org  `json:"sourceOrg"`
	TargetOrg   org.Org  `json:"targetOrg"`
	Warnings    []string `json:"warnings,omitempty"`
}

// AddWarning appends an operator-facing warning to the plan.
func (c *Config) AddWarning(warning string) {
	c.Warnings = append(c.Warnings, warning)
}

// HasFullScanObjects reports whether any object fell through to the
// unfiltered last-resort tier.
func (c *Config) HasFullScanObjects() bool {
	for _, obj := range c.Objects {
		if obj.ConfidenceTier == TierFullScan {
			return true
		}
	}
	return false
}

// RiskyObjects returns the objects whose row identification is low
// confidence.
func (c *Config) RiskyObjects() []Object {
	var risky []Object
	for _, obj := range c.Objects {
		if obj.ConfidenceTier.Risky() {
			risky = append(risky, obj)
		}
	}
	return risky
}

// Validate validates the plan.
func (c *Config) Validate() error {
	for i := range c.Objects {
		if err := c.Objects[i].Validate(); err != nil {
			return fmt.Errorf("invalid rollback object at index %d: %w", i, err)
		}
	}
	return nil
}

// ToJSON serializes the plan to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// WriteFile writes the plan to a file for the external migration engine.
func (c *Config) WriteFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize rollback plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rollback plan to %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads a previously written rollback plan.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rollback plan %s: %w", path, err)
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid rollback plan %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rollback plan %s: %w", path, err)
	}
	return &config, nil
}
