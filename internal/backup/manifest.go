package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"sf-data-move/internal/migration"
)

// ManifestFileName is the name of the manifest file a completed migration
// run leaves behind in its backup directory.
const ManifestFileName = "backup-manifest.json"

// Manifest is the on-disk record of what a completed migration run did,
// written once per run by the backup writer. The planner treats it as
// immutable input.
type Manifest struct {
	Mode        string         `json:"mode"`
	PhaseNumber int            `json:"phaseNumber"`
	Objects     []ObjectRecord `json:"objects"`
}

// ObjectRecord describes what the run did to one object.
type ObjectRecord struct {
	ObjectName string                 `json:"objectName"`
	Operation  migration.DMLOperation `json:"operation"`
	// ExternalID is one field name, or several joined by ";" for a
	// composite key.
	ExternalID string `json:"externalId,omitempty"`
	// BackupFile is a snapshot taken before the run, used to restore
	// prior values.
	BackupFile string `json:"backupFile,omitempty"`
	// PostMigrationBackupFile is a snapshot taken after the run that also
	// carries the system-assigned identifiers of newly inserted rows.
	// Only meaningful when the operation was an insert.
	PostMigrationBackupFile string `json:"postMigrationBackupFile,omitempty"`
	RecordCount             int    `json:"recordCount"`
	// OriginalQuery is the exact retrieval expression used to select
	// source rows for the run.
	OriginalQuery string `json:"originalQuery,omitempty"`
}

// HasUsableBackup reports whether the pre-run snapshot can actually restore
// anything: a path alone is not enough, the run must have touched rows.
func (r *ObjectRecord) HasUsableBackup() bool {
	return r.BackupFile != "" && r.RecordCount > 0
}

// Validate validates the Manifest.
func (m *Manifest) Validate() error {
	var errors ValidationErrors

	if m.Mode == "" {
		errors.Add("mode", "run mode is required", m.Mode)
	}
	if m.PhaseNumber < 0 {
		errors.Add("phase_number", "phase number cannot be negative", m.PhaseNumber)
	}
	if len(m.Objects) == 0 {
		errors.Add("objects", "manifest must describe at least one object", nil)
	}

	seen := make(map[string]bool, len(m.Objects))
	for i, obj := range m.Objects {
		if err := obj.Validate(); err != nil {
			if validationErrs, ok := err.(ValidationErrors); ok {
				errors = append(errors, validationErrs...)
			} else {
				errors.Add("objects", err.Error(), i)
			}
		}
		key := strings.ToLower(obj.ObjectName)
		if seen[key] {
			errors.Add("objects", "duplicate object entry", obj.ObjectName)
		}
		seen[key] = true
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// Validate validates one ObjectRecord.
func (r *ObjectRecord) Validate() error {
	var errors ValidationErrors

	if r.ObjectName == "" {
		errors.Add("object_name", "object name is required", r.ObjectName)
	}
	if r.Operation == "" {
		errors.Add("operation", "operation is required", r.ObjectName)
	}
	// An operation value we do not recognize is not fatal here. The
	// planner skips such objects one by one, so the rest of the
	// manifest stays usable.
	if r.RecordCount < 0 {
		errors.Add("record_count", "record count cannot be negative", r.RecordCount)
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// ToJSON serializes the Manifest to JSON
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FromJSON deserializes JSON data into a Manifest
func (m *Manifest) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, m); err != nil {
		return NewManifestError("failed to unmarshal manifest JSON", err)
	}
	for i := range m.Objects {
		m.Objects[i].Operation = migration.ParseDMLOperation(string(m.Objects[i].Operation))
	}
	return m.Validate()
}

// LoadManifest reads and validates the manifest from a backup directory.
// A missing or malformed manifest is fatal; there is no partial result.
func LoadManifest(backupDir string) (*Manifest, error) {
	path := filepath.Join(backupDir, ManifestFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError("backup manifest not found", err).
				WithContext("path", path)
		}
		return nil, NewManifestError("failed to read backup manifest", err).
			WithContext("path", path)
	}

	var manifest Manifest
	if err := manifest.FromJSON(data); err != nil {
		return nil, NewManifestError("invalid backup manifest", err).
			WithContext("path", path)
	}

	return &manifest, nil
}

// ResolveFile resolves a manifest-relative snapshot path against the backup
// directory. Absolute paths are returned unchanged.
func ResolveFile(backupDir, file string) string {
	if file == "" {
		return ""
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(backupDir, file)
}

// FileExists reports whether a snapshot file exists on disk.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
