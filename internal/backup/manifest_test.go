package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-data-move/internal/migration"
)

func writeManifestFile(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadManifest_Valid(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, `{
		"mode": "org-to-org",
		"phaseNumber": 1,
		"objects": [
			{
				"objectName": "Account",
				"operation": "update",
				"backupFile": "accounts.csv",
				"recordCount": 42,
				"originalQuery": "SELECT Id FROM Account WHERE Industry = 'Tech'"
			},
			{
				"objectName": "Contact",
				"operation": "Insert",
				"externalId": "Email__c"
			}
		]
	}`)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "org-to-org", manifest.Mode)
	assert.Equal(t, 1, manifest.PhaseNumber)
	require.Len(t, manifest.Objects, 2)

	// Operation strings are normalized regardless of manifest casing.
	assert.Equal(t, migration.OperationUpdate, manifest.Objects[0].Operation)
	assert.Equal(t, migration.OperationInsert, manifest.Objects[1].Operation)
	assert.Equal(t, 42, manifest.Objects[0].RecordCount)
	assert.Equal(t, "Email__c", manifest.Objects[1].ExternalID)
}

func TestLoadManifest_MissingDirectory(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)

	var backupErr *BackupError
	require.True(t, errors.As(err, &backupErr))
	assert.Equal(t, BackupErrorTypeNotFound, backupErr.Type)
}

func TestLoadManifest_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, `{not json`)

	_, err := LoadManifest(dir)
	require.Error(t, err)

	var backupErr *BackupError
	require.True(t, errors.As(err, &backupErr))
	assert.Equal(t, BackupErrorTypeManifest, backupErr.Type)
}

func TestLoadManifest_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing mode",
			content: `{"objects": [{"objectName": "Account", "operation": "Insert"}]}`,
		},
		{
			name:    "no objects",
			content: `{"mode": "org-to-org", "objects": []}`,
		},
		{
			name: "duplicate objects",
			content: `{"mode": "org-to-org", "objects": [
				{"objectName": "Account", "operation": "Insert"},
				{"objectName": "account", "operation": "Update"}
			]}`,
		},
		{
			name:    "negative record count",
			content: `{"mode": "org-to-org", "objects": [{"objectName": "Account", "operation": "Insert", "recordCount": -1}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifestFile(t, dir, tt.content)

			_, err := LoadManifest(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest_UnknownOperationIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, `{"mode": "org-to-org", "objects": [
		{"objectName": "Account", "operation": "Merge"},
		{"objectName": "Contact", "operation": "Insert"}
	]}`)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)
	require.Len(t, manifest.Objects, 2)
	assert.Equal(t, migration.DMLOperation("Merge"), manifest.Objects[0].Operation)
	assert.False(t, manifest.Objects[0].Operation.IsKnown())
	assert.Equal(t, migration.OperationInsert, manifest.Objects[1].Operation)
}

func TestObjectRecord_HasUsableBackup(t *testing.T) {
	tests := []struct {
		name     string
		record   ObjectRecord
		expected bool
	}{
		{
			name:     "file and rows",
			record:   ObjectRecord{BackupFile: "a.csv", RecordCount: 1},
			expected: true,
		},
		{
			name:     "file without rows",
			record:   ObjectRecord{BackupFile: "a.csv", RecordCount: 0},
			expected: false,
		},
		{
			name:     "rows without file",
			record:   ObjectRecord{RecordCount: 10},
			expected: false,
		},
		{
			name:     "neither",
			record:   ObjectRecord{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.HasUsableBackup())
		})
	}
}

func TestManifest_JSONRoundTrip(t *testing.T) {
	original := Manifest{
		Mode:        "file-to-org",
		PhaseNumber: 3,
		Objects: []ObjectRecord{{
			ObjectName:              "Account",
			Operation:               migration.OperationUpsert,
			ExternalID:              "SKU__c;Region__c",
			BackupFile:              "accounts.csv.gz",
			PostMigrationBackupFile: "accounts-post.csv.gz",
			RecordCount:             7,
			OriginalQuery:           "SELECT Id FROM Account",
		}},
	}

	data, err := original.ToJSON()
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, decoded.FromJSON(data))
	assert.Equal(t, original, decoded)
}

func TestResolveFile(t *testing.T) {
	assert.Equal(t, "", ResolveFile("/backups/run-1", ""))
	assert.Equal(t, filepath.Join("/backups/run-1", "a.csv"), ResolveFile("/backups/run-1", "a.csv"))

	abs := filepath.Join(t.TempDir(), "a.csv")
	assert.Equal(t, abs, ResolveFile("/backups/run-1", abs))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("Id\n"), 0644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
	assert.False(t, FileExists(dir), "directories are not snapshot files")
	assert.False(t, FileExists(""))
}
