package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalProvider(t *testing.T, basePath string) *LocalArchiveProvider {
	t.Helper()
	provider, err := NewLocalArchiveProvider(&LocalConfig{BasePath: basePath})
	require.NoError(t, err)
	return provider
}

func seedArchive(t *testing.T, basePath, name string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(basePath, name, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestNewLocalArchiveProvider_RequiresConfig(t *testing.T) {
	_, err := NewLocalArchiveProvider(nil)
	assert.Error(t, err)

	_, err = NewLocalArchiveProvider(&LocalConfig{})
	assert.Error(t, err)
}

func TestLocalArchiveProvider_Fetch(t *testing.T) {
	base := t.TempDir()
	seedArchive(t, base, "run-2026-01-15", map[string]string{
		ManifestFileName:      `{"mode":"org-to-org","objects":[{"objectName":"Account","operation":"Insert"}]}`,
		"accounts.csv":        "Id,Name\n001xx1,Acme\n",
		"nested/contacts.csv": "Id,Email\n003xx1,a@b.c\n",
	})

	dest := t.TempDir()
	provider := newLocalProvider(t, base)
	require.NoError(t, provider.Fetch(context.Background(), "run-2026-01-15", dest))

	data, err := os.ReadFile(filepath.Join(dest, "accounts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Id,Name\n001xx1,Acme\n", string(data))

	assert.True(t, FileExists(filepath.Join(dest, ManifestFileName)))
	assert.True(t, FileExists(filepath.Join(dest, "nested", "contacts.csv")))
}

func TestLocalArchiveProvider_Fetch_MissingArchive(t *testing.T) {
	provider := newLocalProvider(t, t.TempDir())

	err := provider.Fetch(context.Background(), "no-such-run", t.TempDir())
	require.Error(t, err)

	var backupErr *BackupError
	require.True(t, errors.As(err, &backupErr))
	assert.Equal(t, BackupErrorTypeNotFound, backupErr.Type)
}

func TestLocalArchiveProvider_Fetch_SanitizesArchiveName(t *testing.T) {
	base := t.TempDir()
	provider := newLocalProvider(t, base)

	// Traversal characters are flattened, so this resolves inside basePath
	// and fails as a missing archive rather than escaping it.
	err := provider.Fetch(context.Background(), "../../etc", t.TempDir())
	require.Error(t, err)

	var backupErr *BackupError
	require.True(t, errors.As(err, &backupErr))
	assert.Equal(t, BackupErrorTypeNotFound, backupErr.Type)
}

func TestLocalArchiveProvider_Fetch_Cancelled(t *testing.T) {
	base := t.TempDir()
	seedArchive(t, base, "run-1", map[string]string{"accounts.csv": "Id\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newLocalProvider(t, base).Fetch(ctx, "run-1", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalArchiveProvider_List(t *testing.T) {
	base := t.TempDir()
	seedArchive(t, base, "run-1", map[string]string{"a.csv": "Id\n"})
	seedArchive(t, base, "run-2", map[string]string{"b.csv": "Id\n"})
	require.NoError(t, os.WriteFile(filepath.Join(base, "stray-file.txt"), []byte("x"), 0644))

	names, err := newLocalProvider(t, base).List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"run-1", "run-2"}, names)
}

func TestLocalArchiveProvider_HealthCheck(t *testing.T) {
	base := t.TempDir()
	assert.NoError(t, newLocalProvider(t, base).HealthCheck(context.Background()))

	missing := newLocalProvider(t, filepath.Join(base, "missing"))
	assert.Error(t, missing.HealthCheck(context.Background()))
}
