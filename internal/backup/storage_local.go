package backup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchiveProvider implements ArchiveProvider for archives kept on the
// local file system, one directory per completed run.
type LocalArchiveProvider struct {
	basePath    string
	permissions os.FileMode
}

// NewLocalArchiveProvider creates a new LocalArchiveProvider instance.
func NewLocalArchiveProvider(config *LocalConfig) (*LocalArchiveProvider, error) {
	if config == nil {
		return nil, NewValidationError("local storage configuration is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("invalid local storage configuration", err)
	}

	return &LocalArchiveProvider{
		basePath:    config.BasePath,
		permissions: config.Permissions,
	}, nil
}

// Fetch copies an archived backup directory into destDir.
func (lap *LocalArchiveProvider) Fetch(ctx context.Context, archiveName, destDir string) error {
	srcDir := filepath.Join(lap.basePath, sanitizeArchiveName(archiveName))

	info, err := os.Stat(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewNotFoundError(fmt.Sprintf("archive %s not found", archiveName), err)
		}
		return NewStorageError("failed to stat archive directory", err)
	}
	if !info.IsDir() {
		return NewStorageError(fmt.Sprintf("archive %s is not a directory", archiveName), nil)
	}

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return NewStorageError("failed to walk archive directory", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return NewStorageError("failed to resolve archive-relative path", err)
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, lap.permissions)
		}
		return copyFile(path, target)
	})
}

// List returns the archive directory names under the base path.
func (lap *LocalArchiveProvider) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(lap.basePath)
	if err != nil {
		return nil, NewStorageError("failed to list archive directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// HealthCheck verifies that the base path exists and is readable.
func (lap *LocalArchiveProvider) HealthCheck(ctx context.Context) error {
	if _, err := os.ReadDir(lap.basePath); err != nil {
		return NewStorageError("archive base path is not readable", err)
	}
	return nil
}

// sanitizeArchiveName removes path separators to prevent directory traversal.
func sanitizeArchiveName(name string) string {
	sanitized := strings.ReplaceAll(name, "/", "_")
	sanitized = strings.ReplaceAll(sanitized, "\\", "_")
	sanitized = strings.ReplaceAll(sanitized, "..", "_")
	return sanitized
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return NewStorageError("failed to open archive file", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return NewStorageError("failed to create staging directory", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return NewStorageError("failed to create staged file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return NewStorageError("failed to copy archive file", err)
	}
	return nil
}
