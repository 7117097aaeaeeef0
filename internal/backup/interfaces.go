package backup

import (
	"context"
)

// ArchiveProvider retrieves archived backup directories from a storage
// backend into a local staging directory. The rollback planner only ever
// works against local files, so remote archives are fetched first.
type ArchiveProvider interface {
	// Fetch downloads every file of the named backup archive into destDir.
	Fetch(ctx context.Context, archiveName, destDir string) error
	// List returns the archive names available under the configured prefix.
	List(ctx context.Context) ([]string, error)
	// HealthCheck verifies that the storage backend is reachable.
	HealthCheck(ctx context.Context) error
}
