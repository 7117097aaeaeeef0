package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSArchiveProvider implements ArchiveProvider for archives in Google
// Cloud Storage.
type GCSArchiveProvider struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSArchiveProvider creates a new GCSArchiveProvider instance.
func NewGCSArchiveProvider(ctx context.Context, config *GCSConfig) (*GCSArchiveProvider, error) {
	if config == nil {
		return nil, NewValidationError("GCS storage configuration is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("invalid GCS storage configuration", err)
	}

	var client *storage.Client
	var err error
	if config.CredentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(config.CredentialsPath))
	} else {
		// Use default credentials (e.g., from environment or metadata server)
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, NewStorageError("failed to create GCS client", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "backups/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &GCSArchiveProvider{
		client:     client,
		bucketName: config.Bucket,
		prefix:     prefix,
	}, nil
}

// Fetch downloads every object of the named archive into destDir.
func (gcsp *GCSArchiveProvider) Fetch(ctx context.Context, archiveName, destDir string) error {
	archivePrefix := gcsp.prefix + sanitizeArchiveName(archiveName) + "/"
	bucket := gcsp.client.Bucket(gcsp.bucketName)

	it := bucket.Objects(ctx, &storage.Query{Prefix: archivePrefix})
	var fetched int
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return NewStorageError("failed to list archive objects in GCS", err)
		}

		rel := strings.TrimPrefix(attrs.Name, archivePrefix)
		if rel == "" {
			continue
		}
		if err := gcsp.downloadObject(ctx, attrs.Name, filepath.Join(destDir, filepath.FromSlash(rel))); err != nil {
			return err
		}
		fetched++
	}
	if fetched == 0 {
		return NewNotFoundError(fmt.Sprintf("archive %s not found in gs://%s/%s", archiveName, gcsp.bucketName, gcsp.prefix), nil)
	}
	return nil
}

// List returns the archive names under the configured prefix.
func (gcsp *GCSArchiveProvider) List(ctx context.Context) ([]string, error) {
	bucket := gcsp.client.Bucket(gcsp.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: gcsp.prefix, Delimiter: "/"})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, NewStorageError("failed to list archives in GCS", err)
		}
		if attrs.Prefix != "" {
			name := strings.TrimPrefix(attrs.Prefix, gcsp.prefix)
			names = append(names, strings.TrimSuffix(name, "/"))
		}
	}
	return names, nil
}

// HealthCheck verifies that the bucket is reachable.
func (gcsp *GCSArchiveProvider) HealthCheck(ctx context.Context) error {
	if _, err := gcsp.client.Bucket(gcsp.bucketName).Attrs(ctx); err != nil {
		return NewStorageError(fmt.Sprintf("GCS bucket %s is not accessible", gcsp.bucketName), err)
	}
	return nil
}

// Close releases the underlying GCS client.
func (gcsp *GCSArchiveProvider) Close() error {
	return gcsp.client.Close()
}

func (gcsp *GCSArchiveProvider) downloadObject(ctx context.Context, name, target string) error {
	reader, err := gcsp.client.Bucket(gcsp.bucketName).Object(name).NewReader(ctx)
	if err != nil {
		return NewStorageError(fmt.Sprintf("failed to download archive object %s", name), err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return NewStorageError("failed to create staging directory", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return NewStorageError("failed to create staged file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return NewStorageError("failed to write staged file", err)
	}
	return nil
}
