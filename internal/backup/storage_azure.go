package backup

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"
)

// AzureArchiveProvider implements ArchiveProvider for archives in Azure
// Blob Storage.
type AzureArchiveProvider struct {
	containerURL azblob.ContainerURL
	prefix       string
}

// NewAzureArchiveProvider creates a new AzureArchiveProvider instance.
func NewAzureArchiveProvider(config *AzureConfig) (*AzureArchiveProvider, error) {
	if config == nil {
		return nil, NewValidationError("Azure storage configuration is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("invalid Azure storage configuration", err)
	}

	credential, err := azblob.NewSharedKeyCredential(config.AccountName, config.AccountKey)
	if err != nil {
		return nil, NewStorageError("failed to create Azure credentials", err)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	serviceURL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName))
	if err != nil {
		return nil, NewStorageError("failed to parse Azure service URL", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "backups/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &AzureArchiveProvider{
		containerURL: azblob.NewServiceURL(*serviceURL, pipeline).NewContainerURL(config.ContainerName),
		prefix:       prefix,
	}, nil
}

// Fetch downloads every blob of the named archive into destDir.
func (aap *AzureArchiveProvider) Fetch(ctx context.Context, archiveName, destDir string) error {
	archivePrefix := aap.prefix + sanitizeArchiveName(archiveName) + "/"

	var fetched int
	for marker := (azblob.Marker{}); marker.NotDone(); {
		listing, err := aap.containerURL.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
			Prefix: archivePrefix,
		})
		if err != nil {
			return NewStorageError("failed to list archive blobs in Azure", err)
		}
		marker = listing.NextMarker

		for _, blob := range listing.Segment.BlobItems {
			rel := strings.TrimPrefix(blob.Name, archivePrefix)
			if rel == "" {
				continue
			}
			if err := aap.downloadBlob(ctx, blob.Name, filepath.Join(destDir, filepath.FromSlash(rel))); err != nil {
				return err
			}
			fetched++
		}
	}
	if fetched == 0 {
		return NewNotFoundError(fmt.Sprintf("archive %s not found in Azure container", archiveName), nil)
	}
	return nil
}

// List returns the archive names under the configured prefix.
func (aap *AzureArchiveProvider) List(ctx context.Context) ([]string, error) {
	var names []string
	for marker := (azblob.Marker{}); marker.NotDone(); {
		listing, err := aap.containerURL.ListBlobsHierarchySegment(ctx, marker, "/", azblob.ListBlobsSegmentOptions{
			Prefix: aap.prefix,
		})
		if err != nil {
			return nil, NewStorageError("failed to list archives in Azure", err)
		}
		marker = listing.NextMarker

		for _, p := range listing.Segment.BlobPrefixes {
			name := strings.TrimPrefix(p.Name, aap.prefix)
			names = append(names, strings.TrimSuffix(name, "/"))
		}
	}
	return names, nil
}

// HealthCheck verifies that the container is reachable.
func (aap *AzureArchiveProvider) HealthCheck(ctx context.Context) error {
	if _, err := aap.containerURL.GetProperties(ctx, azblob.LeaseAccessConditions{}); err != nil {
		return NewStorageError("Azure container is not accessible", err)
	}
	return nil
}

func (aap *AzureArchiveProvider) downloadBlob(ctx context.Context, name, target string) error {
	blobURL := aap.containerURL.NewBlockBlobURL(name)

	resp, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		return NewStorageError(fmt.Sprintf("failed to download archive blob %s", name), err)
	}
	body := resp.Body(azblob.RetryReaderOptions{MaxRetryRequests: 3})
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return NewStorageError("failed to create staging directory", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return NewStorageError("failed to create staged file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return NewStorageError("failed to write staged file", err)
	}
	return nil
}
