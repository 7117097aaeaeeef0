package backup

import (
	"context"
	"fmt"
)

// ArchiveProviderFactory creates archive providers based on configuration.
type ArchiveProviderFactory struct{}

// NewArchiveProviderFactory creates a new archive provider factory.
func NewArchiveProviderFactory() *ArchiveProviderFactory {
	return &ArchiveProviderFactory{}
}

// CreateArchiveProvider creates an archive provider for the storage
// configuration.
func (apf *ArchiveProviderFactory) CreateArchiveProvider(ctx context.Context, config StorageConfig) (ArchiveProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("invalid storage configuration", err)
	}

	switch config.Provider {
	case StorageProviderLocal:
		return NewLocalArchiveProvider(config.Local)

	case StorageProviderS3:
		return NewS3ArchiveProvider(config.S3)

	case StorageProviderAzure:
		return NewAzureArchiveProvider(config.Azure)

	case StorageProviderGCS:
		return NewGCSArchiveProvider(ctx, config.GCS)

	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported storage provider: %s", config.Provider), nil)
	}
}

// GetSupportedProviders returns the supported storage provider types.
func (apf *ArchiveProviderFactory) GetSupportedProviders() []StorageProviderType {
	return []StorageProviderType{
		StorageProviderLocal,
		StorageProviderS3,
		StorageProviderAzure,
		StorageProviderGCS,
	}
}
