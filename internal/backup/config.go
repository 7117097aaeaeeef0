package backup

import (
	"os"
)

// StorageProviderType identifies where archived backup directories live.
type StorageProviderType string

const (
	StorageProviderLocal StorageProviderType = "local"
	StorageProviderS3    StorageProviderType = "s3"
	StorageProviderAzure StorageProviderType = "azure"
	StorageProviderGCS   StorageProviderType = "gcs"
)

// StorageConfig selects and configures an archive storage provider.
type StorageConfig struct {
	Provider StorageProviderType `mapstructure:"provider" yaml:"provider"`
	Local    *LocalConfig        `mapstructure:"local" yaml:"local,omitempty"`
	S3       *S3Config           `mapstructure:"s3" yaml:"s3,omitempty"`
	Azure    *AzureConfig        `mapstructure:"azure" yaml:"azure,omitempty"`
	GCS      *GCSConfig          `mapstructure:"gcs" yaml:"gcs,omitempty"`
}

// LocalConfig configures local archive storage.
type LocalConfig struct {
	BasePath    string      `mapstructure:"base_path" yaml:"base_path"`
	Permissions os.FileMode `mapstructure:"permissions" yaml:"permissions"`
}

// S3Config configures Amazon S3 archive storage.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
}

// AzureConfig configures Azure Blob archive storage.
type AzureConfig struct {
	AccountName   string `mapstructure:"account_name" yaml:"account_name"`
	AccountKey    string `mapstructure:"account_key" yaml:"account_key"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Prefix        string `mapstructure:"prefix" yaml:"prefix"`
}

// GCSConfig configures Google Cloud Storage archive storage.
type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	CredentialsPath string `mapstructure:"credentials_path" yaml:"credentials_path"`
	ProjectID       string `mapstructure:"project_id" yaml:"project_id"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
}

func isValidStorageProviderType(provider StorageProviderType) bool {
	switch provider {
	case StorageProviderLocal, StorageProviderS3, StorageProviderAzure, StorageProviderGCS:
		return true
	default:
		return false
	}
}

// Validate validates the StorageConfig.
func (sc *StorageConfig) Validate() error {
	var errors ValidationErrors

	if !isValidStorageProviderType(sc.Provider) {
		errors.Add("provider", "invalid storage provider type", sc.Provider)
		return errors
	}

	switch sc.Provider {
	case StorageProviderLocal:
		if sc.Local == nil {
			errors.Add("local", "local storage configuration is required", nil)
		} else if err := sc.Local.Validate(); err != nil {
			if validationErrs, ok := err.(ValidationErrors); ok {
				errors = append(errors, validationErrs...)
			} else {
				errors.Add("local", err.Error(), nil)
			}
		}
	case StorageProviderS3:
		if sc.S3 == nil {
			errors.Add("s3", "S3 storage configuration is required", nil)
		} else if err := sc.S3.Validate(); err != nil {
			if validationErrs, ok := err.(ValidationErrors); ok {
				errors = append(errors, validationErrs...)
			} else {
				errors.Add("s3", err.Error(), nil)
			}
		}
	case StorageProviderAzure:
		if sc.Azure == nil {
			errors.Add("azure", "Azure storage configuration is required", nil)
		} else if err := sc.Azure.Validate(); err != nil {
			if validationErrs, ok := err.(ValidationErrors); ok {
				errors = append(errors, validationErrs...)
			} else {
				errors.Add("azure", err.Error(), nil)
			}
		}
	case StorageProviderGCS:
		if sc.GCS == nil {
			errors.Add("gcs", "GCS storage configuration is required", nil)
		} else if err := sc.GCS.Validate(); err != nil {
			if validationErrs, ok := err.(ValidationErrors); ok {
				errors = append(errors, validationErrs...)
			} else {
				errors.Add("gcs", err.Error(), nil)
			}
		}
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// Validate validates the LocalConfig.
func (lc *LocalConfig) Validate() error {
	var errors ValidationErrors

	if lc.BasePath == "" {
		errors.Add("base_path", "base path is required for local storage", lc.BasePath)
	}
	if lc.Permissions == 0 {
		lc.Permissions = 0755
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// Validate validates the S3Config.
func (s3c *S3Config) Validate() error {
	var errors ValidationErrors

	if s3c.Bucket == "" {
		errors.Add("bucket", "S3 bucket name is required", s3c.Bucket)
	}
	if s3c.Region == "" {
		errors.Add("region", "S3 region is required", s3c.Region)
	}
	if s3c.AccessKey == "" {
		errors.Add("access_key", "S3 access key is required", s3c.AccessKey)
	}
	if s3c.SecretKey == "" {
		errors.Add("secret_key", "S3 secret key is required", s3c.SecretKey)
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// Validate validates the AzureConfig.
func (ac *AzureConfig) Validate() error {
	var errors ValidationErrors

	if ac.AccountName == "" {
		errors.Add("account_name", "Azure account name is required", ac.AccountName)
	}
	if ac.AccountKey == "" {
		errors.Add("account_key", "Azure account key is required", ac.AccountKey)
	}
	if ac.ContainerName == "" {
		errors.Add("container_name", "Azure container name is required", ac.ContainerName)
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// Validate validates the GCSConfig.
func (gc *GCSConfig) Validate() error {
	var errors ValidationErrors

	if gc.Bucket == "" {
		errors.Add("bucket", "GCS bucket name is required", gc.Bucket)
	}
	if gc.ProjectID == "" {
		errors.Add("project_id", "GCS project ID is required", gc.ProjectID)
	}

	if errors.HasErrors() {
		return errors
	}
	return nil
}
