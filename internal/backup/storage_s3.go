package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3ArchiveProvider implements ArchiveProvider for archives in Amazon S3.
type S3ArchiveProvider struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3ArchiveProvider creates a new S3ArchiveProvider instance.
func NewS3ArchiveProvider(config *S3Config) (*S3ArchiveProvider, error) {
	if config == nil {
		return nil, NewValidationError("S3 storage configuration is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("invalid S3 storage configuration", err)
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"", // token
		),
	})
	if err != nil {
		return nil, NewStorageError("failed to create AWS session", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "backups/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3ArchiveProvider{
		client: s3.New(sess),
		bucket: config.Bucket,
		prefix: prefix,
	}, nil
}

// Fetch downloads every object of the named archive into destDir.
func (s3p *S3ArchiveProvider) Fetch(ctx context.Context, archiveName, destDir string) error {
	archivePrefix := s3p.prefix + sanitizeArchiveName(archiveName) + "/"

	var fetched int
	var downloadErr error
	err := s3p.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s3p.bucket),
		Prefix: aws.String(archivePrefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			rel := strings.TrimPrefix(key, archivePrefix)
			if rel == "" {
				continue
			}
			if downloadErr = s3p.downloadObject(ctx, key, filepath.Join(destDir, filepath.FromSlash(rel))); downloadErr != nil {
				return false
			}
			fetched++
		}
		return true
	})
	if err != nil {
		return NewStorageError("failed to list archive objects in S3", err)
	}
	if downloadErr != nil {
		return downloadErr
	}
	if fetched == 0 {
		return NewNotFoundError(fmt.Sprintf("archive %s not found in s3://%s/%s", archiveName, s3p.bucket, s3p.prefix), nil)
	}
	return nil
}

// List returns the archive names under the configured prefix.
func (s3p *S3ArchiveProvider) List(ctx context.Context) ([]string, error) {
	result, err := s3p.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s3p.bucket),
		Prefix:    aws.String(s3p.prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, NewStorageError("failed to list archives in S3", err)
	}

	var names []string
	for _, cp := range result.CommonPrefixes {
		name := strings.TrimPrefix(aws.StringValue(cp.Prefix), s3p.prefix)
		names = append(names, strings.TrimSuffix(name, "/"))
	}
	return names, nil
}

// HealthCheck verifies that the bucket is reachable.
func (s3p *S3ArchiveProvider) HealthCheck(ctx context.Context) error {
	_, err := s3p.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s3p.bucket),
	})
	if err != nil {
		return NewStorageError(fmt.Sprintf("S3 bucket %s is not accessible", s3p.bucket), err)
	}
	return nil
}

func (s3p *S3ArchiveProvider) downloadObject(ctx context.Context, key, target string) error {
	result, err := s3p.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return NewStorageError(fmt.Sprintf("failed to download archive object %s", key), err)
	}
	defer result.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return NewStorageError("failed to create staging directory", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return NewStorageError("failed to create staged file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		return NewStorageError("failed to write staged file", err)
	}
	return nil
}
