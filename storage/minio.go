// Package storage wraps the MinIO object store used for audio files and
// cover art.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sonique/config"
	"sonique/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	bucket      string
	publicURL   string
)

// InitMinio connects to the object store and ensures the bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	bucket = cfg.MinioBucket
	publicURL = strings.TrimRight(cfg.MinioPublicURL, "/")
	logger.Info("minio connected", logger.String("endpoint", cfg.MinioEndpoint), logger.String("bucket", cfg.MinioBucket))
	return nil
}

// Upload stores a file under folder with a random object name derived from
// the original filename's extension and returns the public URL.
func Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	ext := filepath.Ext(filename)
	objectName := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	_, err := minioClient.PutObject(ctx, bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", publicURL, bucket, objectName), nil
}

// Remove deletes an object previously returned by Upload. URLs from other
// stores are ignored.
func Remove(ctx context.Context, fileURL string) error {
	if minioClient == nil || fileURL == "" {
		return nil
	}
	prefix := fmt.Sprintf("%s/%s/", publicURL, bucket)
	if !strings.HasPrefix(fileURL, prefix) {
		return nil
	}
	objectName := strings.TrimPrefix(fileURL, prefix)
	return minioClient.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}
