package config

import (
	"context"
	"fmt"

	"github.com/marmos91/shapeview/pkg/store"
	fsstore "github.com/marmos91/shapeview/pkg/store/fs"
	"github.com/marmos91/shapeview/pkg/store/httpstore"
	"github.com/marmos91/shapeview/pkg/store/memory"
	s3store "github.com/marmos91/shapeview/pkg/store/s3"
)

// CreateStore builds the object store selected by cfg.Type.
func CreateStore(ctx context.Context, cfg StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case StorageFilesystem, "":
		return createFilesystemStore(cfg.Filesystem)
	case StorageS3:
		return createS3Store(ctx, cfg.S3)
	case StorageHTTP:
		return createHTTPStore(cfg.HTTP)
	case StorageMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

func createFilesystemStore(cfg FilesystemStorageConfig) (store.Store, error) {
	s, err := fsstore.New(fsstore.Config{BasePath: cfg.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem store: %w", err)
	}
	return s, nil
}

func createS3Store(ctx context.Context, cfg S3StorageConfig) (store.Store, error) {
	s, err := s3store.NewFromConfig(ctx, s3store.Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		KeyPrefix:       cfg.KeyPrefix,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		ForcePathStyle:  cfg.ForcePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 store: %w", err)
	}
	return s, nil
}

func createHTTPStore(cfg HTTPStorageConfig) (store.Store, error) {
	s, err := httpstore.New(httpstore.Config{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HealthPath: cfg.HealthPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http store: %w", err)
	}
	return s, nil
}
