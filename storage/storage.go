package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage interface for binary artifact operations
type Storage interface {
	// Upload stores the data under the given object name and returns the
	// storage path of the stored object.
	Upload(ctx context.Context, name string, data io.Reader) (string, error)

	// Download retrieves an object by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes an object by storage path
	Delete(ctx context.Context, storagePath string) error

	// SignedURL returns a time-limited, credential-free read URL for the
	// object at storagePath.
	SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv creates a storage instance from environment variables
func NewStorageFromEnv() (Storage, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "local" // Default to local for development
	}

	switch StorageType(storageType) {
	case StorageTypeLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/files" // Default local storage path
		}
		return NewLocalStorage(localPath)

	case StorageTypeS3:
		cfg := StorageConfig{
			Type:     StorageTypeS3,
			S3Bucket: os.Getenv("AWS_S3_BUCKET"),
			S3Region: os.Getenv("AWS_REGION"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// ObjectName builds a collision-free object name for an uploaded file:
// "<owner|anonymous>-<nanos>-<sanitized filename>".
func ObjectName(ownerID *uuid.UUID, filename string) string {
	owner := "anonymous"
	if ownerID != nil {
		owner = ownerID.String()
	}
	return fmt.Sprintf("%s-%d-%s", owner, time.Now().UnixNano(), sanitizeFilename(filename))
}

// LetterObjectName builds the object name for a rendered appeal letter.
// The timestamp keeps re-renders of the same appeal from colliding.
func LetterObjectName(appealID uuid.UUID) string {
	return fmt.Sprintf("appeal-%s-%d.pdf", appealID, time.Now().UnixNano())
}

func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, " ", "_")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	return filename
}
