// Package storage uploads local temp files to a remote asset store and removes
// the local copy afterwards.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyResult is returned when a store accepted an upload but gave no URL.
var ErrEmptyResult = errors.New("upload returned no url")

// UploadResult describes a stored asset.
type UploadResult struct {
	URL      string
	PublicID string
}

// Config selects and configures an uploader.
type Config struct {
	Driver string // "cloudinary" or "s3"

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Uploader stores a local file remotely and removes the local copy.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*UploadResult, error)
}

// New builds the uploader named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Uploader, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "cloudinary":
		return NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	case "s3":
		return NewS3Uploader(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}

// removeLocal deletes the temp file once the upload attempt is over.
func removeLocal(localPath string) {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("failed to remove temp file", zap.String("path", localPath), zap.Error(err))
	}
}
