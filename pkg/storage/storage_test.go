package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vidtube/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Driver: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown upload driver "ftp"`)
}

func TestNew_S3RequiresBucket(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Driver: "s3", S3Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3 bucket is required")
}

func TestCloudinaryUploader_EmptyPath(t *testing.T) {
	u, err := storage.NewCloudinaryUploader("demo", "key", "secret", "tests")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "")
	assert.Error(t, err)
}

func TestS3Uploader_MissingFileIsRemovedAndFails(t *testing.T) {
	u, err := storage.NewS3Uploader(context.Background(), storage.S3Config{
		Region:    "us-east-1",
		Bucket:    "avatars",
		Endpoint:  "http://127.0.0.1:1",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestS3Uploader_RemovesLocalFileOnFailure(t *testing.T) {
	u, err := storage.NewS3Uploader(context.Background(), storage.S3Config{
		Region:    "us-east-1",
		Bucket:    "avatars",
		Endpoint:  "http://127.0.0.1:1",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.Upload(ctx, path)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after a failed upload")
}
