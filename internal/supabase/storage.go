package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// uploadFunc performs the object PUT; swapped out in tests.
type uploadFunc func(bucket, storagePath string, data io.Reader, opts storage.FileOptions) error

// StorageClient puts media into one public bucket, grouped by folder.
type StorageClient struct {
	upload  uploadFunc
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewStorageClient(c *Client) *StorageClient {
	client := c.Supabase.Storage
	return newStorageClient(func(bucket, storagePath string, data io.Reader, opts storage.FileOptions) error {
		_, err := client.UploadFile(bucket, storagePath, data, opts)
		return err
	}, c.Config.SupabaseURL, c.Config.SupabaseStorageBucket)
}

func newStorageClient(upload uploadFunc, supabaseURL, bucket string) *StorageClient {
	return &StorageClient{
		upload:  upload,
		bucket:  bucket,
		baseURL: baseURL(supabaseURL),
		now:     time.Now,
	}
}

// Upload stores data under folder/<unix-nanos>_<filename> and returns the
// object's public URL.
func (s *StorageClient) Upload(ctx context.Context, data []byte, filename, mimeType, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	storagePath := s.objectPath(folder, filename)

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	upsert := false
	err := s.upload(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &mimeType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) objectPath(folder, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%d_%s", strings.Trim(folder, "/"), s.now().UnixNano(), name)
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}
