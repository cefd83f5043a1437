package supabase

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// StorageClient stores chat attachments in one bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(c *Client, bucket string) *StorageClient {
	return &StorageClient{
		client:  c.Supabase.Storage,
		bucket:  bucket,
		baseURL: c.baseURL,
	}
}

// AttachmentPath returns attachments/{id}/{filename}.
func AttachmentPath(id uuid.UUID, filename string) string {
	return fmt.Sprintf("attachments/%s/%s", id.String(), url.PathEscape(filename))
}

func (s *StorageClient) UploadFile(storagePath, contentType string, data []byte) (string, error) {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DownloadFile(storagePath string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
