package storage

import (
	"context"
	"fmt"
	"os"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps project media in a Supabase storage bucket.
type SupabaseStore struct {
	client    *storage_go.Client
	bucket    string
	urlExpiry int
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		client:    storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil),
		bucket:    bucket,
		urlExpiry: 7 * 24 * 3600,
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, key, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	upsert := true
	_, err = s.client.UploadFile(s.bucket, key, f, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	signed, err := s.client.CreateSignedUrl(s.bucket, key, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return signed.SignedURL, nil
}

func (s *SupabaseStore) Download(ctx context.Context, key, destPath string) error {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return writeFile(destPath, data)
}

func (s *SupabaseStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, keys); err != nil {
		return fmt.Errorf("remove %v: %w", keys, err)
	}
	return nil
}
