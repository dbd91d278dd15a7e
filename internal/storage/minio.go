package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps item photos in an object-storage bucket. Keys are
// namespaced per user so one user can never address another's photos.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

// NewPhotoStore creates the MinIO client and ensures the bucket exists.
func NewPhotoStore(cfg *MinIOConfig) (*PhotoStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &PhotoStore{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// tolerate a bucket that already exists
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func photoKey(userID, itemID string) string {
	return fmt.Sprintf("%s/%s", userID, itemID)
}

// UploadItemPhoto stores the photo for one pantry item, replacing any
// previous one.
func (s *PhotoStore) UploadItemPhoto(ctx context.Context, userID, itemID string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, photoKey(userID, itemID), reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// ItemPhoto returns a ReadCloser for the stored photo.
func (s *PhotoStore) ItemPhoto(ctx context.Context, userID, itemID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, photoKey(userID, itemID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// stat up front so a missing object errors here, not on first read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// ItemPhotoURL returns a presigned GET URL valid for the given duration,
// for direct display in the app without proxying bytes through the API.
func (s *PhotoStore) ItemPhotoURL(ctx context.Context, userID, itemID string, expires time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, photoKey(userID, itemID), expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// DeleteItemPhoto removes the photo; deleting a photo that never existed is
// not an error.
func (s *PhotoStore) DeleteItemPhoto(ctx context.Context, userID, itemID string) error {
	return s.client.RemoveObject(ctx, s.bucket, photoKey(userID, itemID), minio.RemoveObjectOptions{})
}
