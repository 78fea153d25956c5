package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// MenuImageStore keeps menu item photos in an S3-compatible bucket
type MenuImageStore interface {
	Put(ctx context.Context, orgID, itemID string, body io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

type ImageStoreOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	// URLExpiry bounds the lifetime of signed image links; S3 caps it at seven days
	URLExpiry time.Duration
}

const (
	defaultImageRegion    = "us-east-1"
	maxImageURLExpiry     = 7 * 24 * time.Hour
	menuImageCacheControl = "public, max-age=86400"
)

var menuImageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MenuImageExtension reports the file extension stored for an accepted image type
func MenuImageExtension(contentType string) (string, bool) {
	ext, ok := menuImageExtensions[contentType]
	return ext, ok
}

// menuImageKey places every tenant's images under its own prefix
func menuImageKey(orgID, itemID, ext string) string {
	return fmt.Sprintf("%s/%s%s", orgID, itemID, ext)
}

type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
	logger    *logrus.Entry
}

func NewMinioImageStore(opts ImageStoreOptions, logger *logrus.Logger) (*MinioImageStore, error) {
	if opts.Bucket == "" {
		return nil, errors.New("menu image bucket is not set")
	}
	region := opts.Region
	if region == "" {
		region = defaultImageRegion
	}
	expiry := opts.URLExpiry
	if expiry <= 0 || expiry > maxImageURLExpiry {
		expiry = maxImageURLExpiry
	}

	// a fixed region skips the bucket location lookup before every signed request
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return &MinioImageStore{
		client:    client,
		bucket:    opts.Bucket,
		urlExpiry: expiry,
		logger:    logger.WithFields(logrus.Fields{"component": "menu_image_store", "bucket": opts.Bucket}),
	}, nil
}

// EnsureBucket creates the image bucket on first start
func (s *MinioImageStore) EnsureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if found {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// another replica won the race
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created menu image bucket")
	return nil
}

func (s *MinioImageStore) Put(ctx context.Context, orgID, itemID string, body io.Reader, size int64, contentType string) (string, error) {
	ext, ok := MenuImageExtension(contentType)
	if !ok {
		return "", fmt.Errorf("unsupported menu image type %q", contentType)
	}
	key := menuImageKey(orgID, itemID, ext)

	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: menuImageCacheControl,
		UserMetadata: map[string]string{
			"organization-id": orgID,
			"menu-item-id":    itemID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to store menu image %s: %w", key, err)
	}
	s.logger.WithFields(logrus.Fields{"object": key, "size": info.Size}).Debug("menu image stored")
	return key, nil
}

func (s *MinioImageStore) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to sign menu image %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *MinioImageStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove menu image %s: %w", key, err)
	}
	return nil
}
