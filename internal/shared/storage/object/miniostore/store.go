package miniostore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/util"
)

// Options configures the MinIO connection.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Store implements ObjectStore on an S3-compatible MinIO server.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to MinIO and makes sure the bucket exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{client: cli, bucket: opts.Bucket, prefix: object.NormalizePrefix(opts.Prefix)}
	if err := s.ensureBucket(ctx, opts.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Provider() string { return "minio" }

// Save streams the reader to the bucket under the owner's namespace.
func (s *Store) Save(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (string, int64, error) {
	storageKey, err := util.ObjectKey(ownerID, fileName)
	if err != nil {
		return "", 0, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := object.JoinKey(s.prefix, storageKey)
	info, err := s.client.PutObject(ctx, s.bucket, objectKey, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", 0, fmt.Errorf("minio put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return storageKey, info.Size, nil
}

// Open fetches a stored object. A missing key yields object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	objectKey := object.JoinKey(s.prefix, storageKey)
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(storageKey, err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, translateError(storageKey, err)
	}
	return obj, nil
}

func translateError(storageKey string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", object.ErrNotFound, storageKey)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("minio get object key=%s: %w", storageKey, err)
}

var _ object.ObjectStore = (*Store)(nil)
