package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// S3Config holds S3 connection parameters.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional: MinIO, localstack, etc.
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Client is the subset of an S3 client the adapter needs.  Wrap an
// aws-sdk-go-v2 client, or a test double, to satisfy it.
type S3Client interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, meta map[string]string) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
}

// S3 stores exports in an S3-compatible object store.  StorageKey.Bucket
// overrides the default bucket; StorageKey.Path is the object key.
type S3 struct {
	client S3Client
	bucket string
}

// NewS3 creates an S3 adapter.  client must not be nil.
func NewS3(client S3Client, defaultBucket string) (*S3, error) {
	if client == nil {
		return nil, apperrors.New(apperrors.CategoryStorage, "s3.init", fmt.Errorf("client must not be nil"))
	}
	return &S3{client: client, bucket: defaultBucket}, nil
}

func (s *S3) target(op string, key core.StorageKey) (string, error) {
	bucket := key.Bucket
	if bucket == "" {
		bucket = s.bucket
	}
	if bucket == "" || key.Path == "" {
		return "", apperrors.New(apperrors.CategoryStorage, op,
			fmt.Errorf("%w: bucket %q, key %q", apperrors.ErrEmptyInput, bucket, key.Path))
	}
	return bucket, nil
}

// Put uploads r, tagging the object with the content type of its extension.
func (s *S3) Put(ctx context.Context, key core.StorageKey, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.put", err)
	}
	bucket, err := s.target("s3.put", key)
	if err != nil {
		return err
	}
	meta := map[string]string{"Content-Type": contentType(key.Path)}
	if err := s.client.PutObject(ctx, bucket, key.Path, r, meta); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.put", err)
	}
	return nil
}

func (s *S3) Get(ctx context.Context, key core.StorageKey) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "s3.get", err)
	}
	bucket, err := s.target("s3.get", key)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.GetObject(ctx, bucket, key.Path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "s3.get", err)
	}
	return rc, nil
}

func (s *S3) Delete(ctx context.Context, key core.StorageKey) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.delete", err)
	}
	bucket, err := s.target("s3.delete", key)
	if err != nil {
		return err
	}
	if err := s.client.DeleteObject(ctx, bucket, key.Path); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.delete", err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, key core.StorageKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	bucket, err := s.target("s3.exists", key)
	if err != nil {
		return false, err
	}
	ok, err := s.client.HeadObject(ctx, bucket, key.Path)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	return ok, nil
}

func contentType(path string) string {
	switch utils.FormatForExt(utils.ExtOf(path)) {
	case utils.FormatTIFF:
		return "image/tiff"
	case utils.FormatPNG:
		return "image/png"
	case utils.FormatJPEG:
		return "image/jpeg"
	case utils.FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

var _ core.StorageAdapter = (*S3)(nil)
