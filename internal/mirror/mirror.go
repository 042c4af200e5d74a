// Package mirror replicates object content to an S3-compatible bucket as a
// best-effort off-site copy. A nil *Mirror is valid and disabled.
package mirror

import (
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3Client captures the slice of minio.Client the mirror uses.
type s3Client interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// Mirror copies object content files into a bucket keyed by <code>/<name>.
type Mirror struct {
	client s3Client
	bucket string
}

// NewClient dials an S3-compatible endpoint.
func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

// New wraps a client and target bucket.
func New(client s3Client, bucket string) *Mirror {
	return &Mirror{client: client, bucket: bucket}
}

// EnsureBucket creates the target bucket when it does not exist yet.
func (m *Mirror) EnsureBucket(ctx context.Context) error {
	if m == nil {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check mirror bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create mirror bucket: %w", err)
	}
	return nil
}

// Put uploads the file at filePath under <code>/<name>.
func (m *Mirror) Put(ctx context.Context, code, name, filePath string) error {
	if m == nil {
		return nil
	}
	_, err := m.client.FPutObject(ctx, m.bucket, path.Join(code, name), filePath, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("mirror put %s: %w", code, err)
	}
	return nil
}

// Remove drops the mirrored copy of an object's content file.
func (m *Mirror) Remove(ctx context.Context, code, name string) error {
	if m == nil {
		return nil
	}
	err := m.client.RemoveObject(ctx, m.bucket, path.Join(code, name), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("mirror remove %s: %w", code, err)
	}
	return nil
}
