package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects      map[string]string
	bucketExists bool
	madeBucket   bool
	failPut      bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}}
}

func (f *fakeS3) FPutObject(_ context.Context, _, objectName, filePath string, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.failPut {
		return minio.UploadInfo{}, errors.New("put failed")
	}
	f.objects[objectName] = filePath
	return minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeS3) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, objectName)
	return nil
}

func (f *fakeS3) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeS3) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	f.madeBucket = true
	return nil
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	s3 := newFakeS3()
	m := New(s3, "filedrop")

	require.NoError(t, m.EnsureBucket(context.Background()))
	assert.True(t, s3.madeBucket)

	s3.madeBucket = false
	s3.bucketExists = true
	require.NoError(t, m.EnsureBucket(context.Background()))
	assert.False(t, s3.madeBucket)
}

func TestPutAndRemoveKeyByCode(t *testing.T) {
	s3 := newFakeS3()
	m := New(s3, "filedrop")

	require.NoError(t, m.Put(context.Background(), "ab3d.png", "cat.png", "/files/ab3d.png/cat.png"))
	assert.Equal(t, "/files/ab3d.png/cat.png", s3.objects["ab3d.png/cat.png"])

	require.NoError(t, m.Remove(context.Background(), "ab3d.png", "cat.png"))
	assert.Empty(t, s3.objects)
}

func TestPutSurfacesClientError(t *testing.T) {
	s3 := newFakeS3()
	s3.failPut = true
	m := New(s3, "filedrop")

	assert.Error(t, m.Put(context.Background(), "ab3d.png", "cat.png", "x"))
}

func TestNilMirrorIsDisabled(t *testing.T) {
	var m *Mirror
	assert.NoError(t, m.EnsureBucket(context.Background()))
	assert.NoError(t, m.Put(context.Background(), "a", "b", "c"))
	assert.NoError(t, m.Remove(context.Background(), "a", "b"))
}
