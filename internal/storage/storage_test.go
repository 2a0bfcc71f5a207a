package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ellsondrew-png/inventory-system-tml/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media")
	ctx := context.Background()

	key, err := s.Put(ctx, "photo.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "/media/"+key, s.URL(key))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsUnknownExtension(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/media/")
	_, err := s.Put(context.Background(), "script.sh", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestLocalStoreDeleteStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media/")
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), s.path("../../etc/passwd"))
}

type fakeS3 struct {
	puts    map[string]string
	types   map[string]string
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePutAndDelete(t *testing.T) {
	fake := &fakeS3{puts: map[string]string{}, types: map[string]string{}}
	s := newS3Store(fake, config.StorageConfig{S3Bucket: "imgs", AWSRegion: "eu-west-1"})
	ctx := context.Background()

	key, err := s.Put(ctx, "a.jpg", "", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", fake.puts[key])
	assert.Equal(t, "image/jpeg", fake.types[key])
	assert.Equal(t, "https://imgs.s3.eu-west-1.amazonaws.com/"+key, s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	assert.Equal(t, []string{key}, fake.deleted)

	local := newS3Store(fake, config.StorageConfig{S3Bucket: "imgs", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/imgs/k", local.URL("k"))
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Backend: "local", MediaRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
	_, err = New(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
