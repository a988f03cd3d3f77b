package filestorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "profile_photos/students", "Me.PNG", "image/png",
		strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/profile_photos/students/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), url))
}

func TestLocalStorage_DefaultURLPrefix(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "", "a.jpg", "image/jpeg", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
}

func TestLocalStorage_DeleteRejectsForeignURLs(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, url := range []string{"/elsewhere/a.png", "/uploads/../etc/passwd", "/uploads/"} {
		assert.ErrorIs(t, store.Delete(context.Background(), url), ErrInvalidPath, url)
	}
}

func TestObjectKeySanitisesDirectory(t *testing.T) {
	key := objectKey("../../secret", "photo.JPG")
	assert.True(t, strings.HasPrefix(key, "secret/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
}

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_SaveAndDelete(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Storage(fake, S3Config{Endpoint: "minio:9000", Bucket: "sims"})

	url, err := store.Save(context.Background(), "profile_photos/teachers", "t.png", "image/png",
		strings.NewReader("img"), 3)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://minio:9000/sims/profile_photos/teachers/"), url)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "sims", aws.StringValue(fake.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.StringValue(fake.puts[0].ContentType))
	body, err := io.ReadAll(fake.puts[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "img", string(body))

	require.NoError(t, store.Delete(context.Background(), url))
	require.Len(t, fake.deletes, 1)
	assert.Equal(t, strings.TrimPrefix(url, "http://minio:9000/sims/"), aws.StringValue(fake.deletes[0].Key))
}

func TestS3Storage_PublicURL(t *testing.T) {
	store := newS3Storage(&fakeS3{}, S3Config{Bucket: "sims", PublicURL: "https://cdn.sims.edu/"})
	url, err := store.Save(context.Background(), "p", "x.webp", "image/webp", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.sims.edu/p/"), url)
}
