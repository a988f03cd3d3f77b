package filestorage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config holds the bucket settings. PublicURL is the prefix handed out for
// stored objects; without it URLs are <endpoint>/<bucket>.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// S3Storage stores files in an S3-compatible bucket
type S3Storage struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

// NewS3Storage opens a session against the configured endpoint
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return newS3Storage(s3.New(sess), cfg), nil
}

func newS3Storage(client s3iface.S3API, cfg S3Config) *S3Storage {
	baseURL := cfg.PublicURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
		}
		if !strings.Contains(endpoint, "://") {
			endpoint = scheme + "://" + endpoint
		}
		baseURL = strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save uploads r as a new object under dir
func (s *S3Storage) Save(ctx context.Context, dir, filename, contentType string, r io.ReadSeeker, size int64) (string, error) {
	key := objectKey(dir, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind url
func (s *S3Storage) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	key, err := keyFromURL(url, s.baseURL)
	if err != nil {
		return fmt.Errorf("%w: %s", err, url)
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
