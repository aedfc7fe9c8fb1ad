package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	pkglogger "github.com/openconf/editorial-backend/pkg/logger"
)

// Client wraps an S3-compatible object store holding revision files and
// event attachments, keyed by their storage id
type Client struct {
	client   *s3.Client
	bucket   string
	basePath string
}

// Config holds S3-compatible storage configuration
type Config struct {
	Endpoint        string // e.g. https://xxx.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	BasePath        string // prefix for all objects (e.g. "editing/")
	ForcePathStyle  bool   // true for MinIO/R2
}

// NewClient creates a new S3-compatible storage client
func NewClient(cfg Config) (*Client, error) {
	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	pkglogger.Get().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Msg("object storage client initialized")

	return &Client{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: cfg.BasePath,
	}, nil
}

// ObjectKey builds the object key for a stored file
func (c *Client) ObjectKey(storageID string) string {
	return c.basePath + storageID
}

// Upload stores a file under its storage id
func (c *Client) Upload(ctx context.Context, storageID string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.ObjectKey(storageID)),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}
	return nil
}

// Download fetches a stored file; the caller must close the reader
func (c *Client) Download(ctx context.Context, storageID string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.ObjectKey(storageID)),
	}
	out, err := c.client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("storage download failed: %w", err)
	}
	return out.Body, nil
}

// Delete removes a stored file
func (c *Client) Delete(ctx context.Context, storageID string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.ObjectKey(storageID)),
	}
	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("storage delete failed: %w", err)
	}
	return nil
}

// PresignDownload generates a pre-signed URL for direct download
func (c *Client) PresignDownload(ctx context.Context, storageID string, expiry time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.client)

	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.ObjectKey(storageID)),
	}
	result, err := presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return result.URL, nil
}
