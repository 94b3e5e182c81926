package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/campushq/event-portal-api/config"
)

// Client handles object storage for uploaded files (attendance check images).
// Works against any S3-compatible endpoint.
type Client struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// NewClient creates a storage client from the loaded configuration. Returns
// nil without error when storage is not configured; callers treat a nil
// client as "uploads disabled".
func NewClient(env *config.EnvironmentVariable) (*Client, error) {
	if env.SPACES_ACCESS_KEY == "" || env.SPACES_BUCKET == "" {
		return nil, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			env.SPACES_ACCESS_KEY,
			env.SPACES_SECRET_KEY,
			"",
		),
		Endpoint:         aws.String(env.SPACES_ENDPOINT),
		Region:           aws.String(env.SPACES_REGION),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   env.SPACES_BUCKET,
		endpoint: env.SPACES_ENDPOINT,
	}, nil
}

// UploadCheckImage stores an attendance check image and returns its public URL
func (c *Client) UploadCheckImage(ctx context.Context, eventID, userID uint, filename string, data io.Reader) (string, error) {
	key := fmt.Sprintf("check-images/%d/%d_%d%s", eventID, userID, time.Now().Unix(), filepath.Ext(filename))

	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(imageContentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return c.FileURL(key), nil
}

// DeleteFile removes an object by key
func (c *Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileURL returns the public URL for a stored object
func (c *Client) FileURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", c.bucket, c.endpoint, key)
}

// IsAllowedImage checks the filename extension against the accepted image types
func IsAllowedImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func imageContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
