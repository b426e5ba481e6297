package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/abroadwise/abroad-api/config"
	"github.com/abroadwise/abroad-api/model"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Store is the asset host surface the resource services depend on.
// Tests substitute a failing stub to exercise partial-failure handling.
type Store interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (model.Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// SpacesClient stores assets on an S3-compatible Spaces bucket. The object
// key doubles as the handle's public_id.
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesClient creates a client from the injected configuration
func NewSpacesClient(cfg *config.Config) (*SpacesClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
			"",
		),
		Endpoint:         aws.String(cfg.SpacesEndpoint),
		Region:           aws.String(cfg.SpacesRegion),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   cfg.SpacesBucket,
		endpoint: cfg.SpacesEndpoint,
		cdnURL:   cfg.SpacesCDNURL,
	}, nil
}

// Upload stores an object publicly and returns its handle
func (s *SpacesClient) Upload(ctx context.Context, key string, data io.Reader, contentType string) (model.Asset, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to upload file: %w", err)
	}

	return model.Asset{PublicID: key, URL: s.URL(key)}, nil
}

// Delete removes an object by its public id
func (s *SpacesClient) Delete(ctx context.Context, publicID string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for an object, preferring the CDN
func (s *SpacesClient) URL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// GenerateKey generates a unique object key under a prefix, keeping the
// original extension.
func GenerateKey(prefix, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%d_%s%s", prefix, time.Now().Unix(), uuid.New().String()[:8], ext)
}

// GetContentType maps an image/document filename to its MIME type
func GetContentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
