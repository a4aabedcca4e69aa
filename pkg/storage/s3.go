package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectStorage stores product images and returns their public URL.
type ObjectStorage interface {
	UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type S3Options struct {
	Endpoint      string // empty = AWS default endpoint
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicURL     string
	UploadTimeout time.Duration
}

type S3Storage struct {
	client        *s3.Client
	bucketName    string
	publicURL     string
	uploadTimeout time.Duration
}

// NewS3Storage builds a client for AWS S3 or any S3-compatible service
// (MinIO, R2) when an endpoint is configured.
func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	timeout := opts.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &S3Storage{
		client:        client,
		bucketName:    opts.Bucket,
		publicURL:     strings.TrimSuffix(opts.PublicURL, "/"),
		uploadTimeout: timeout,
	}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	}
	return ".bin"
}

// UploadBuffer uploads a byte slice as a file (used for processed images)
func (s *S3Storage) UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("products/%s%s", uuid.NewString(), extensionFor(contentType))

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// DeleteFile deletes an object by its public URL. URLs outside the
// configured public URL are refused.
func (s *S3Storage) DeleteFile(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Storage) keyFromURL(fileURL string) (string, error) {
	if s.publicURL == "" || !strings.HasPrefix(fileURL, s.publicURL+"/") {
		return "", fmt.Errorf("invalid file URL: domain mismatch")
	}
	key := strings.TrimPrefix(fileURL, s.publicURL+"/")
	if key == "" {
		return "", fmt.Errorf("invalid file key derived from URL")
	}
	return key, nil
}
