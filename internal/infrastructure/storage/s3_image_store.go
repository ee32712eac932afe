// Package storage resolves and stores product images in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ appcatalog.ImageURLResolver = (*S3ImageStore)(nil)

// ErrEmptyKey is returned for operations on an empty object key
var ErrEmptyKey = errors.New("storage key is required")

// S3ImageStore serves product images from any S3-compatible backend
// (AWS S3, MinIO, RustFS). Browsers receive short-lived presigned GET URLs.
type S3ImageStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ImageStoreOption is a functional option for configuring S3ImageStore
type S3ImageStoreOption func(*S3ImageStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ImageStoreOption {
	return func(s *S3ImageStore) {
		s.logger = logger
	}
}

// WithPresignExpiration sets how long resolved image URLs stay valid
func WithPresignExpiration(d time.Duration) S3ImageStoreOption {
	return func(s *S3ImageStore) {
		s.presignExpiration = d
	}
}

// NewS3ImageStore creates a new S3ImageStore from configuration
func NewS3ImageStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ImageStoreOption) (*S3ImageStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	store := &S3ImageStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.presignExpiration <= 0 {
		store.presignExpiration = 15 * time.Minute
	}

	return store, nil
}

func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return endpoint, nil
}

// ResolveImageURL returns a presigned GET URL for key. Signing happens
// locally and does not contact the storage backend.
func (s *S3ImageStore) ResolveImageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign image URL: %w", err)
	}
	return req.URL, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ImageStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectExists checks if an image object exists
func (s *S3ImageStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Some S3-compatible servers only report the code in the message
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Upload stores an image under key. Used by the seed command; the API does
// not accept uploads.
func (s *S3ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3ImageStore) Bucket() string {
	return s.bucket
}
