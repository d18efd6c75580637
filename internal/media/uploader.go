package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Uploader stores proof-of-delivery media and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, orderCode, contentType string, data []byte) (string, error)
}

// s3Uploader implements Uploader against AWS S3.
type s3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewS3Uploader creates a new S3-backed media uploader. Uploads are bounded by
// the given timeout independently of the caller's context.
func NewS3Uploader(ctx context.Context, bucket, region, prefix string, timeout time.Duration, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "s3-media-uploader").Logger()

	// Load AWS configuration
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 uploader initialised")

	return &s3Uploader{
		client:  client,
		bucket:  bucket,
		region:  region,
		prefix:  prefix,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Upload stores the media bytes under a key derived from the order code and
// returns the public object URL.
func (u *s3Uploader) Upload(ctx context.Context, orderCode, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := fmt.Sprintf("%s%s/%s", u.prefix, orderCode, uuid.New().String())

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", key).
			Msg("failed to upload media to S3")
		return "", fmt.Errorf("failed to upload media to S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)

	u.logger.Info().
		Str("bucket", u.bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("media uploaded")

	return url, nil
}
