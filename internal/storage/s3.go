package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"nestaway/internal/config"
	"nestaway/internal/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Replaced in tests.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage writes objects to an S3 compatible bucket (AWS or MinIO).
type S3Storage struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// NewS3Storage configures the client. Static credentials are used when
// S3_ACCESS_KEY is set; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: s3PublicURL(cfg),
	}, nil
}

func s3PublicURL(cfg *config.Config) string {
	if cfg.S3PublicURL != "" {
		return strings.TrimRight(cfg.S3PublicURL, "/")
	}
	if cfg.S3BaseEndpoint != "" {
		return strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	span, ctx := observability.StartClientSpan(ctx, "s3", "PutObject")
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		span.SetError(err)
		observability.ImageUploads.WithLabelValues(observability.ResultError).Inc()
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}
	observability.ImageUploads.WithLabelValues(observability.ResultOK).Inc()
	return Object{URL: s.publicURL + "/" + key, ID: key}, nil
}
