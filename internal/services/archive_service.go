package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/config"
)

// ArchiveService pushes generated reports to S3-compatible object storage
// (AWS S3 or Cloudflare R2). Disabled when no credentials are configured;
// callers check Enabled() and skip.
type ArchiveService struct {
	client *s3.Client
	bucket string
}

func NewArchiveService(ctx context.Context, cfg *config.Config) (*ArchiveService, error) {
	if !cfg.Archive.Enabled {
		return &ArchiveService{}, nil
	}
	if cfg.Archive.AccessKey == "" || cfg.Archive.SecretKey == "" || cfg.Archive.Bucket == "" {
		return nil, fmt.Errorf("archive enabled but credentials or bucket missing")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
		}
	})

	log.Printf("[Archive] object storage enabled, bucket %s", cfg.Archive.Bucket)
	return &ArchiveService{client: client, bucket: cfg.Archive.Bucket}, nil
}

func (a *ArchiveService) Enabled() bool {
	return a != nil && a.client != nil
}

// Upload writes one object to the archive bucket
func (a *ArchiveService) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if !a.Enabled() {
		return apperrors.Upstream("object storage is not configured")
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperrors.Upstream(fmt.Sprintf("upload %s: %v", key, err))
	}
	return nil
}

// List returns the keys under a prefix, for the archive browse endpoint
func (a *ArchiveService) List(ctx context.Context, prefix string) ([]string, error) {
	if !a.Enabled() {
		return nil, apperrors.Upstream("object storage is not configured")
	}

	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("list %s: %v", prefix, err))
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}
