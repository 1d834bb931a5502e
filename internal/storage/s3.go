// Package storage persists profile images in S3-compatible object
// storage. Any S3 API works; a BaseEndpoint override points the client
// at MinIO or another compatible store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/talentsift/auth-service/internal/config"
)

// AvatarStore uploads account profile images and returns their public
// object URLs.
type AvatarStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type s3AvatarStore struct {
	client *s3.Client
	bucket string
	// publicBase is the URL prefix objects are served from.
	publicBase string
}

func NewS3AvatarStore(ctx context.Context, cfg config.S3Config) (AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.BaseEndpoint != "" {
		publicBase = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.BaseEndpoint, "/"), cfg.Bucket)
	}

	return &s3AvatarStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: publicBase,
	}, nil
}

func (s *s3AvatarStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", s.publicBase, key), nil
}
