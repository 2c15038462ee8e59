package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/KYoiRyi/coLAN/internal/configs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
)

// s3Store stores blobs in an S3-compatible bucket using path-style addressing,
// so self-hosted endpoints (MinIO and friends) work unchanged.
type s3Store struct {
	bucket   string
	endpoint string
	client   *s3.Client
	uploader *manager.Uploader
}

func newS3Store(cfg *configs.AppConfig) (*s3Store, error) {
	sdkCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		bucket:   cfg.S3BucketName,
		endpoint: strings.TrimRight(cfg.S3Endpoint, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		logx.Error(err, "S3 upload failed", "key", key)
		return errors.New("failed to upload blob to S3")
	}
	return nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		logx.Error(err, "S3 delete failed", "key", key)
		return errors.New("failed to delete blob from S3")
	}
	return nil
}

func (s *s3Store) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
