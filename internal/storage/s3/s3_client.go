// Package s3 stores vault files and card images in S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"medvault/internal/config"
	"medvault/internal/port"
)

type vaultStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	// maxDownload caps reads so a corrupt object cannot exhaust memory.
	maxDownload int64
}

// NewS3Client creates a new S3-backed ObjectStorage implementation. MinIO and
// other compatible stores are reached through cfg.Endpoint with path-style URLs.
func NewS3Client(cfg *config.S3Config) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	maxMB := cfg.MaxFileSizeMB
	if maxMB <= 0 {
		maxMB = 50
	}
	return &vaultStore{
		client:      client,
		presigner:   s3.NewPresignClient(client),
		uploader:    manager.NewUploader(client),
		maxDownload: maxMB << 20,
	}, nil
}

// Upload stores an object encrypted at rest; vault objects hold health data.
func (c *vaultStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	result, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(input.Bucket),
		Key:                  aws.String(input.Key),
		Body:                 input.Body,
		ContentType:          aws.String(input.ContentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		CacheControl:         aws.String("private, no-store"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", input.Key, err)
	}

	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

func (c *vaultStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(io.LimitReader(result.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("s3 download read %s: %w", key, err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, fmt.Errorf("s3 download %s: object exceeds %d bytes", key, c.maxDownload)
	}
	return data, nil
}

func (c *vaultStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (c *vaultStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	result, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		ResponseCacheControl: aws.String("private, no-store"),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return result.URL, nil
}
