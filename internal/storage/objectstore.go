// Package storage implements media upload to an S3-compatible object store:
// per-file validation, collision-resistant naming, concurrent uploads and
// aggregation of per-file outcomes into a single batch result.
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
)

// ObjectStore is the narrow contract this subsystem needs from object
// storage. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Put stores data under bucket/key with the given content type.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// PublicURL resolves the durable public address of a stored object.
	PublicURL(bucket, key string) string
}

// S3Config carries the settings needed to reach an S3-compatible backend
// (AWS S3 proper or MinIO with a base-endpoint override).
type S3Config struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
}

// S3Store implements ObjectStore over the AWS SDK v2 client.
type S3Store struct {
	client       *s3.Client
	baseEndpoint string
}

// NewS3Store builds an S3 client with static credentials and an optional
// base-endpoint override, MinIO-style.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, baseEndpoint: strings.TrimSuffix(cfg.BaseEndpoint, "/")}, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the path-style address of an object. With a base-endpoint
// override it points at the same backend the uploads went to; without one it
// falls back to the bucket's virtual host on AWS.
func (s *S3Store) PublicURL(bucket, key string) string {
	if s.baseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.baseEndpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}
