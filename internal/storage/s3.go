// Package storage uploads export artifacts to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Uploader struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3Uploader builds a client from static credentials when given, otherwise
// from the default AWS credential chain.
func NewS3Uploader(cfg *config.S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg := &aws.Config{Region: aws.String(region)}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &S3Uploader{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Upload stores body under prefix/name and returns the object key.
func (u *S3Uploader) Upload(ctx context.Context, name string, body io.ReadSeeker) (string, error) {
	key := name
	if u.prefix != "" {
		key = path.Join(u.prefix, name)
	}

	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/jsonl"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
