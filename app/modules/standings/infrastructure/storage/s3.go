// Package standingsstorage archives exported workbooks in S3-compatible
// object storage.
package standingsstorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config describes the bucket snapshots go to. Endpoint is empty for AWS
// itself and set for R2, MinIO and other compatible stores.
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Enabled reports whether enough is configured to upload.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads snapshots with PutObject.
type S3Store struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
}

// NewS3Store builds a store from static credentials.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if !cfg.Enabled() {
		return nil, errors.New("invalid object storage configuration: bucket and credentials are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Store(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newS3Store(client putObjectAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

// Upload stores body under key and returns its public URL, or the s3:// URI
// when no public base URL is configured.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object (key: %s): %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL joins key onto the public base URL.
func (s *S3Store) PublicURL(key string) string {
	if s.publicBaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, strings.TrimPrefix(key, "/"))
	}
	base, err := url.Parse(s.publicBaseURL)
	if err != nil {
		return ""
	}
	return base.JoinPath(strings.TrimPrefix(key, "/")).String()
}
