package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider is the S3-compatible storage vendor
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
	// ProviderCustom targets any endpoint speaking the S3 API (MinIO, R2, ...)
	ProviderCustom Provider = "custom"
)

// wasabiEndpoints maps regions to Wasabi endpoints
var wasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
}

type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint overrides the provider's default host, e.g. "http://localhost:9000"
	Endpoint string
}

// Configured reports whether enough settings are present to build a client.
func (c Config) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// endpoint returns the base URL for path-style providers, or "" for AWS virtual hosts.
func (c Config) endpoint() (string, error) {
	if c.Endpoint != "" {
		if !strings.Contains(c.Endpoint, "://") {
			return "https://" + c.Endpoint, nil
		}
		return c.Endpoint, nil
	}
	switch c.Provider {
	case ProviderWasabi:
		if host, ok := wasabiEndpoints[c.Region]; ok {
			return "https://" + host, nil
		}
		return "", fmt.Errorf("unknown Wasabi region: %s", c.Region)
	case ProviderCustom:
		return "", errors.New("custom storage provider requires S3_ENDPOINT")
	}
	return "", nil
}

// S3Storage uploads résumé files to an S3-compatible bucket.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	endpoint, err := cfg.endpoint()
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	var baseURL string
	if endpoint != "" {
		// Non-AWS providers need path-style addressing
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		baseURL = strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	} else {
		client = s3.NewFromConfig(awsCfg)
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL builds the public URL of key.
func (s *S3Storage) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// Ping checks the bucket is reachable with the configured credentials.
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.bucket, err)
	}
	return nil
}
