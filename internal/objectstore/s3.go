package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3ClientConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which "<bucket>/<key>" is publicly served.
	// Empty means Endpoint.
	PublicURL string
}

func NewS3Config(ctx context.Context, c S3ClientConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}
	if c.Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(c.Endpoint))
	}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

type S3Store struct {
	client    *s3.Client
	publicURL string
}

func NewS3Store(ctx context.Context, c S3ClientConfig) (*S3Store, error) {
	awsCfg, err := NewS3Config(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO and Supabase storage only speak path-style.
		o.UsePathStyle = c.Endpoint != ""
	})

	base := c.PublicURL
	if base == "" {
		base = c.Endpoint
	}
	return &S3Store{client: client, publicURL: strings.TrimRight(base, "/")}, nil
}

func (s *S3Store) FileExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Upload refuses to overwrite: stored paths are referenced by ledger rows.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, content []byte, contentType string) error {
	exists, err := s.FileExists(ctx, bucket, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s/%s", ErrObjectExists, bucket, key)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	log.Printf("INFO: Uploaded %s to bucket %s", key, bucket)
	return nil
}

func (s *S3Store) PublicURL(bucket, key string) string {
	return s.publicURL + "/" + bucket + "/" + key
}
