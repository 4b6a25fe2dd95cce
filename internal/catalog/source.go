package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Source is where the bar dataset is read from.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return s.Path
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// S3Client defines the S3 operations the dataset source needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset from an S3 object.
type S3Source struct {
	client S3Client
	bucket string
	key    string
}

func NewS3Source(client S3Client, bucket, key string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (s *S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object from S3: %w", err)
	}
	if result.Body == nil {
		return nil, fmt.Errorf("empty S3 object body")
	}

	log.Debug().Str("bucket", s.bucket).Str("key", s.key).Msg("Fetched bar dataset from S3")
	return result.Body, nil
}

// NewS3Client creates an S3 client. A non-empty endpoint selects a local
// S3-compatible server with path-style addressing.
func NewS3Client(ctx context.Context, endpoint string) (*s3.Client, error) {
	if endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local S3 endpoint")
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion("us-east-1"),
			awsconfig.WithClientLogMode(aws.LogRetries),
		)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}
