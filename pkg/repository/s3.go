package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// S3GetObjectAPI is the subset of the S3 client used by S3Source
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset CSV from an S3-compatible bucket
type S3Source struct {
	client S3GetObjectAPI
	bucket string
	key    string
}

var _ interfaces.TabularSource = (*S3Source)(nil)

// NewS3Source creates an S3 source. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Source(ctx context.Context, bucket, key, region, endpoint string) (*S3Source, error) {
	if bucket == "" || key == "" {
		return nil, goerr.New("S3 bucket and key are required",
			goerr.V("bucket", bucket),
			goerr.V("key", key))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3SourceWithClient(s3.NewFromConfig(cfg, s3opts...), bucket, key), nil
}

// NewS3SourceWithClient creates an S3 source using an existing client
func NewS3SourceWithClient(client S3GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// ReadRows downloads and parses the object
func (s *S3Source) ReadRows(ctx context.Context) ([]model.Row, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get S3 object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", s.key))
	}
	defer out.Body.Close()

	rows, err := ReadCSV(out.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse S3 object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", s.key))
	}

	ctxlog.From(ctx).Debug("S3 rows read", "bucket", s.bucket, "key", s.key, "rows", len(rows))
	return rows, nil
}

// Close does nothing for S3 sources
func (s *S3Source) Close() error {
	return nil
}
