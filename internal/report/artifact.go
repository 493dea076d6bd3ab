package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stacklift/stacklift/internal/config"
)

// WriteFile renders the report as text and writes it under dir. The file
// name carries stack, phase, and timestamp so repeated runs never clobber
// each other. It returns the written path.
func WriteFile(r *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.txt", r.Stack, r.Phase, r.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(RenderText(r)), 0o640); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// s3API is the subset of the S3 client used for report upload.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader pushes rendered reports to an S3-compatible bucket.
type Uploader struct {
	client s3API
	bucket string
}

// NewUploader builds an uploader from the report configuration. Custom
// endpoints (non-AWS object storage) use path-style addressing and static
// credentials.
func NewUploader(ctx context.Context, cfg config.ReportConfig) (*Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("no report bucket configured")
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{client: client, bucket: cfg.S3Bucket}, nil
}

// NewUploaderWithClient creates an uploader around an existing client
// (useful for testing).
func NewUploaderWithClient(client s3API, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// Upload writes the rendered report under reports/{stack}/{file}.
func (u *Uploader) Upload(ctx context.Context, r *Report) (string, error) {
	key := fmt.Sprintf("reports/%s/%s-%s-%s.txt",
		r.Stack, r.Stack, r.Phase, r.GeneratedAt.Format("20060102-150405"))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(RenderText(r))),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return key, nil
}
