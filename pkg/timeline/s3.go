package timeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store saves timeline snapshots to an S3 bucket.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := timeline.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "timelines/")
//	loc, err := recorder.Export(store, "checkout-regression")
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Store creates a store uploading under prefix in bucket.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		timeout: 30 * time.Second,
	}
}

// WithTimeout sets the per-upload timeout.
func (s *S3Store) WithTimeout(d time.Duration) *S3Store {
	s.timeout = d
	return s
}

// Save uploads the snapshot and returns its object key.
func (s *S3Store) Save(name string, data io.Reader) (string, error) {
	key := s.prefix + name + "-" + randomSuffix() + ".json"

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"snapshot-name": name,
			"export-time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("timeline: s3 upload: %w", err)
	}
	return key, nil
}
