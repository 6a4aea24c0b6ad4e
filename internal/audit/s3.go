package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Putter is the single S3 operation this store uses; narrowed for tests.
type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store appends one object per batch under audit/<date>/<batch-id>.
// Object storage gives append-only semantics for free: batches are never
// overwritten because every batch ID is unique.
type S3Store struct {
	client s3Putter
	bucket string
}

func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) AppendBatch(ctx context.Context, batch Batch) error {
	key := fmt.Sprintf("audit/%s/%s", batch.FlushedAt.UTC().Format("2006/01/02"), batch.ID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(batch.Payload),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
