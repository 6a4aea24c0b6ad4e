// Package snapshot persists the accountant's session state across process
// restarts. Unlike audit batches, snapshots are overwrite-style: only the
// latest state matters.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hearthgate/hearthgate/internal/common"
)

// Store reads and overwrites named opaque payloads.
type Store interface {
	Save(ctx context.Context, name string, payload string) error
	Load(ctx context.Context, name string) (string, error)
}

// s3API narrows the S3 client to the two calls the store makes.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps snapshots under state/<name> in the bucket. Saves overwrite
// the object in place.
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Save(ctx context.Context, name string, payload string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("state/" + name),
		Body:   strings.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("s3 put state/%s: %w", name, err)
	}
	return nil
}

func (s *S3Store) Load(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("state/" + name),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("s3 get state/%s: %w", name, err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("s3 read state/%s: %w", name, err)
	}
	return string(payload), nil
}

// FileStore keeps snapshots as files in a directory. Used in development
// and tests.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Save(ctx context.Context, name string, payload string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), []byte(payload), 0o600)
}

func (s *FileStore) Load(ctx context.Context, name string) (string, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", common.ErrNotFound
		}
		return "", err
	}
	return string(payload), nil
}
