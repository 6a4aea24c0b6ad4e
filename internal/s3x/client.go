// Package s3x builds S3 clients for the object-storage backends. It targets
// S3-compatible endpoints (MinIO in development), so credentials and the
// base endpoint come from our own config rather than the ambient AWS chain.
package s3x

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options carries connection settings for an S3-compatible backend.
type Options struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
}

// NewClient builds an S3 client with static credentials and an explicit
// base endpoint.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})
	return client, nil
}
