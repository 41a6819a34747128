package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configure the bucket holding token and cookie blobs.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3Store keeps the blob as a single object. The worker deployment has no
// durable disk, so tokens and cookie jars live here.
type S3Store struct {
	api    *awss3.Client
	upl    *manager.Uploader
	bucket string
	key    string
}

func NewS3Store(ctx context.Context, opts S3Options, key string) (*S3Store, error) {
	// Path-style addressing for S3-compatible endpoints (MinIO etc.);
	// virtual-hosted for real AWS.
	forcePathStyle := !strings.Contains(opts.Endpoint, "amazonaws.com")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	endpoint := opts.Endpoint
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = forcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})

	return &S3Store{
		api:    client,
		upl:    manager.NewUploader(client),
		bucket: opts.Bucket,
		key:    key,
	}, nil
}

func (s *S3Store) Load(ctx context.Context) ([]byte, bool, error) {
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *S3Store) Save(ctx context.Context, data []byte) error {
	contentType := "application/json"
	_, err := s.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	return err
}

func (s *S3Store) Clear(ctx context.Context) error {
	_, err := s.api.DeleteObject(ctx, &awss3.DeleteObjectInput{Bucket: &s.bucket, Key: &s.key})
	return err
}
