package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const imageKeyPrefix = "post-images/"

// S3Store keeps images as objects in an S3 bucket. A custom endpoint switches
// to path-style addressing for S3-compatible servers such as MinIO.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store loads AWS credentials from the environment and connects to bucket.
func NewS3Store(ctx context.Context, region, bucket, endpoint string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: bucket}, nil
}

func (s *S3Store) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	token := newToken()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(imageKeyPrefix + token),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return token, nil
}

func (s *S3Store) Retrieve(ctx context.Context, token string) ([]byte, string, error) {
	if !validToken(token) {
		return nil, "", ErrImageNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(imageKeyPrefix + token),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", fmt.Errorf("s3 get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("s3 read object: %w", err)
	}
	return data, aws.ToString(out.ContentType), nil
}

// Release deletes the object. S3 treats deleting a missing key as success.
func (s *S3Store) Release(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(imageKeyPrefix + token),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}
