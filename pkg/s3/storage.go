package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// Storage keeps each storage key as one object under Prefix.
type Storage struct {
	client Client
	bucket string
	prefix string
}

// New builds a storage for cfg. Bucket and Region are required.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	client, err := newClient(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimPrefix(cfg.Prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Storage{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// OpenDSN builds a storage from s3://bucket/prefix?region=&endpoint=&path_style=.
// Credentials come from the default AWS chain.
func OpenDSN(ctx context.Context, dsn string) (storage.Storage, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Join(storage.ErrInvalidDSN, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: bucket is required", storage.ErrInvalidDSN)
	}
	q := u.Query()
	cfg := Config{
		Bucket:   u.Host,
		Prefix:   strings.TrimPrefix(u.Path, "/"),
		Region:   q.Get("region"),
		Endpoint: q.Get("endpoint"),
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if raw := q.Get("path_style"); raw != "" {
		cfg.ForcePathStyle, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Join(storage.ErrInvalidDSN, err)
		}
	}
	return New(ctx, cfg)
}

// ObjectKey returns the object key for a storage key.
func (s *Storage) ObjectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		return "", classify(err, "get")
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("get operation failed: %w", err)
	}
	return string(data), nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.ObjectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	return classify(err, "put")
}

// RemoveItem deletes the object. S3 treats deleting a missing key as success.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	err = classify(err, "delete")
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Storage) Close() error {
	return nil
}

// Healthcheck returns a closure that checks the bucket is reachable.
func (s *Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(s.bucket)})
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, classify(err, "head bucket"))
		}
		return nil
	}
}

func classify(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return storage.ErrNotFound
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return storage.ErrNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}
	return fmt.Errorf("%s operation failed: %w", operation, err)
}

var _ storage.Storage = (*Storage)(nil)
