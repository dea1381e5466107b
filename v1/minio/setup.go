package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// ErrObjectNotFound is returned by GetObject when the key does not exist.
var ErrObjectNotFound = errors.New("minio: object not found")

// MinioClient reads and writes whole objects in one bucket.
type MinioClient struct {
	client   *minio.Client
	cfg      Config
	logger   logger.Logger
	observer observability.Observer
}

// NewClient creates a MinIO client for cfg.BucketName. It does not contact the server.
func NewClient(cfg *Config, log logger.Logger) (*MinioClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	return &MinioClient{client: client, cfg: *cfg, logger: log}, nil
}

// WithObserver attaches an observer that is told about every object operation.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

// Client returns the underlying minio-go client.
func (m *MinioClient) Client() *minio.Client {
	return m.client
}

// Bucket returns the configured bucket name.
func (m *MinioClient) Bucket() string {
	return m.cfg.BucketName
}

// EnsureBucket creates the configured bucket if it does not exist.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.BucketName)
	if err != nil {
		return fmt.Errorf("minio: check bucket %q: %w", m.cfg.BucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.BucketName, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("minio: create bucket %q: %w", m.cfg.BucketName, err)
	}
	m.logger.InfoWithContext(ctx, "created bucket", nil, map[string]interface{}{"bucket": m.cfg.BucketName})
	return nil
}

// GetObject reads the whole object stored at key.
func (m *MinioClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := m.getObject(ctx, key)
	m.observeOperation("get", key, time.Since(start), err, int64(len(data)))
	return data, err
}

func (m *MinioClient) getObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s/%s: %w", m.cfg.BucketName, key, err)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as NoSuchKey surface on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, m.cfg.BucketName, key)
		}
		return nil, fmt.Errorf("minio: read %s/%s: %w", m.cfg.BucketName, key, err)
	}
	return data, nil
}

// PutObject stores data at key.
func (m *MinioClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()
	_, err := m.client.PutObject(ctx, m.cfg.BucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	m.observeOperation("put", key, time.Since(start), err, int64(len(data)))
	if err != nil {
		return fmt.Errorf("minio: put %s/%s: %w", m.cfg.BucketName, key, err)
	}
	return nil
}
