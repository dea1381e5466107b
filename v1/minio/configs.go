package minio

import "errors"

// Config holds the connection settings for the object store that serves
// dataset files.
type Config struct {
	// Enabled makes binaries read the dataset from object storage instead of the local filesystem.
	Enabled bool `yaml:"enabled" envconfig:"MINIO_ENABLED"`

	// Endpoint is host:port of the S3-compatible server, without scheme.
	Endpoint string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"`

	AccessKeyID     string `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"`

	// UseSSL selects https.
	UseSSL bool `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`

	Region string `yaml:"region" envconfig:"MINIO_REGION"`

	// BucketName is the bucket objects are read from.
	BucketName string `yaml:"bucket_name" envconfig:"MINIO_BUCKET_NAME"`
}

// DefaultConfig returns a config for a local MinIO server.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:   "localhost:9000",
		Region:     "us-east-1",
		BucketName: "datasets",
	}
}

// Validate reports missing settings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio endpoint cannot be empty")
	}
	if c.BucketName == "" {
		return errors.New("minio bucket name cannot be empty")
	}
	return nil
}
