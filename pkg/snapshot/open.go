package snapshot

import (
	"github.com/vango-dev/vdiff/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendS3     = "s3"
)

// Config selects and configures a snapshot backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend" validate:"omitempty,oneof=memory bolt s3"`

	// BoltPath is the database file for the bolt backend.
	BoltPath string `json:"bolt_path,omitempty" yaml:"bolt_path,omitempty" validate:"required_if=Backend bolt"`

	S3Bucket   string `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty" validate:"required_if=Backend s3"`
	S3Prefix   string `json:"s3_prefix,omitempty" yaml:"s3_prefix,omitempty"`
	S3Region   string `json:"s3_region,omitempty" yaml:"s3_region,omitempty" validate:"required_if=Backend s3"`
	S3Endpoint string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty" validate:"omitempty,url"`
}

// Open creates the store described by cfg. An empty backend means memory.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendBolt:
		return OpenBolt(cfg.BoltPath)
	case BackendS3:
		client := NewS3Client(S3Options{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	}
	return nil, errors.New(errors.CodeConfigValidation).
		WithDetailf("unknown snapshot backend %q", cfg.Backend).
		WithSuggestion("Use one of: memory, bolt, s3")
}
