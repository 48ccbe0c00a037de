// Package uploader pushes session report directories to cloud storage.
package uploader

import (
	"context"

	"epqref/internal/config"
)

// Uploader uploads one session directory and returns its remote URL
// prefix.
type Uploader interface {
	Enabled() bool
	UploadDir(ctx context.Context, dir string) (string, error)
}

// NoopUploader is used when no storage backend is configured.
type NoopUploader struct{}

// Enabled reports false; nothing is uploaded.
func (NoopUploader) Enabled() bool { return false }

// UploadDir does nothing.
func (NoopUploader) UploadDir(ctx context.Context, dir string) (string, error) {
	return "", nil
}

// FromConfig returns the first enabled storage backend, or a
// NoopUploader. GCS wins over S3 when both are enabled.
func FromConfig(cfg config.StorageConfig) (Uploader, error) {
	if cfg.GCS.Enabled {
		return NewGCS(cfg.GCS)
	}
	if cfg.S3.Enabled {
		return NewS3(cfg.S3)
	}
	return NoopUploader{}, nil
}
