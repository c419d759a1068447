package objstore

import (
	"context"

	"tvscribe/internal/config"
)

// Client replicates raw segments to durable object storage. Every call is
// best-effort from the pipeline's perspective: failures are logged by the
// caller, never fatal.
type Client interface {
	Upload(ctx context.Context, localPath, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Presign(ctx context.Context, key string) (string, error)
}

// NewFromConfig builds a client for the configured backend. It returns
// (nil, nil) when replication is disabled; callers treat a nil client as
// "no remote storage".
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg == nil || !cfg.Storage.Enabled {
		return nil, nil
	}
	return newS3Client(ctx, cfg.Storage)
}
