// Package filestore defines the object storage contract used to publish
// generated artifacts, and the Publisher that drives it.
//
// Usage:
//
//	cfg := filestore.DefaultConfig()
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	pub := filestore.NewPublisher(store, cfg)
//	art, err := pub.Publish(ctx, "typescript", []byte(src))
package filestore

import (
	"context"
	"io"
	"time"
)

// Store is the interface every storage provider implements.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates bucket unless it already exists.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject uploads size bytes from r to key inside bucket.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) (*ObjectInfo, error)

	// PresignGetURL returns a time-limited URL that allows anyone to download
	// the object at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
