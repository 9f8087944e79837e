package filestore

import (
	"bytes"
	"context"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/pgmeta/internal/errs"
)

// Artifact is a published file.
type Artifact struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Publisher uploads generated files under unique keys and hands out
// presigned download URLs.
type Publisher struct {
	store  Store
	bucket string
	prefix string
	expiry time.Duration

	mu      sync.Mutex
	ensured bool

	now   func() time.Time
	newID func() string
}

// NewPublisher returns a Publisher writing to cfg.Bucket.
func NewPublisher(store Store, cfg *Config) *Publisher {
	return &Publisher{
		store:  store,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		expiry: cfg.URLExpiry,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// extensions maps a target name to the file extension of its output.
var extensions = map[string]string{
	"typescript": ".ts",
	"dart":       ".dart",
	"go":         ".go",
}

var contentTypes = map[string]string{
	".ts":   "application/typescript",
	".dart": "application/dart",
	".go":   "text/x-go",
}

// Key returns the object key for a new artifact of target.
func (p *Publisher) Key(target string) string {
	ext, ok := extensions[target]
	if !ok {
		ext = ".txt"
	}
	return path.Join(p.prefix, target, p.newID()+ext)
}

// Publish uploads content and presigns a download URL for it.
func (p *Publisher) Publish(ctx context.Context, target string, content []byte) (*Artifact, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return nil, err
	}

	key := p.Key(target)
	contentType, ok := contentTypes[path.Ext(key)]
	if !ok {
		contentType = "text/plain"
	}
	info, err := p.store.PutObject(ctx, p.bucket, key, bytes.NewReader(content), int64(len(content)), PutOptions{
		ContentType: contentType + "; charset=utf-8",
		Metadata:    map[string]string{"target": target},
	})
	if err != nil {
		return nil, err
	}

	url, err := p.store.PresignGetURL(ctx, p.bucket, key, p.expiry)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, errs.New(errs.ErrKindQueryFailed, "store returned an empty presigned url")
	}
	return &Artifact{
		Bucket:    p.bucket,
		Key:       info.Key,
		URL:       url,
		Size:      info.Size,
		ExpiresAt: p.now().Add(p.expiry),
	}, nil
}

// ensureBucket creates the bucket once. A failure is retried on the next call.
func (p *Publisher) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured {
		return nil
	}
	if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
		return err
	}
	p.ensured = true
	return nil
}
