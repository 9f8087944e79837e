package filestore

import "time"

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "types/typescript/<id>.ts").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type.
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// PutOptions describes an upload.
type PutOptions struct {
	ContentType string
	// Metadata is stored alongside the object as user metadata.
	Metadata map[string]string
}
