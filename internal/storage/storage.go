// Package storage archives the raw bytes of uploaded documents in an
// S3-compatible object store. Extracted text used for prompts lives in the
// reference context store, so the archive is never read back by the chat path.
package storage

import (
	"context"
	"io"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes an archived object.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Archive is the raw-upload object store used by the document service.
type Archive interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key. It is used to roll back a failed ingestion.
	Delete(ctx context.Context, key string) error
}

// UploadKey is the object key for the original bytes of an uploaded document.
func UploadKey(documentID, ext string) string {
	return "uploads/" + documentID + ext
}
