package repositories

import (
	"context"

	"codemint.backend/internal/domain/entities"
)

// UploadFile is one file of a directory upload. Path is the file's relative
// path inside the uploaded directory and is preserved on the remote side.
type UploadFile struct {
	Path string
	Data []byte
}

// ContentStore uploads byte blobs to the content-addressed store and manages
// their pin lifecycle. CIDs are opaque immutable handles: replacing content
// means pinning new content and unpinning the old.
type ContentStore interface {
	PinFile(ctx context.Context, label string, file UploadFile) (cid string, err error)
	PinDirectory(ctx context.Context, label string, files []UploadFile) (cid string, err error)
	// Unpin is idempotent; unknown CIDs are logged, not fatal.
	Unpin(ctx context.Context, cid string) error
}

// MetadataStore resolves pinned JSON documents through the content gateway.
type MetadataStore interface {
	TokenMetadata(ctx context.Context, cid string) (*entities.TokenMetadata, error)
	Parameters(ctx context.Context, cid string) ([]entities.Parameter, error)
}
