package interfaces

import (
	"context"
	"io"
)

// AttachmentStoreInterface stores a receipt or proof file and returns its public URL.
type AttachmentStoreInterface interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
