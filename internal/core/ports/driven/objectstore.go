package driven

import (
	"context"
	"io"
)

// ObjectStore downloads stored documents by key.
type ObjectStore interface {
	// Download copies the object stored under key into w.
	// Returns domain.ErrNotFound if the key does not exist.
	Download(ctx context.Context, key string, w io.Writer) (int64, error)
}
