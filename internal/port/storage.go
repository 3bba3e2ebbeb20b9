package port

import (
	"context"
	"io"
)

// ObjectStorage abstracts cloud object storage reads.
type ObjectStorage interface {
	// Download writes the object into w and returns the number of bytes written.
	Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}
