package storage

import (
	"context"
	"io"
)

// Storage persists uploaded artifacts under slash-separated paths like
// "submissions/{token}_{filename}". Writes are whole-buffer; there is no
// streaming or partial-write contract.
type Storage interface {
	Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
}
