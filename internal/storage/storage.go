package storage

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Opener reads back a previously stored object (the parse worker needs it).
type Opener interface {
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

type Store interface {
	Uploader
	Opener
}
