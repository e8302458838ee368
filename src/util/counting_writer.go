package util

import (
	"context"

	"github.com/pingcap/tidb/br/pkg/storage"
)

// CountingWriter wraps an ExternalFileWriter and reports written
// bytes to a ProgressLogger.
type CountingWriter struct {
	inner    storage.ExternalFileWriter
	progress *ProgressLogger
}

// NewCountingWriter wraps w. progress may be nil.
func NewCountingWriter(w storage.ExternalFileWriter, progress *ProgressLogger) *CountingWriter {
	return &CountingWriter{inner: w, progress: progress}
}

func (c *CountingWriter) Write(ctx context.Context, p []byte) (int, error) {
	n, err := c.inner.Write(ctx, p)
	if c.progress != nil && n > 0 {
		c.progress.UpdateBytes(int64(n))
	}
	return n, err
}

func (c *CountingWriter) Close(ctx context.Context) error {
	return c.inner.Close(ctx)
}
