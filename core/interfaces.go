package core

import (
	"context"
	"io"
)

// Decoder opens a source file and returns a handle that can render it into
// pixel buffers.  Implementations live in adapters/decoder/ and
// adapters/vips/.
type Decoder interface {
	Open(ctx context.Context, path string) (RawImage, error)
}

// RawImage is an opened source file.  Postprocess renders a fresh buffer on
// every call; callers own the returned buffer.
type RawImage interface {
	Postprocess(ctx context.Context, params PostprocessParams) (*Buffer, error)
	Close() error
}

// Encoder serialises a Buffer to bytes in one file format.
// Implementations live in adapters/encoder/ and adapters/vips/.
type Encoder interface {
	Encode(ctx context.Context, buf *Buffer, opts EncodeOptions) ([]byte, error)
	CanEncode(ext string) bool
}

// StorageAdapter persists encoded exports.
// Implementations live in adapters/storage/.
type StorageAdapter interface {
	Put(ctx context.Context, key StorageKey, r io.Reader) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Registry maps file extensions to Encoder implementations.
type Registry interface {
	EncoderFor(ext string) (Encoder, bool)
	RegisterEncoder(ext string, e Encoder)
}
