// Package encoder provides the native file encoders and the registry that
// maps export extensions to them.
package encoder

import (
	"context"
	"fmt"

	"golang.org/x/image/tiff"

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// TIFF compression names accepted in EncodeOptions.Compression.
const (
	CompressionNone    = "none"
	CompressionDeflate = "deflate"
)

// TIFF encodes buffers to TIFF, keeping 16-bit samples.
type TIFF struct {
	DefaultCompression string // used when EncodeOptions.Compression == ""
}

func NewTIFF(defaultCompression string) *TIFF {
	if defaultCompression == "" {
		defaultCompression = CompressionDeflate
	}
	return &TIFF{DefaultCompression: defaultCompression}
}

func (t *TIFF) CanEncode(ext string) bool { return utils.FormatForExt(ext) == utils.FormatTIFF }

func (t *TIFF) Encode(ctx context.Context, buf *core.Buffer, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "tiff.encode", err)
	}
	if err := checkBuffer(buf); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "tiff.encode", err)
	}

	name := opts.Compression
	if name == "" {
		name = t.DefaultCompression
	}
	to := &tiff.Options{Predictor: opts.Predictor}
	switch name {
	case CompressionNone:
		to.Compression = tiff.Uncompressed
	case CompressionDeflate:
		to.Compression = tiff.Deflate
	default:
		return nil, apperrors.New(apperrors.CategoryEncode, "tiff.encode",
			fmt.Errorf("unknown compression %q", name))
	}

	out := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(out)
	if err := tiff.Encode(out, buf.ToImage(), to); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "tiff.encode", err)
	}
	return utils.CloneBytes(out.Bytes()), nil
}

// checkBuffer rejects buffers no image format can hold.
func checkBuffer(buf *core.Buffer) error {
	if buf == nil {
		return apperrors.ErrEmptyInput
	}
	if buf.Empty() {
		return fmt.Errorf("%w: %dx%d", apperrors.ErrInvalidDimensions, buf.Height, buf.Width)
	}
	return nil
}
