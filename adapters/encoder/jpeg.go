package encoder

import (
	"context"

	"github.com/disintegration/imaging"

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// JPEG encodes buffers to baseline JPEG.  JPEG holds 8 bits per sample, so
// 16-bit buffers are reduced on the way out.
type JPEG struct {
	DefaultQuality int // used when EncodeOptions.Quality == 0
}

func NewJPEG(defaultQuality int) *JPEG {
	if defaultQuality <= 0 {
		defaultQuality = 95
	}
	return &JPEG{DefaultQuality: defaultQuality}
}

func (j *JPEG) CanEncode(ext string) bool { return utils.FormatForExt(ext) == utils.FormatJPEG }

func (j *JPEG) Encode(ctx context.Context, buf *core.Buffer, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	if err := checkBuffer(buf); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = j.DefaultQuality
	}

	out := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(out)
	if err := imaging.Encode(out, buf.ToImage(), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	return utils.CloneBytes(out.Bytes()), nil
}
