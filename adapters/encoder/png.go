package encoder

import (
	"context"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// PNG encodes buffers to PNG; 16-bit buffers stay 16-bit.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanEncode(ext string) bool { return utils.FormatForExt(ext) == utils.FormatPNG }

func (p *PNG) Encode(ctx context.Context, buf *core.Buffer, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	if err := checkBuffer(buf); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}

	level := png.DefaultCompression
	if opts.Lossless {
		level = png.BestCompression
	}

	out := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(out)
	if err := imaging.Encode(out, buf.ToImage(), imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	return utils.CloneBytes(out.Bytes()), nil
}
