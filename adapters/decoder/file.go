// Package decoder provides the native source-file decoder.
package decoder

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// File decodes rendered image files (TIFF, PNG, JPEG, WebP) with imaging,
// honouring the EXIF orientation tag.  16-bit sources keep their precision
// in full-resolution renders.
type File struct{}

// NewFile returns a File decoder.
func NewFile() *File { return &File{} }

func (d *File) Open(ctx context.Context, path string) (core.RawImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "file.open", err)
	}
	if path == "" {
		return nil, apperrors.New(apperrors.CategoryDecode, "file.open", apperrors.ErrEmptyInput)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "file.open", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		if utils.FormatForExt(utils.ExtOf(path)) == utils.FormatUnknown {
			err = fmt.Errorf("%w: %s: %v", apperrors.ErrUnsupportedFormat, path, err)
		}
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "file.decode", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "file.decode", apperrors.ErrInvalidDimensions)
	}
	return &rawImage{path: path, img: img}, nil
}

// rawImage keeps the decoded source so every Postprocess renders from it.
type rawImage struct {
	mu   sync.RWMutex
	path string
	img  image.Image
}

func (r *rawImage) Postprocess(ctx context.Context, params core.PostprocessParams) (*core.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "file.postprocess", err)
	}
	if !params.OutputBPS.Valid() {
		return nil, apperrors.New(apperrors.CategoryDecode, "file.postprocess",
			fmt.Errorf("%w: output bit depth %d", apperrors.ErrInvalidDimensions, params.OutputBPS))
	}
	r.mu.RLock()
	img := r.img
	r.mu.RUnlock()
	if img == nil {
		return nil, apperrors.New(apperrors.CategoryDecode, "file.postprocess",
			fmt.Errorf("%s: image closed", r.path))
	}
	buf := core.FromImage(img, params.OutputBPS)
	core.Finish(buf, params)
	return buf, nil
}

func (r *rawImage) Close() error {
	r.mu.Lock()
	r.img = nil
	r.mu.Unlock()
	return nil
}

var _ core.Decoder = (*File)(nil)
