package vips

import (
	"context"
	"encoding/binary"
	"fmt"
	"image/png"
	"runtime"
	"sync"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/snapweave/core"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	DefaultQuality     int
	DefaultCompression string // TIFF: "none" or "deflate"
	MaxCacheSize       int
	MaxWorkers         int
	ReportLeaks        bool
}

// Backend is a libvips-powered Decoder and a factory for per-format
// Encoders.  It opens anything libvips can load, including camera RAW files
// when libvips is built with libraw.  Safe for concurrent use.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 95
	}
	if cfg.DefaultCompression == "" {
		cfg.DefaultCompression = "deflate"
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

func (b *Backend) Open(ctx context.Context, path string) (core.RawImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.open", err)
	}
	if path == "" {
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.open", apperrors.ErrEmptyInput)
	}
	ref, err := govips.NewImageFromFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.open", err)
	}
	if err := ref.AutoRotate(); err != nil {
		ref.Close()
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.open.auto_rotate", err)
	}
	if ref.Width() <= 0 || ref.Height() <= 0 {
		ref.Close()
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.open", apperrors.ErrInvalidDimensions)
	}
	return &rawImage{path: path, ref: ref}, nil
}

// rawImage holds the loaded libvips image; each Postprocess renders from a
// copy so the source stays untouched.
type rawImage struct {
	mu   sync.Mutex
	path string
	ref  *govips.ImageRef
}

func (r *rawImage) Postprocess(ctx context.Context, params core.PostprocessParams) (*core.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.postprocess", err)
	}
	if !params.OutputBPS.Valid() {
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.postprocess",
			fmt.Errorf("%w: output bit depth %d", apperrors.ErrInvalidDimensions, params.OutputBPS))
	}

	r.mu.Lock()
	if r.ref == nil {
		r.mu.Unlock()
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.postprocess",
			fmt.Errorf("%s: image closed", r.path))
	}
	img, err := r.ref.Copy()
	r.mu.Unlock()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.postprocess.copy", err)
	}
	defer img.Close()

	buf, err := render(img, params.OutputBPS)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.postprocess", err)
	}
	core.Finish(buf, params)
	return buf, nil
}

func (r *rawImage) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ref != nil {
		r.ref.Close()
		r.ref = nil
	}
	return nil
}

// render converts img to RGB at depth and copies its pixels into a Buffer.
func render(img *govips.ImageRef, depth core.BitDepth) (*core.Buffer, error) {
	space, format := govips.InterpretationSRGB, govips.BandFormatUchar
	if depth == core.Depth16 {
		space, format = govips.InterpretationRGB16, govips.BandFormatUshort
	}
	if err := img.ToColorSpace(space); err != nil {
		return nil, err
	}
	if img.Bands() > 3 {
		if err := img.ExtractBand(0, 3); err != nil {
			return nil, err
		}
	}
	if img.BandFormat() != format {
		if err := img.Cast(format); err != nil {
			return nil, err
		}
	}
	raw, err := img.ToBytes()
	if err != nil {
		return nil, err
	}

	buf := core.NewBuffer(img.Height(), img.Width(), img.Bands(), depth)
	want := len(buf.Pix)
	if depth == core.Depth16 {
		want *= 2
	}
	if len(raw) != want {
		return nil, fmt.Errorf("unexpected pixel data size %d, want %d", len(raw), want)
	}
	if depth == core.Depth8 {
		for i, v := range raw {
			buf.Pix[i] = uint16(v)
		}
		return buf, nil
	}
	for i := range buf.Pix {
		buf.Pix[i] = binary.NativeEndian.Uint16(raw[2*i:])
	}
	return buf, nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

// Encoder exports one file format through libvips.
type Encoder struct {
	b      *Backend
	format string
}

// Encoder returns the libvips encoder for ext, or false if libvips export
// is not wired for that format.
func (b *Backend) Encoder(ext string) (*Encoder, bool) {
	switch f := utils.FormatForExt(ext); f {
	case utils.FormatTIFF, utils.FormatPNG, utils.FormatJPEG, utils.FormatWebP:
		return &Encoder{b: b, format: f}, true
	}
	return nil, false
}

func (e *Encoder) CanEncode(ext string) bool { return utils.FormatForExt(ext) == e.format }

func (e *Encoder) Encode(ctx context.Context, buf *core.Buffer, opts core.EncodeOptions) ([]byte, error) {
	op := "vips.encode." + e.format
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, op, err)
	}
	if buf == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, op, apperrors.ErrEmptyInput)
	}
	if buf.Empty() {
		return nil, apperrors.New(apperrors.CategoryEncode, op,
			fmt.Errorf("%w: %dx%d", apperrors.ErrInvalidDimensions, buf.Height, buf.Width))
	}

	ref, err := load(buf)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, op+".load", err)
	}
	defer ref.Close()

	quality := opts.Quality
	if quality <= 0 {
		quality = e.b.cfg.DefaultQuality
	}

	var out []byte
	switch e.format {
	case utils.FormatTIFF:
		ep := govips.NewTiffExportParams()
		ep.StripMetadata = opts.StripMetadata
		compression := opts.Compression
		if compression == "" {
			compression = e.b.cfg.DefaultCompression
		}
		switch compression {
		case "none":
			ep.Compression = govips.TiffCompressionNone
		case "deflate":
			ep.Compression = govips.TiffCompressionDeflate
		default:
			return nil, apperrors.New(apperrors.CategoryEncode, op, fmt.Errorf("unknown compression %q", compression))
		}
		ep.Predictor = govips.TiffPredictorNone
		if opts.Predictor {
			ep.Predictor = govips.TiffPredictorHorizontal
		}
		out, _, err = ref.ExportTiff(ep)

	case utils.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.StripMetadata = opts.StripMetadata
		if opts.Lossless {
			ep.Compression = 9
		}
		out, _, err = ref.ExportPng(ep)

	case utils.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		ep.StripMetadata = opts.StripMetadata
		out, _, err = ref.ExportJpeg(ep)

	case utils.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		ep.Lossless = opts.Lossless
		ep.StripMetadata = opts.StripMetadata
		out, _, err = ref.ExportWebp(ep)

	default:
		return nil, apperrors.New(apperrors.CategoryEncode, op,
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, e.format))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, op, err)
	}
	return out, nil
}

// load hands buf to libvips through an uncompressed PNG, which carries both
// 8- and 16-bit samples losslessly.
func load(buf *core.Buffer) (*govips.ImageRef, error) {
	tmp := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(tmp)
	enc := &png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(tmp, buf.ToImage()); err != nil {
		return nil, err
	}
	return govips.NewImageFromBuffer(utils.CloneBytes(tmp.Bytes()))
}

// ─── RegisterVipsBackend ──────────────────────────────────────────────────────

// RegisterVipsBackend replaces the native encoders with libvips for every
// format it exports, adding WebP.
func RegisterVipsBackend(reg core.Registry, b *Backend) {
	for _, ext := range []string{".tiff", ".png", ".jpeg", ".webp"} {
		if e, ok := b.Encoder(ext); ok {
			reg.RegisterEncoder(ext, e)
		}
	}
}

// compile-time interface checks
var _ core.Decoder = (*Backend)(nil)
var _ core.Encoder = (*Encoder)(nil)
