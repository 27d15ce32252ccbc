// Package snapweave applies an ordered stack of non-destructive edits
// (brightness, contrast, crop) to a photo and exports the result.
//
//	cfg := config.Default()
//	photo, err := snapweave.Open(ctx, "IMG_0042.tiff", cfg)
//	if err != nil { ... }
//	defer photo.Close()
//
//	photo.Brighten(1.5)
//	photo.Crop(map[string]any{"crop_start": []int{0, 0}, "crop_end": []int{6016, 4016}})
//	err = photo.Export(ctx, "out.tiff", "", core.EncodeOptions{})
package snapweave

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Skryldev/snapweave/adapters/decoder"
	"github.com/Skryldev/snapweave/adapters/encoder"
	"github.com/Skryldev/snapweave/adapters/storage"
	"github.com/Skryldev/snapweave/config"
	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/edit"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/logging"
	"github.com/Skryldev/snapweave/pipeline"
	"github.com/Skryldev/snapweave/utils"
)

// Re-export processing modes for convenience.
const (
	ModePreview = core.ModePreview
	ModeFull    = core.ModeFull
)

// Display names given to edits added through the convenience methods.
const (
	NameBrighten = "brighten"
	NameContrast = "contrast"
	NameCrop     = "crop"
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() config.Config { return config.Default() }

// ── Options ───────────────────────────────────────────────────────────────────

type options struct {
	decoder  core.Decoder
	registry core.Registry
	storage  core.StorageAdapter
	logger   core.Logger
	hooks    []core.Hook
	encoders map[string]core.Encoder
}

// Option customises a Photo at Open time.
type Option func(*options)

// WithDecoder replaces the native file decoder.
func WithDecoder(d core.Decoder) Option { return func(o *options) { o.decoder = d } }

// WithRegistry replaces the native encoder registry.
func WithRegistry(r core.Registry) Option { return func(o *options) { o.registry = r } }

// WithEncoder registers e for ext on top of the registry in use.
func WithEncoder(ext string, e core.Encoder) Option {
	return func(o *options) {
		if o.encoders == nil {
			o.encoders = make(map[string]core.Encoder)
		}
		o.encoders[ext] = e
	}
}

// WithStorage replaces the local filesystem storage rooted at
// Config.OutputDir.
func WithStorage(s core.StorageAdapter) Option { return func(o *options) { o.storage = s } }

// WithLogger replaces the process-wide logger for this photo.
func WithLogger(l core.Logger) Option { return func(o *options) { o.logger = l } }

// WithHook registers an observer called around every applied edit.
func WithHook(h core.Hook) Option { return func(o *options) { o.hooks = append(o.hooks, h) } }

// ── Photo ─────────────────────────────────────────────────────────────────────

// Photo is one opened source image plus its edit stack.  The decoder handle
// and the cached 8-bit preview are fixed at Open; only the stack changes.
type Photo struct {
	path    string
	cfg     config.Config
	raw     core.RawImage
	preview *core.Buffer
	stack   *edit.Stack
	reg     core.Registry
	store   core.StorageAdapter
	log     core.Logger
	pipe    *pipeline.Pipeline
	closed  atomic.Bool
}

// Open decodes path once into the cached preview and returns a Photo with an
// empty edit stack.
func Open(ctx context.Context, path string, cfg config.Config, opts ...Option) (*Photo, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "photo.open", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.L()
	}
	if o.decoder == nil {
		o.decoder = decoder.NewFile()
	}
	if o.registry == nil {
		o.registry = encoder.NewRegistry(encoder.Defaults{
			JPEGQuality:     cfg.JPEGQuality,
			TIFFCompression: cfg.TIFFCompression,
		})
	}
	for ext, e := range o.encoders {
		o.registry.RegisterEncoder(ext, e)
	}
	if o.storage == nil {
		local, err := storage.NewLocal(cfg.OutputDir, 0)
		if err != nil {
			return nil, err
		}
		o.storage = local
	}

	raw, err := o.decoder.Open(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "photo.open", err)
	}
	preview, err := raw.Postprocess(ctx, core.PreviewParams())
	if err != nil {
		raw.Close()
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "photo.open.preview", err)
	}

	pipe := pipeline.New().WithLogger(o.logger)
	for _, h := range o.hooks {
		pipe.AddHook(h)
	}

	o.logger.Debug("photo.open",
		"path", path,
		"preview_height", preview.Height,
		"preview_width", preview.Width,
	)
	return &Photo{
		path:    path,
		cfg:     cfg,
		raw:     raw,
		preview: preview,
		stack:   edit.NewStack(),
		reg:     o.registry,
		store:   o.storage,
		log:     o.logger,
		pipe:    pipe,
	}, nil
}

// Path returns the source path the photo was opened from.
func (p *Photo) Path() string { return p.path }

// ── Edit stack ────────────────────────────────────────────────────────────────

// Brighten appends a brightness edit.  It reports false, logging the reason,
// when factor is rejected; the stack is then unchanged.
func (p *Photo) Brighten(factor float64) bool {
	e, err := edit.NewBrightness(NameBrighten, factor)
	return p.add(e, err)
}

// Contrast appends a contrast edit.  It reports false, logging the reason,
// when factor is rejected; the stack is then unchanged.
func (p *Photo) Contrast(factor float64) bool {
	e, err := edit.NewContrast(NameContrast, factor)
	return p.add(e, err)
}

// Crop appends a crop edit built from params (keys "crop_start" and
// "crop_end", each an (x, y) pair).  Malformed params are logged and the
// edit is dropped; Crop then reports false.
func (p *Photo) Crop(params map[string]any) bool {
	e, err := edit.NewScalingFromParams(NameCrop, params)
	if err != nil {
		p.log.Error("edit.rejected", "edit", NameCrop, "params", params, "error", err.Error())
		return false
	}
	return p.add(e, nil)
}

// CropTo appends a crop from (x0, y0) to (x1, y1).
func (p *Photo) CropTo(x0, y0, x1, y1 int) bool {
	e, err := edit.NewScaling(NameCrop, edit.CropRegion{
		Start: edit.Point{X: x0, Y: y0},
		End:   edit.Point{X: x1, Y: y1},
	})
	return p.add(e, err)
}

// AddEdit appends an already constructed edit.  A nil edit is ignored.
func (p *Photo) AddEdit(e edit.Edit) { p.stack.Add(e) }

// Edits returns the current edits in application order.
func (p *Photo) Edits() []edit.Edit { return p.stack.Edits() }

// Pop removes and returns the most recent edit.
func (p *Photo) Pop() (edit.Edit, error) { return p.stack.Pop() }

// Clear removes every edit.
func (p *Photo) Clear() { p.stack.Clear() }

func (p *Photo) add(e edit.Edit, err error) bool {
	if err != nil {
		p.log.Error("edit.rejected", "error", err.Error())
		return false
	}
	p.stack.Add(e)
	return true
}

// ── Processing ────────────────────────────────────────────────────────────────

// Process applies the edit stack and returns a new buffer owned by the
// caller.  ModePreview works on a copy of the cached 8-bit preview;
// ModeFull decodes the source afresh at 16 bits.
func (p *Photo) Process(ctx context.Context, mode core.Mode) (*core.Buffer, error) {
	if p.closed.Load() {
		return nil, apperrors.New(apperrors.CategoryInput, "photo.process", fmt.Errorf("%s: photo closed", p.path))
	}
	p.log.Debug("photo.process", "mode", mode.String(), "path", p.path)

	var src *core.Buffer
	switch mode {
	case core.ModePreview:
		src = p.preview.Clone()
	case core.ModeFull:
		buf, err := p.raw.Postprocess(ctx, core.FullParams())
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "photo.process", err)
		}
		src = buf
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "photo.process", fmt.Errorf("unknown mode %d", mode))
	}

	edits := p.stack.Edits()
	p.log.Debug("photo.process.source",
		"mode", mode.String(),
		"height", src.Height,
		"width", src.Width,
		"edits", len(edits),
	)
	out, err := p.pipe.Run(ctx, src, edits)
	if err != nil {
		return nil, err
	}
	p.log.Debug("photo.process.done",
		"mode", mode.String(),
		"height", out.Height,
		"width", out.Width,
	)
	return out, nil
}

// Preview is Process(ctx, ModePreview).
func (p *Photo) Preview(ctx context.Context) (*core.Buffer, error) {
	return p.Process(ctx, core.ModePreview)
}

// Export renders the full-resolution image, widens it to 16 bits and writes
// it to path in the format named by ext (Config.DefaultExt when empty).
// The path is used as given; ext selects the encoder only.
//
// Encoder and storage failures are returned wrapped in a ProcessingError
// with category export; errors.Is and errors.As reach the original error.
func (p *Photo) Export(ctx context.Context, path, ext string, opts core.EncodeOptions) error {
	if ext == "" {
		ext = p.cfg.DefaultExt
	}
	enc, ok := p.reg.EncoderFor(ext)
	if !ok {
		return apperrors.New(apperrors.CategoryExport, "photo.export",
			fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext))
	}

	img, err := p.Process(ctx, core.ModeFull)
	if err != nil {
		return err
	}
	img = img.To16()

	data, err := enc.Encode(ctx, img, opts)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryExport, "photo.export.encode", err)
	}
	if err := p.store.Put(ctx, core.StorageKey{Path: path}, bytes.NewReader(data)); err != nil {
		return apperrors.Wrap(apperrors.CategoryExport, "photo.export.write", err)
	}
	p.log.Info("photo.export",
		"path", path,
		"format", utils.FormatForExt(ext),
		"height", img.Height,
		"width", img.Width,
		"bytes", len(data),
	)
	return nil
}

// Close releases the decoder handle.  Process and Export fail afterwards.
func (p *Photo) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.raw.Close()
}
