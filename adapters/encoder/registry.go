package encoder

import "github.com/Skryldev/snapweave/core"

// Defaults are the per-format settings used when EncodeOptions leaves a
// field zero.
type Defaults struct {
	JPEGQuality     int
	TIFFCompression string
}

// NewRegistry returns a registry holding the native encoders for .tiff, .png
// and .jpeg (and their aliases).
func NewRegistry(d Defaults) *core.DefaultRegistry {
	reg := core.NewRegistry()
	Register(reg, d)
	return reg
}

// Register adds the native encoders to reg, replacing existing entries.
func Register(reg core.Registry, d Defaults) {
	reg.RegisterEncoder(".tiff", NewTIFF(d.TIFFCompression))
	reg.RegisterEncoder(".png", NewPNG())
	reg.RegisterEncoder(".jpeg", NewJPEG(d.JPEGQuality))
}

var (
	_ core.Encoder = (*TIFF)(nil)
	_ core.Encoder = (*PNG)(nil)
	_ core.Encoder = (*JPEG)(nil)
)
