package core

import (
	"fmt"
	"image"
	"image/color"
)

// BitDepth is the number of bits per sample.
type BitDepth int

const (
	Depth8  BitDepth = 8
	Depth16 BitDepth = 16
)

// MaxSample returns the largest value a sample of this depth can hold.
func (d BitDepth) MaxSample() uint16 {
	if d == Depth8 {
		return 0xff
	}
	return 0xffff
}

func (d BitDepth) Valid() bool { return d == Depth8 || d == Depth16 }

// Buffer is a height x width x channel array of unsigned samples stored
// row-major with interleaved channels.  Samples of an 8-bit buffer never
// exceed 255; the wider storage only lets one type serve both depths.
type Buffer struct {
	Height   int
	Width    int
	Channels int
	Depth    BitDepth
	Pix      []uint16
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(height, width, channels int, depth BitDepth) *Buffer {
	if height < 0 || width < 0 || channels <= 0 {
		panic(fmt.Sprintf("core: invalid buffer shape (%d, %d, %d)", height, width, channels))
	}
	if !depth.Valid() {
		panic(fmt.Sprintf("core: invalid bit depth %d", depth))
	}
	return &Buffer{
		Height:   height,
		Width:    width,
		Channels: channels,
		Depth:    depth,
		Pix:      make([]uint16, height*width*channels),
	}
}

// Shape returns (height, width, channels).
func (b *Buffer) Shape() (int, int, int) { return b.Height, b.Width, b.Channels }

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool { return b.Height == 0 || b.Width == 0 }

// Index returns the offset of sample (y, x, c) in Pix.
func (b *Buffer) Index(y, x, c int) int { return (y*b.Width+x)*b.Channels + c }

func (b *Buffer) At(y, x, c int) uint16 { return b.Pix[b.Index(y, x, c)] }

func (b *Buffer) Set(y, x, c int, v uint16) { b.Pix[b.Index(y, x, c)] = v }

// SizeBytes is the in-memory size of the samples at the buffer's depth.
func (b *Buffer) SizeBytes() int64 {
	n := int64(len(b.Pix))
	if b.Depth == Depth16 {
		return n * 2
	}
	return n
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := *b
	out.Pix = make([]uint16, len(b.Pix))
	copy(out.Pix, b.Pix)
	return &out
}

// Equal reports whether both buffers have the same shape, depth and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.Height != o.Height || b.Width != o.Width || b.Channels != o.Channels || b.Depth != o.Depth {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Max returns the largest sample across all channels; 0 for an empty buffer.
func (b *Buffer) Max() uint16 {
	var m uint16
	for _, v := range b.Pix {
		if v > m {
			m = v
		}
	}
	return m
}

// ChannelMeans returns the mean sample of each channel over both spatial
// axes.  It returns nil for an empty buffer.
func (b *Buffer) ChannelMeans() []float64 {
	n := b.Height * b.Width
	if n == 0 {
		return nil
	}
	sums := make([]float64, b.Channels)
	for i, v := range b.Pix {
		sums[i%b.Channels] += float64(v)
	}
	for c := range sums {
		sums[c] /= float64(n)
	}
	return sums
}

// To16 returns a 16-bit buffer holding the same sample values.  8-bit
// samples are widened, not rescaled.  A 16-bit buffer is returned as is.
func (b *Buffer) To16() *Buffer {
	if b.Depth == Depth16 {
		return b
	}
	out := b.Clone()
	out.Depth = Depth16
	return out
}

// ── image.Image conversion ────────────────────────────────────────────────────

// ToImage converts the buffer to an image.Image of matching depth: Gray or
// Gray16 for one channel, NRGBA or NRGBA64 otherwise.  A fourth channel is
// used as alpha; three-channel buffers are opaque.
func (b *Buffer) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch {
	case b.Channels == 1 && b.Depth == Depth8:
		img := image.NewGray(rect)
		for i, v := range b.Pix {
			img.Pix[i] = uint8(v)
		}
		return img
	case b.Channels == 1:
		img := image.NewGray16(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: b.At(y, x, 0)})
			}
		}
		return img
	case b.Depth == Depth8:
		img := image.NewNRGBA(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				r, g, bl, a := b.rgba(y, x)
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(bl), A: uint8(a)})
			}
		}
		return img
	default:
		img := image.NewNRGBA64(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				r, g, bl, a := b.rgba(y, x)
				img.SetNRGBA64(x, y, color.NRGBA64{R: r, G: g, B: bl, A: a})
			}
		}
		return img
	}
}

// rgba reads pixel (y, x) as four samples, replicating a lone channel and
// defaulting alpha to opaque.
func (b *Buffer) rgba(y, x int) (r, g, bl, a uint16) {
	i := b.Index(y, x, 0)
	a = b.Depth.MaxSample()
	switch b.Channels {
	case 1:
		return b.Pix[i], b.Pix[i], b.Pix[i], a
	case 2:
		return b.Pix[i], b.Pix[i+1], 0, a
	case 3:
		return b.Pix[i], b.Pix[i+1], b.Pix[i+2], a
	default:
		return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
	}
}

// FromImage converts img into a three-channel RGB buffer at the requested
// depth.  Alpha is dropped; 8-bit sources are scaled to the full 16-bit
// range when depth is Depth16.
func FromImage(img image.Image, depth BitDepth) *Buffer {
	bounds := img.Bounds()
	buf := NewBuffer(bounds.Dy(), bounds.Dx(), 3, depth)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			i := buf.Index(y, x, 0)
			if depth == Depth8 {
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = uint16(n.R), uint16(n.G), uint16(n.B)
				continue
			}
			n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = n.R, n.G, n.B
		}
	}
	return buf
}
