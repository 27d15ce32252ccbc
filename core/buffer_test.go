package core_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/Skryldev/snapweave/core"
)

func TestNewBufferShape(t *testing.T) {
	b := core.NewBuffer(3, 4, 3, core.Depth16)
	if h, w, c := b.Shape(); h != 3 || w != 4 || c != 3 {
		t.Errorf("shape: got (%d, %d, %d)", h, w, c)
	}
	if len(b.Pix) != 36 {
		t.Errorf("samples: got %d, want 36", len(b.Pix))
	}
	if b.SizeBytes() != 72 {
		t.Errorf("size: got %d, want 72", b.SizeBytes())
	}
	if b.Empty() {
		t.Error("3x4 buffer reported empty")
	}
	if !core.NewBuffer(0, 4, 3, core.Depth8).Empty() {
		t.Error("0x4 buffer not empty")
	}
}

func TestNewBufferPanicsOnBadShape(t *testing.T) {
	for _, tc := range []struct {
		h, w, c int
		d       core.BitDepth
	}{
		{-1, 1, 3, core.Depth8},
		{1, 1, 0, core.Depth8},
		{1, 1, 3, 12},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewBuffer(%d, %d, %d, %d) did not panic", tc.h, tc.w, tc.c, tc.d)
				}
			}()
			core.NewBuffer(tc.h, tc.w, tc.c, tc.d)
		}()
	}
}

func TestBufferIndexing(t *testing.T) {
	b := core.NewBuffer(2, 3, 3, core.Depth8)
	b.Set(1, 2, 1, 77)
	if b.Pix[(1*3+2)*3+1] != 77 {
		t.Error("Set wrote to the wrong offset")
	}
	if b.At(1, 2, 1) != 77 {
		t.Error("At read the wrong offset")
	}
}

func TestBufferCloneIsDeep(t *testing.T) {
	b := core.NewBuffer(2, 2, 1, core.Depth8)
	b.Pix[0] = 9
	c := b.Clone()
	c.Pix[0] = 1
	if b.Pix[0] != 9 {
		t.Error("Clone shares samples")
	}
	if !b.Equal(b.Clone()) {
		t.Error("clone not equal to source")
	}
	if b.Equal(c) {
		t.Error("different buffers reported equal")
	}
}

func TestBufferMaxAndMeans(t *testing.T) {
	b := core.NewBuffer(1, 2, 3, core.Depth8)
	copy(b.Pix, []uint16{10, 20, 30, 30, 40, 250})
	if b.Max() != 250 {
		t.Errorf("max: got %d", b.Max())
	}
	m := b.ChannelMeans()
	want := []float64{20, 30, 140}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("mean %d: got %v, want %v", i, m[i], want[i])
		}
	}

	empty := core.NewBuffer(0, 0, 3, core.Depth8)
	if empty.Max() != 0 || empty.ChannelMeans() != nil {
		t.Error("empty buffer: want max 0 and nil means")
	}
}

func TestTo16PreservesValues(t *testing.T) {
	b := core.NewBuffer(1, 1, 3, core.Depth8)
	copy(b.Pix, []uint16{1, 128, 255})
	w := b.To16()
	if w.Depth != core.Depth16 {
		t.Fatalf("depth: got %d", w.Depth)
	}
	for i, v := range []uint16{1, 128, 255} {
		if w.Pix[i] != v {
			t.Errorf("sample %d: got %d, want %d", i, w.Pix[i], v)
		}
	}
	if b.Depth != core.Depth8 {
		t.Error("To16 changed its receiver")
	}
	if w.To16() != w {
		t.Error("To16 on a 16-bit buffer should return it unchanged")
	}
}

func TestToImage(t *testing.T) {
	rgb16 := core.NewBuffer(2, 3, 3, core.Depth16)
	rgb16.Set(1, 2, 0, 1000)
	img, ok := rgb16.ToImage().(*image.NRGBA64)
	if !ok {
		t.Fatalf("16-bit RGB: got %T, want *image.NRGBA64", rgb16.ToImage())
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds: %v", img.Bounds())
	}
	if c := img.NRGBA64At(2, 1); c.R != 1000 || c.A != 0xffff {
		t.Errorf("pixel: %+v", c)
	}

	rgb8 := core.NewBuffer(1, 1, 3, core.Depth8)
	if _, ok := rgb8.ToImage().(*image.NRGBA); !ok {
		t.Errorf("8-bit RGB: got %T", rgb8.ToImage())
	}
	gray16 := core.NewBuffer(1, 1, 1, core.Depth16)
	gray16.Pix[0] = 4242
	g, ok := gray16.ToImage().(*image.Gray16)
	if !ok || g.Gray16At(0, 0).Y != 4242 {
		t.Errorf("16-bit gray: got %T", gray16.ToImage())
	}
	gray8 := core.NewBuffer(1, 1, 1, core.Depth8)
	if _, ok := gray8.ToImage().(*image.Gray); !ok {
		t.Errorf("8-bit gray: got %T", gray8.ToImage())
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	b8 := core.FromImage(src, core.Depth8)
	if b8.Height != 1 || b8.Width != 2 || b8.Channels != 3 {
		t.Fatalf("shape: %dx%dx%d", b8.Height, b8.Width, b8.Channels)
	}
	if b8.At(0, 1, 0) != 10 || b8.At(0, 1, 2) != 30 {
		t.Errorf("8-bit samples: %v", b8.Pix)
	}

	b16 := core.FromImage(src, core.Depth16)
	if b16.At(0, 1, 1) != 20*257 {
		t.Errorf("16-bit sample: got %d, want %d", b16.At(0, 1, 1), 20*257)
	}

	// Non-zero bounds origin.
	sub := src.SubImage(image.Rect(1, 0, 2, 1))
	if got := core.FromImage(sub, core.Depth8); got.Width != 1 || got.At(0, 0, 0) != 10 {
		t.Errorf("sub-image: %v", got.Pix)
	}
}

func TestImageRoundTrip16(t *testing.T) {
	b := core.NewBuffer(3, 2, 3, core.Depth16)
	for i := range b.Pix {
		b.Pix[i] = uint16(i * 3001)
	}
	if got := core.FromImage(b.ToImage(), core.Depth16); !got.Equal(b) {
		t.Errorf("round trip: got %v, want %v", got.Pix, b.Pix)
	}
}
