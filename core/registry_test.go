package core_test

import (
	"context"
	"testing"

	"github.com/Skryldev/snapweave/core"
)

type nopEncoder struct{ name string }

func (e nopEncoder) Encode(context.Context, *core.Buffer, core.EncodeOptions) ([]byte, error) {
	return []byte(e.name), nil
}

func (e nopEncoder) CanEncode(string) bool { return true }

func TestRegistryNormalisesExtensions(t *testing.T) {
	reg := core.NewRegistry()
	reg.RegisterEncoder(".TIF", nopEncoder{"tiff"})
	reg.RegisterEncoder("jpg", nopEncoder{"jpeg"})

	for _, ext := range []string{".tiff", "tif", ".TIFF"} {
		e, ok := reg.EncoderFor(ext)
		if !ok || e.(nopEncoder).name != "tiff" {
			t.Errorf("EncoderFor(%q): got %v, %v", ext, e, ok)
		}
	}
	if _, ok := reg.EncoderFor(".jpeg"); !ok {
		t.Error("jpg alias not found as .jpeg")
	}
	if _, ok := reg.EncoderFor(".gif"); ok {
		t.Error("unregistered extension found")
	}

	got := reg.Extensions()
	if len(got) != 2 || got[0] != ".jpeg" || got[1] != ".tiff" {
		t.Errorf("extensions: got %v", got)
	}
}

func TestRegistryReplace(t *testing.T) {
	reg := core.NewRegistry()
	reg.RegisterEncoder(".png", nopEncoder{"a"})
	reg.RegisterEncoder(".png", nopEncoder{"b"})
	e, _ := reg.EncoderFor(".png")
	if e.(nopEncoder).name != "b" {
		t.Errorf("got %q, want the later registration", e.(nopEncoder).name)
	}
}

func TestModesAndParams(t *testing.T) {
	if core.ModePreview.String() != "preview" || core.ModeFull.String() != "full" {
		t.Error("mode names")
	}
	p := core.ParamsFor(core.ModePreview)
	if p.OutputBPS != core.Depth8 || p.WhiteBalance != core.WhiteBalanceCamera || p.AutoBright {
		t.Errorf("preview params: %+v", p)
	}
	f := core.ParamsFor(core.ModeFull)
	if f.OutputBPS != core.Depth16 || f.WhiteBalance != core.WhiteBalanceCamera || f.AutoBright {
		t.Errorf("full params: %+v", f)
	}
}

func TestFinish(t *testing.T) {
	b := core.NewBuffer(1, 1, 3, core.Depth8)
	copy(b.Pix, []uint16{50, 100, 150})

	camera := b.Clone()
	core.Finish(camera, core.FullParams())
	if !camera.Equal(b) {
		t.Error("camera white balance without auto bright changed the buffer")
	}

	auto := b.Clone()
	core.Finish(auto, core.PostprocessParams{WhiteBalance: core.WhiteBalanceAuto, OutputBPS: core.Depth8})
	for i, v := range auto.Pix {
		if v != 100 {
			t.Errorf("gray world channel %d: got %d, want 100", i, v)
		}
	}

	bright := b.Clone()
	core.Finish(bright, core.PostprocessParams{WhiteBalance: core.WhiteBalanceCamera, AutoBright: true, OutputBPS: core.Depth8})
	if bright.Max() != 255 {
		t.Errorf("auto bright max: got %d, want 255", bright.Max())
	}
}
