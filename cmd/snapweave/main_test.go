package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/Skryldev/snapweave/edit"
	apperrors "github.com/Skryldev/snapweave/errors"
)

func TestParseEdit(t *testing.T) {
	tests := []struct {
		arg     editArg
		want    edit.Property
		wantErr bool
	}{
		{editArg{"brighten", "1.5"}, edit.PropertyBrightness, false},
		{editArg{"contrast", "0.8"}, edit.PropertyContrast, false},
		{editArg{"crop", "0,0,10,20"}, edit.PropertyScaling, false},
		{editArg{"crop", " 1, 2 ,3,4"}, edit.PropertyScaling, false},
		{editArg{"brighten", "bright"}, "", true},
		{editArg{"contrast", "NaN"}, "", true},
		{editArg{"crop", "0,0,10"}, "", true},
		{editArg{"crop", "0,0,-1,5"}, "", true},
		{editArg{"blur", "2"}, "", true},
	}
	for _, tc := range tests {
		e, err := parseEdit(tc.arg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseEdit(%v): expected error", tc.arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseEdit(%v): %v", tc.arg, err)
			continue
		}
		if e.Property() != tc.want || e.Name() != tc.arg.kind {
			t.Errorf("parseEdit(%v): got %s/%s", tc.arg, e.Name(), e.Property())
		}
	}
}

func TestCropFlagRejectsNegative(t *testing.T) {
	_, err := parseEdit(editArg{"crop", "-1,0,4,4"})
	if !errors.Is(err, apperrors.ErrInvalidEditParameters) {
		t.Errorf("got %v, want ErrInvalidEditParameters", err)
	}
}

func TestEditFlagsKeepOrder(t *testing.T) {
	var edits editList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(editFlag{kind: "brighten", list: &edits}, "brighten", "")
	fs.Var(editFlag{kind: "crop", list: &edits}, "crop", "")
	if err := fs.Parse([]string{"-crop", "0,0,2,2", "-brighten", "2", "-crop", "0,0,1,1"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"crop", "brighten", "crop"}
	if len(edits.args) != len(want) {
		t.Fatalf("got %v", edits.args)
	}
	for i, k := range want {
		if edits.args[i].kind != k {
			t.Errorf("edit %d: got %q, want %q", i, edits.args[i].kind, k)
		}
	}
	if got := (editFlag{kind: "crop", list: &edits}).String(); got != "0,0,2,2 0,0,1,1" {
		t.Errorf("String: got %q", got)
	}
	if err := fs.Parse([]string{"-brighten", "x"}); err == nil {
		t.Error("bad brighten value accepted")
	}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		args []string
		code int
		out  string
	}{
		{nil, 2, ""},
		{[]string{"version"}, 0, "snapweave dev"},
		{[]string{"help"}, 0, "Usage:"},
		{[]string{"resize"}, 2, ""},
		{[]string{"export", "only-one.png"}, 2, ""},
		{[]string{"export", "-crop", "1,2", "a.png", "b.tiff"}, 2, ""},
	}
	for _, tc := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(t.Context(), tc.args, &stdout, &stderr); code != tc.code {
			t.Errorf("run(%v): exit %d, want %d (stderr %q)", tc.args, code, tc.code, stderr.String())
		}
		if !strings.Contains(stdout.String(), tc.out) {
			t.Errorf("run(%v): stdout %q, want %q", tc.args, stdout.String(), tc.out)
		}
	}
}

func writeSource(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExport(t *testing.T) {
	t.Setenv("SNAPWEAVE_LOG_LEVEL", "error")
	in := writeSource(t, 40, 30)
	out := filepath.Join(t.TempDir(), "out.tiff")

	var stdout, stderr bytes.Buffer
	code := run(t.Context(), []string{"export", "-brighten", "1.2", "-crop", "5,10,25,20", "-compression", "none", "-stats", in, out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "wrote "+out) || !strings.Contains(stdout.String(), "brighten") {
		t.Errorf("stdout: %q", stdout.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("export bounds: %v, want 20x10", b)
	}
	if _, ok := img.(*image.NRGBA64); !ok {
		t.Errorf("export is %T, want 16-bit", img)
	}
}

func TestRunExportOutOfBoundsCrop(t *testing.T) {
	t.Setenv("SNAPWEAVE_LOG_LEVEL", "error")
	in := writeSource(t, 10, 10)
	out := filepath.Join(t.TempDir(), "out.tiff")
	var stdout, stderr bytes.Buffer
	if code := run(t.Context(), []string{"export", "-crop", "0,0,50,50", in, out}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("failed export left an output file")
	}
}

func TestRunPreview(t *testing.T) {
	t.Setenv("SNAPWEAVE_LOG_LEVEL", "error")
	in := writeSource(t, 16, 12)
	out := filepath.Join(t.TempDir(), "preview.png")
	var stdout, stderr bytes.Buffer
	if code := run(t.Context(), []string{"preview", "-contrast", "1.1", in, out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 12 {
		t.Errorf("preview %dx%d", cfg.Width, cfg.Height)
	}
}
