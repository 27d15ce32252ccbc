// Package edit defines the non-destructive edits a photo accumulates and the
// ordered stack that holds them.
//
// Edit is a closed set: Brightness, Contrast and Scaling are its only
// variants, and the unexported marker method keeps other packages from
// adding more.  Every variant is an immutable value; its Property tag is
// fixed by its type.
package edit

import (
	"fmt"
	"math"

	apperrors "github.com/Skryldev/snapweave/errors"
)

// Property is the kind tag of an edit.  It is a diagnostic label only; the
// pipeline dispatches on the Go type.
type Property string

const (
	PropertyBrightness Property = "brightness"
	PropertyContrast   Property = "contrast"
	PropertyScaling    Property = "scaling"
)

// Edit is one transformation to apply to an image buffer.
type Edit interface {
	Name() string
	Property() Property
	sealed()
}

// ── Brightness ────────────────────────────────────────────────────────────────

// Brightness multiplies every sample by a scale factor.  A factor of zero is
// valid and produces an all-black image.
type Brightness struct {
	name  string
	scale float64
}

// NewBrightness returns a brightness edit.  factor must be finite.
func NewBrightness(name string, factor float64) (Brightness, error) {
	if err := checkFactor("brightness", factor); err != nil {
		return Brightness{}, err
	}
	return Brightness{name: name, scale: factor}, nil
}

func (b Brightness) Name() string         { return b.name }
func (b Brightness) Property() Property   { return PropertyBrightness }
func (b Brightness) ScaleFactor() float64 { return b.scale }
func (Brightness) sealed()                {}

func (b Brightness) String() string {
	return fmt.Sprintf("%s(%s, %g)", b.Property(), b.name, b.scale)
}

// ── Contrast ──────────────────────────────────────────────────────────────────

// Contrast scales every sample's distance from its channel mean.
type Contrast struct {
	name  string
	scale float64
}

// NewContrast returns a contrast edit.  factor must be finite.
func NewContrast(name string, factor float64) (Contrast, error) {
	if err := checkFactor("contrast", factor); err != nil {
		return Contrast{}, err
	}
	return Contrast{name: name, scale: factor}, nil
}

func (c Contrast) Name() string         { return c.name }
func (c Contrast) Property() Property   { return PropertyContrast }
func (c Contrast) ScaleFactor() float64 { return c.scale }
func (Contrast) sealed()                {}

func (c Contrast) String() string {
	return fmt.Sprintf("%s(%s, %g)", c.Property(), c.name, c.scale)
}

// ── Scaling ───────────────────────────────────────────────────────────────────

// Point is a pixel coordinate; X indexes columns and Y indexes rows.
type Point struct {
	X, Y int
}

// CropRegion is a rectangle given by two diagonal corners.  Start is the
// top-left corner and End the bottom-right one; neither is checked against an
// image until the crop is applied.
type CropRegion struct {
	Start Point
	End   Point
}

// NewCropRegion validates that every coordinate is non-negative.
func NewCropRegion(start, end Point) (CropRegion, error) {
	for _, f := range []struct {
		field string
		v     int
	}{
		{"crop_start.x", start.X}, {"crop_start.y", start.Y},
		{"crop_end.x", end.X}, {"crop_end.y", end.Y},
	} {
		if f.v < 0 {
			return CropRegion{}, &apperrors.InvalidEditParametersError{
				Edit: "crop", Field: f.field, Reason: fmt.Sprintf("must be non-negative, got %d", f.v),
			}
		}
	}
	return CropRegion{Start: start, End: end}, nil
}

// Scaling crops the image to a CropRegion.
type Scaling struct {
	name   string
	region CropRegion
}

// NewScaling returns a crop edit over region.
func NewScaling(name string, region CropRegion) (Scaling, error) {
	region, err := NewCropRegion(region.Start, region.End)
	if err != nil {
		return Scaling{}, err
	}
	return Scaling{name: name, region: region}, nil
}

func (s Scaling) Name() string       { return s.name }
func (s Scaling) Property() Property { return PropertyScaling }
func (s Scaling) Region() CropRegion { return s.region }
func (Scaling) sealed()              {}

func (s Scaling) String() string {
	return fmt.Sprintf("%s(%s, (%d,%d)->(%d,%d))", s.Property(), s.name,
		s.region.Start.X, s.region.Start.Y, s.region.End.X, s.region.End.Y)
}

func checkFactor(kind string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &apperrors.InvalidEditParametersError{
			Edit: kind, Field: "scale_factor", Reason: fmt.Sprintf("must be finite, got %v", f),
		}
	}
	return nil
}

// compile-time interface checks
var (
	_ Edit = Brightness{}
	_ Edit = Contrast{}
	_ Edit = Scaling{}
)

// Deref returns e with a pointer variant replaced by the value it points to.
// A nil edit or a nil pointer variant yields nil.
func Deref(e Edit) Edit {
	switch v := e.(type) {
	case *Brightness:
		if v == nil {
			return nil
		}
		return *v
	case *Contrast:
		if v == nil {
			return nil
		}
		return *v
	case *Scaling:
		if v == nil {
			return nil
		}
		return *v
	}
	return e
}
