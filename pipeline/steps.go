package pipeline

import (
	"math"
	"math/big"

	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/edit"
	apperrors "github.com/Skryldev/snapweave/errors"
)

// truncSlack absorbs float error so that a value landing a hair below an
// integer (e.g. (v-mean)*1.0+mean) truncates to that integer.
const truncSlack = 1e-9

// Apply applies a single edit to buf and returns the result.  Brightness and
// contrast rewrite buf in place and return it; a crop returns a new buffer
// and leaves buf untouched.  The output depth always equals the input depth.
func Apply(buf *core.Buffer, e edit.Edit) (*core.Buffer, error) {
	switch e := e.(type) {
	case edit.Brightness:
		brighten(buf, e.ScaleFactor())
		return buf, nil
	case edit.Contrast:
		contrast(buf, e.ScaleFactor())
		return buf, nil
	case edit.Scaling:
		return crop(buf, e.Region())
	case *edit.Brightness, *edit.Contrast, *edit.Scaling:
		if v := edit.Deref(e); v != nil {
			return Apply(buf, v)
		}
		return nil, &apperrors.UnknownEditError{Name: "<nil>", Property: "<nil>"}
	case nil:
		return nil, &apperrors.UnknownEditError{Name: "<nil>", Property: "<nil>"}
	default:
		return nil, &apperrors.UnknownEditError{Name: e.Name(), Property: string(e.Property())}
	}
}

// ── Brightness ────────────────────────────────────────────────────────────────

// brighten multiplies every sample by f, clipping to [0, current max].
func brighten(buf *core.Buffer, f float64) {
	hi := float64(buf.Max())
	for i, v := range buf.Pix {
		buf.Pix[i] = clipTrunc(float64(v)*f, hi)
	}
}

// ── Contrast ──────────────────────────────────────────────────────────────────

// contrast scales each sample's distance from its channel mean by f,
// clipping to [0, current max].
func contrast(buf *core.Buffer, f float64) {
	means := buf.ChannelMeans()
	if means == nil {
		return
	}
	hi := float64(buf.Max())
	ch := buf.Channels
	for i, v := range buf.Pix {
		m := means[i%ch]
		buf.Pix[i] = clipTrunc((float64(v)-m)*f+m, hi)
	}
}

// clipTrunc clips x to [0, hi] and truncates it toward zero.
func clipTrunc(x, hi float64) uint16 {
	switch {
	case x <= 0:
		return 0
	case x >= hi:
		return uint16(hi)
	}
	return uint16(math.Floor(x + truncSlack))
}

// ── Crop ──────────────────────────────────────────────────────────────────────

// crop cuts rows Start.Y:End.Y and columns Start.X:End.X out of buf.  The
// region is rejected when its diagonal is longer than the image's; past that
// check the bounds are clamped and a reversed or degenerate region yields a
// zero-area buffer.
func crop(buf *core.Buffer, r edit.CropRegion) (*core.Buffer, error) {
	imgX, imgY := buf.Height, buf.Width
	if !cropFits(imgX, imgY, r) {
		return nil, &apperrors.CropOutOfBoundsError{
			ImageX: imgX, ImageY: imgY,
			StartX: r.Start.X, StartY: r.Start.Y,
			EndX: r.End.X, EndY: r.End.Y,
		}
	}

	y0, y1 := clampSpan(r.Start.Y, r.End.Y, buf.Height)
	x0, x1 := clampSpan(r.Start.X, r.End.X, buf.Width)

	out := core.NewBuffer(y1-y0, x1-x0, buf.Channels, buf.Depth)
	rowLen := out.Width * buf.Channels
	if rowLen == 0 {
		return out, nil
	}
	for y := y0; y < y1; y++ {
		src := buf.Pix[buf.Index(y, x0, 0):][:rowLen]
		copy(out.Pix[out.Index(y-y0, 0, 0):], src)
	}
	return out, nil
}

// cropFits reports whether the squared crop diagonal does not exceed the
// squared image diagonal.
func cropFits(imgX, imgY int, r edit.CropRegion) bool {
	sq := func(n int64) *big.Int {
		b := big.NewInt(n)
		return b.Mul(b, b)
	}
	dx := new(big.Int).Sub(big.NewInt(int64(r.End.X)), big.NewInt(int64(r.Start.X)))
	dy := new(big.Int).Sub(big.NewInt(int64(r.End.Y)), big.NewInt(int64(r.Start.Y)))
	cropDiag := new(big.Int).Mul(dx, dx)
	cropDiag.Add(cropDiag, new(big.Int).Mul(dy, dy))
	imgDiag := new(big.Int).Add(sq(int64(imgX)), sq(int64(imgY)))
	return cropDiag.Cmp(imgDiag) <= 0
}

// clampSpan clamps the half-open span [lo, hi) to [0, n].  A span whose start
// is past its end collapses to zero length.
func clampSpan(lo, hi, n int) (int, int) {
	lo = min(max(lo, 0), n)
	hi = min(max(hi, 0), n)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
