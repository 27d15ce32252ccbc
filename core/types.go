package core

import (
	"context"
	"time"
)

// Mode selects which decode a Process call works on.
type Mode int

const (
	// ModePreview works on a copy of the cached 8-bit preview decode.
	ModePreview Mode = iota
	// ModeFull triggers a fresh 16-bit decode.
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModePreview:
		return "preview"
	case ModeFull:
		return "full"
	}
	return "unknown"
}

// WhiteBalance selects how a decoder balances the sensor channels.
type WhiteBalance string

const (
	WhiteBalanceCamera WhiteBalance = "camera"
	WhiteBalanceAuto   WhiteBalance = "auto"
)

// PostprocessParams configures a decoder postprocess call.
type PostprocessParams struct {
	WhiteBalance WhiteBalance
	AutoBright   bool
	OutputBPS    BitDepth
}

// PreviewParams are the fixed parameters of the cached preview decode.
func PreviewParams() PostprocessParams {
	return PostprocessParams{WhiteBalance: WhiteBalanceCamera, OutputBPS: Depth8}
}

// FullParams are the fixed parameters of a full-resolution decode.
func FullParams() PostprocessParams {
	return PostprocessParams{WhiteBalance: WhiteBalanceCamera, OutputBPS: Depth16}
}

// ParamsFor returns the postprocess parameters used for mode.
func ParamsFor(m Mode) PostprocessParams {
	if m == ModePreview {
		return PreviewParams()
	}
	return FullParams()
}

// EncodeOptions carries format-specific encoding parameters.  Encoders
// ignore the fields that do not apply to their format.
type EncodeOptions struct {
	Quality       int    // JPEG/WebP 1-100; 0 = encoder default
	Compression   string // TIFF: "none" or "deflate"; "" = encoder default
	Predictor     bool   // TIFF horizontal differencing
	Lossless      bool   // WebP lossless / PNG best compression
	StripMetadata bool
}

// StorageKey uniquely identifies a stored export.
type StorageKey struct {
	Bucket string
	Path   string
}

// Hook is an optional observer invoked around each applied edit.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, buf *Buffer)
	AfterStep(ctx context.Context, stepName string, buf *Buffer, d time.Duration, err error)
}
