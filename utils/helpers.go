package utils

import (
	"path/filepath"
	"strings"
)

const (
	FormatTIFF    = "tiff"
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatWebP    = "webp"
	FormatUnknown = "unknown"
)

// NormalizeExt lower-cases ext, adds the leading dot and folds aliases
// (".tif" -> ".tiff", ".jpg" -> ".jpeg").  An empty ext stays empty.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch ext {
	case ".tif":
		return ".tiff"
	case ".jpg", ".jpe":
		return ".jpeg"
	}
	return ext
}

// FormatForExt maps an extension to its format name.
func FormatForExt(ext string) string {
	switch NormalizeExt(ext) {
	case ".tiff":
		return FormatTIFF
	case ".png":
		return FormatPNG
	case ".jpeg":
		return FormatJPEG
	case ".webp":
		return FormatWebP
	}
	return FormatUnknown
}

// ExtOf returns the normalised extension of path.
func ExtOf(path string) string {
	return NormalizeExt(filepath.Ext(path))
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
