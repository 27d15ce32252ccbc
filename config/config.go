package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skryldev/snapweave/utils"
)

// Backend selects the decoder and encoder implementation.
type Backend string

const (
	BackendNative Backend = "native" // imaging + x/image codecs
	BackendVips   Backend = "vips"   // libvips via govips
)

// Environment variables that override file values.
const (
	EnvLogLevel  = "SNAPWEAVE_LOG_LEVEL"
	EnvLogFormat = "SNAPWEAVE_LOG_FORMAT"
	EnvBackend   = "SNAPWEAVE_BACKEND"
	EnvOutputDir = "SNAPWEAVE_OUTPUT_DIR"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Logging.
	LogLevel  string `yaml:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `yaml:"log_format"` // "text" or "json"

	Backend Backend `yaml:"backend"`

	// Export defaults.
	DefaultExt      string `yaml:"default_ext"`      // used when Export gets no extension
	JPEGQuality     int    `yaml:"jpeg_quality"`     // 1-100
	TIFFCompression string `yaml:"tiff_compression"` // "none" or "deflate"

	// Longest edge of CLI preview thumbnails; 0 writes the preview at full size.
	PreviewMaxSize int `yaml:"preview_max_size"`

	// Root directory of the local storage adapter; empty uses export paths as given.
	OutputDir string `yaml:"output_dir"`

	Vips VipsConfig `yaml:"vips"`
}

// VipsConfig configures libvips when Backend is BackendVips.
type VipsConfig struct {
	MaxCacheSize int  `yaml:"max_cache_size"`
	MaxWorkers   int  `yaml:"max_workers"` // 0 = runtime.NumCPU()
	ReportLeaks  bool `yaml:"report_leaks"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Backend:         BackendNative,
		DefaultExt:      ".tiff",
		JPEGQuality:     95,
		TIFFCompression: "deflate",
		PreviewMaxSize:  1024,
		Vips: VipsConfig{
			MaxCacheSize: 100,
		},
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LogLevel %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: LogFormat must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.Backend != BackendNative && c.Backend != BackendVips {
		return fmt.Errorf("config: unknown Backend %q", c.Backend)
	}
	if utils.FormatForExt(c.DefaultExt) == utils.FormatUnknown {
		return fmt.Errorf("config: unsupported DefaultExt %q", c.DefaultExt)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.New("config: JPEGQuality must be between 1 and 100")
	}
	if c.TIFFCompression != "none" && c.TIFFCompression != "deflate" {
		return fmt.Errorf("config: TIFFCompression must be \"none\" or \"deflate\", got %q", c.TIFFCompression)
	}
	if c.PreviewMaxSize < 0 {
		return errors.New("config: PreviewMaxSize must not be negative")
	}
	if c.Vips.MaxCacheSize < 0 || c.Vips.MaxWorkers < 0 {
		return errors.New("config: Vips limits must not be negative")
	}
	return nil
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result.  An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend = Backend(strings.ToLower(v))
	}
	if v, ok := lookup(EnvOutputDir); ok {
		c.OutputDir = v
	}
}
