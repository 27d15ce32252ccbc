// Command snapweave applies brightness, contrast and crop edits to a photo
// and writes a 16-bit export or an 8-bit preview.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/Skryldev/snapweave"
	"github.com/Skryldev/snapweave/adapters/encoder"
	"github.com/Skryldev/snapweave/adapters/vips"
	"github.com/Skryldev/snapweave/config"
	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/hooks"
	"github.com/Skryldev/snapweave/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `snapweave - non-destructive photo edits

Usage:
  snapweave export  [flags] <input> <output>
  snapweave preview [flags] <input> <output>
  snapweave version

Edit flags may repeat and are applied in the order given:
  -brighten F          scale every sample by F
  -contrast F          scale distance from the channel mean by F
  -crop x0,y0,x1,y1    keep rows y0:y1 and columns x0:x1

Run 'snapweave <command> -h' for the remaining flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "snapweave %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		return 0
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0
	case "export", "preview":
	default:
		fmt.Fprintf(stderr, "snapweave: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		edits       editList
		configPath  = fs.String("config", "", "YAML config file")
		ext         = fs.String("ext", "", "export format extension (default from config)")
		quality     = fs.Int("quality", 0, "JPEG/WebP quality 1-100 (0 = config default)")
		compression = fs.String("compression", "", "TIFF compression: none or deflate")
		predictor   = fs.Bool("predictor", false, "TIFF horizontal predictor")
		stats       = fs.Bool("stats", false, "print per-edit timings")
	)
	fs.Var(editFlag{kind: "brighten", list: &edits}, "brighten", "brightness factor (repeatable)")
	fs.Var(editFlag{kind: "contrast", list: &edits}, "contrast", "contrast factor (repeatable)")
	fs.Var(editFlag{kind: "crop", list: &edits}, "crop", "crop region x0,y0,x1,y1 (repeatable)")
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(stderr, "snapweave %s: want <input> <output>, got %d arguments\n", cmd, fs.NArg())
		return 2
	}
	in, out := fs.Arg(0), fs.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "snapweave: %v\n", err)
		return 1
	}
	logger := logging.Init(cfg)

	opts := []snapweave.Option{
		snapweave.WithLogger(logger),
		snapweave.WithHook(hooks.NewLoggingHook(logger)),
	}
	metrics := hooks.NewInMemoryMetrics()
	if *stats {
		opts = append(opts, snapweave.WithHook(hooks.NewMetricsHook(metrics)))
	}
	if cfg.Backend == config.BackendVips {
		backend := vips.NewBackend(vips.BackendConfig{
			DefaultQuality:     cfg.JPEGQuality,
			DefaultCompression: cfg.TIFFCompression,
			MaxCacheSize:       cfg.Vips.MaxCacheSize,
			MaxWorkers:         cfg.Vips.MaxWorkers,
			ReportLeaks:        cfg.Vips.ReportLeaks,
		})
		defer backend.Shutdown()
		reg := encoder.NewRegistry(encoder.Defaults{
			JPEGQuality:     cfg.JPEGQuality,
			TIFFCompression: cfg.TIFFCompression,
		})
		vips.RegisterVipsBackend(reg, backend)
		opts = append(opts, snapweave.WithDecoder(backend), snapweave.WithRegistry(reg))
	}

	photo, err := snapweave.Open(ctx, in, cfg, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "snapweave: %v\n", err)
		return 1
	}
	defer photo.Close()

	for _, a := range edits.args {
		e, err := parseEdit(a)
		if err != nil {
			fmt.Fprintf(stderr, "snapweave: %v\n", err)
			return 2
		}
		photo.AddEdit(e)
	}

	switch cmd {
	case "export":
		err = photo.Export(ctx, out, *ext, core.EncodeOptions{
			Quality:     *quality,
			Compression: *compression,
			Predictor:   *predictor,
		})
	case "preview":
		err = writePreview(ctx, photo, out, cfg.PreviewMaxSize)
	}
	if err != nil {
		fmt.Fprintf(stderr, "snapweave: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", out)

	if *stats {
		printStats(stdout, metrics.Snapshot())
	}
	return 0
}

// writePreview renders the 8-bit preview, fits it within maxSize pixels on
// its longest edge and saves it in the format named by the path extension.
func writePreview(ctx context.Context, photo *snapweave.Photo, path string, maxSize int) error {
	buf, err := photo.Preview(ctx)
	if err != nil {
		return err
	}
	if buf.Empty() {
		return fmt.Errorf("preview: edits produced an empty image")
	}
	img := buf.ToImage()
	if maxSize > 0 && (buf.Width > maxSize || buf.Height > maxSize) {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}
	return imaging.Save(img, path)
}

func printStats(w io.Writer, snap hooks.MetricsSnapshot) {
	names := make([]string, 0, len(snap.StepCalls))
	for name := range snap.StepCalls {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "edit timings:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s calls=%d total=%s errors=%d\n",
			name, snap.StepCalls[name], snap.StepDurations[name], snap.StepErrors[name])
	}
	fmt.Fprintf(w, "  throughput   %d bytes\n", snap.TotalThroughputB)
}
