package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// progressEvery is the number of rows between progress log lines
const progressEvery = 3

// options holds the parsed command line
type options struct {
	sceneName string
	sceneFile string
	width     int
	samples   int
	depth     int
	cell      int
	seed      int64
	out       string
	scale     float64
	passes    int
	upload    bool
	list      bool
	help      bool
}

func parseOptions(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.sceneName, "scene", "three-spheres", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.sceneFile, "scene-file", "", "Path to a JSON scene file (overrides -scene)")
	fs.IntVar(&opts.width, "width", 0, "Image width in pixels; height follows the camera aspect ratio (0 = scene default)")
	fs.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	fs.IntVar(&opts.cell, "cell", 0, "Pixel cell size for coarse previews (0 = scene default)")
	fs.Int64Var(&opts.seed, "seed", 0, "Random seed (0 = scene default)")
	fs.StringVar(&opts.out, "out", "", "Output file; the extension picks the format (default <output dir>/<scene>/render_<timestamp>.png)")
	fs.Float64Var(&opts.scale, "scale", 1, "Resize the finished image by this factor")
	fs.IntVar(&opts.passes, "passes", 1, "Number of progressive passes; each pass saves an updated image")
	fs.BoolVar(&opts.upload, "upload", false, "Upload the final image to the S3 bucket from the environment")
	fs.BoolVar(&opts.list, "list", false, "List JSON scene files in the scenes directory")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	switch {
	case opts.width < 0 || opts.samples < 0 || opts.depth < 0 || opts.cell < 0:
		return nil, fs, fmt.Errorf("-width, -samples, -depth and -cell must not be negative")
	case opts.passes < 1:
		return nil, fs, fmt.Errorf("-passes must be at least 1, got %d", opts.passes)
	case opts.scale <= 0:
		return nil, fs, fmt.Errorf("-scale must be positive, got %g", opts.scale)
	}
	return opts, fs, nil
}

func printHelp(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Sphere Path Tracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Fprintf(w, "  %-15s - %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png unless -out is given")
}

// createScene builds the scene named on the command line with its overrides applied
func createScene(opts *options) (*scene.Scene, error) {
	var s *scene.Scene
	var err error
	if opts.sceneFile != "" {
		s, err = scene.NewFileScene(opts.sceneFile)
	} else {
		s, err = scene.Create(opts.sceneName)
	}
	if err != nil {
		return nil, err
	}

	if opts.width > 0 {
		s.SetWidth(opts.width)
	}
	s.SamplingConfig = renderer.MergeSamplingConfig(s.SamplingConfig, renderer.SamplingConfig{
		SamplesPerPixel: opts.samples,
		MaxDepth:        opts.depth,
		PixelCell:       opts.cell,
		Seed:            opts.seed,
	})
	return s, nil
}

// outputPath returns the file the render is written to
func outputPath(opts *options, outputDir, sceneName string, now time.Time) string {
	if opts.out != "" {
		return opts.out
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join(outputDir, sceneName, fmt.Sprintf("render_%s.png", timestamp))
}

// progressLogger logs the share of finished rows every progressEvery rows
func progressLogger(logger core.Logger) renderer.ProgressFunc {
	return func(p renderer.Progress) {
		if p.Y%progressEvery == 0 || p.Y == p.Height-1 {
			logger.Printf("Progress: %.1f%%\n", p.Percent())
		}
	}
}

// render runs a single pass or a progressive render, calling save for every finished image
func render(ctx context.Context, s *scene.Scene, passes int, logger core.Logger, save func(img image.Image, stats renderer.RenderStats, final bool) error) error {
	rt, err := s.NewRaytracer(renderer.SamplingConfig{})
	if err != nil {
		return err
	}
	rt.SetProgressFunc(progressLogger(logger))

	if passes == 1 {
		img, stats := rt.RenderPass()
		logger.Printf("Render completed in %v\n", stats.Duration)
		return save(img, stats, true)
	}

	progressive, err := renderer.NewProgressiveRaytracer(rt, renderer.ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
		MaxPasses:          passes,
	}, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	passChan, errChan := progressive.RenderProgressive(ctx)
	for result := range passChan {
		if err := save(result.Image, result.Stats, result.IsLast); err != nil {
			return err
		}
	}
	if err := <-errChan; err != nil {
		return err
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, fs, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.help {
		printHelp(fs, stdout)
		return nil
	}

	cfg := config.Load()
	logger := renderer.NewDefaultLogger()

	if opts.list {
		scenes, err := scene.ListFileScenes(filepath.Join(cfg.RootDir, "scenes"), logger)
		if err != nil {
			return err
		}
		for _, info := range scenes {
			fmt.Fprintf(stdout, "  %-30s %s\n", info.FilePath, info.Description)
		}
		return nil
	}

	s, err := createScene(opts)
	if err != nil {
		return err
	}

	var uploader *output.S3Uploader
	if opts.upload {
		if !cfg.HasS3() {
			return fmt.Errorf("-upload needs S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET")
		}
		uploader, err = output.NewS3Uploader(output.S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
		}, logger)
		if err != nil {
			return err
		}
	}

	filename := outputPath(opts, cfg.OutputDir, s.Name, time.Now())
	sampling := s.SamplingConfig
	log.Printf("Rendering %s (%d spheres) at %dx%d, %d samples/pixel, max depth %d",
		s.Name, s.GetPrimitiveCount(), sampling.Width, sampling.Height, sampling.SamplesPerPixel, sampling.MaxDepth)

	save := func(img image.Image, stats renderer.RenderStats, final bool) error {
		img = output.Scale(img, opts.scale)
		if err := output.Save(filename, img); err != nil {
			return err
		}
		if !final {
			return nil
		}

		log.Printf("Samples per pixel: %.1f (range %d - %d)", stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)
		log.Printf("Render saved as %s", filename)
		if uploader != nil {
			key := filepath.ToSlash(filepath.Join(s.Name, filepath.Base(filename)))
			return uploader.Upload(ctx, key, img)
		}
		return nil
	}

	return render(ctx, s, opts.passes, logger, save)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
