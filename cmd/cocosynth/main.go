package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/akTwelve/cocosynth/internal/coco"
	"github.com/akTwelve/cocosynth/internal/colors"
	"github.com/akTwelve/cocosynth/internal/config"
	"github.com/akTwelve/cocosynth/internal/dataset"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("cocosynth %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	case "--help", "-h", "help":
		printUsage()
	case "generate":
		runGenerate(os.Args[2:])
	case "annotate":
		runAnnotate(os.Args[2:])
	case "dataset-info":
		runDatasetInfo(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("cocosynth - synthetic COCO dataset generator")
	fmt.Println()
	fmt.Println("Usage: cocosynth <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate       Compose synthetic images with instance masks")
	fmt.Println("  dataset-info   Write a dataset_info.json describing the dataset")
	fmt.Println("  annotate       Extract COCO annotations from generated masks")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'cocosynth <command> --help' for command options.")
}

// newLogger builds the console logger shared by all commands.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug || os.Getenv("COCOSYNTH_LOG_LEVEL") == "debug" {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	cfg := config.DefaultGenerate()

	fs.StringVar(&cfg.InputDir, "input", "", "input directory with foregrounds/ and backgrounds/")
	fs.StringVar(&cfg.OutputDir, "output", "", "output directory for images, masks and JSON files")
	fs.IntVar(&cfg.Count, "count", cfg.Count, "number of images to generate")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "output image width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "output image height in pixels")
	fs.StringVar(&cfg.OutputType, "type", cfg.OutputType, "composite image type: png, jpg or jpeg")
	fs.IntVar(&cfg.MaxForegrounds, "max-foregrounds", cfg.MaxForegrounds, "maximum foreground instances per image")
	fs.Int64Var(&cfg.Seed, "seed", 0, "RNG seed for reproducible runs (0 = time-based)")
	fs.BoolVar(&cfg.Silent, "silent", false, "write into a non-empty output directory without complaining")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel image pipelines")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	log := newLogger(*debug)

	if cfg.MaxForegrounds > len(cfg.Palette) {
		palette, err := colors.GeneratePalette(cfg.MaxForegrounds)
		if err != nil {
			fatal(log, err)
		}
		cfg.Palette = palette
	}

	gen, err := dataset.NewGenerator(cfg, log)
	if err != nil {
		fatal(log, err)
	}
	if _, err := gen.Run(); err != nil {
		fatal(log, err)
	}
}

func runAnnotate(args []string) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	cfg := config.DefaultAnnotate()

	fs.StringVar(&cfg.MaskDefinition, "mask-definition", "", "path to mask_definitions.json")
	fs.StringVar(&cfg.DatasetInfo, "dataset-info", "", "path to dataset_info.json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	log := newLogger(*debug)

	ann, err := dataset.NewAnnotator(cfg, log)
	if err != nil {
		fatal(log, err)
	}
	if _, err := ann.Run(); err != nil {
		fatal(log, err)
	}
}

func runDatasetInfo(args []string) {
	fs := flag.NewFlagSet("dataset-info", flag.ExitOnError)

	output := fs.String("output", "", "dataset directory to write dataset_info.json into")
	description := fs.String("description", "", "dataset description")
	url := fs.String("url", "", "dataset URL")
	version := fs.String("dataset-version", "0.1.0", "dataset version")
	contributor := fs.String("contributor", "", "dataset contributor")
	licenseURL := fs.String("license-url", "", "image license URL")
	licenseName := fs.String("license-name", "", "image license name")
	licenseID := fs.Int("license-id", 1, "image license id")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	log := newLogger(*debug)
	if *output == "" {
		fatal(log, fmt.Errorf("output directory is required"))
	}

	info := dataset.NewDatasetInfo(*description, *url, *version, *contributor, coco.License{
		URL:  *licenseURL,
		ID:   *licenseID,
		Name: *licenseName,
	})
	if err := info.WriteFile(*output); err != nil {
		fatal(log, err)
	}
	log.Info().Str("directory", *output).Msg("dataset info written")
}

func fatal(log zerolog.Logger, err error) {
	log.Error().Msg(err.Error())
	os.Exit(1)
}
