package dataset

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/akTwelve/cocosynth/internal/coco"
	"github.com/akTwelve/cocosynth/internal/compose"
	"github.com/akTwelve/cocosynth/internal/config"
	"github.com/akTwelve/cocosynth/internal/imageio"
)

// zeroPadding is the width of output sequence numbers: 00000027.jpg.
// Eight digits support up to 100 million images per run.
const zeroPadding = 8

// Generator produces one synthetic dataset: composites with their masks
// and the mask-definitions JSON describing them.
type Generator struct {
	cfg   config.Generate
	log   zerolog.Logger
	cache *imageio.ImageCache
}

// NewGenerator validates cfg and returns a ready generator.
func NewGenerator(cfg config.Generate, log zerolog.Logger) (*Generator, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, log: log, cache: imageio.NewImageCache()}, nil
}

// imageResult carries one finished image's metadata back to the collector.
type imageResult struct {
	imagePath string // relative to the output directory
	maskPath  string
	legend    []coco.ColorEntry
}

// Run generates the configured number of composites and masks, writes them
// under the output directory and returns the accumulated mask definitions
// (also written to mask_definitions.json).
//
// Images are independent pipelines except for their sequence index, so they
// are generated by cfg.Workers goroutines. Output filenames and per-image
// RNG seeds are derived from the image index up front, which keeps results
// identical regardless of worker count.
func (g *Generator) Run() (*coco.MaskDefinitions, error) {
	lib, err := ScanInputs(g.cfg.InputDir, g.log)
	if err != nil {
		return nil, err
	}

	if err := g.prepareOutputDirs(); err != nil {
		return nil, err
	}

	seed := g.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	master := rand.New(rand.NewSource(seed))
	seeds := make([]int64, g.cfg.Count)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	g.log.Info().
		Int("count", g.cfg.Count).
		Int("width", g.cfg.Width).
		Int("height", g.cfg.Height).
		Int("workers", g.cfg.Workers).
		Msg("generating images with masks")

	results := make([]imageResult, g.cfg.Count)
	if err := g.runWorkers(lib, seeds, results); err != nil {
		return nil, err
	}

	defs := coco.NewMaskDefinitions()
	for _, res := range results {
		defs.AddMask(res.imagePath, res.maskPath, res.legend)
	}
	if err := defs.WriteFile(g.cfg.OutputDir); err != nil {
		return nil, err
	}

	g.log.Info().Int("count", g.cfg.Count).Msg("image composition completed")
	return defs, nil
}

// runWorkers fans the image indices out over the configured worker count
// and fails fast on the first error.
func (g *Generator) runWorkers(lib *Library, seeds []int64, results []imageResult) error {
	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < g.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := g.generateOne(lib, i, seeds[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("image %d: %w", i, err)
					}
					mu.Unlock()
					continue
				}
				results[i] = res
			}
		}()
	}

	for i := range seeds {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

// generateOne builds composite and mask number index using its private RNG
// stream and writes both files.
func (g *Generator) generateOne(lib *Library, index int, seed int64) (imageResult, error) {
	rng := rand.New(rand.NewSource(seed))

	backgroundPath := lib.Backgrounds[rng.Intn(len(lib.Backgrounds))]
	background, err := g.cache.Load(backgroundPath)
	if err != nil {
		return imageResult{}, err
	}

	numForegrounds := 1 + rng.Intn(g.cfg.MaxForegrounds)
	foregrounds := make([]compose.Foreground, 0, numForegrounds)
	legend := make([]coco.ColorEntry, 0, numForegrounds)

	for slot := 0; slot < numForegrounds; slot++ {
		super := lib.SuperCategories[rng.Intn(len(lib.SuperCategories))]
		category := super.Categories[rng.Intn(len(super.Categories))]
		cutoutPath := category.Cutouts[rng.Intn(len(category.Cutouts))]

		cutout, err := g.cache.Load(cutoutPath)
		if err != nil {
			return imageResult{}, err
		}
		transformed, err := compose.TransformForeground(cutout, rng)
		if err != nil {
			return imageResult{}, fmt.Errorf("%w: %s", err, cutoutPath)
		}

		instanceColor := g.cfg.Palette[slot]
		foregrounds = append(foregrounds, compose.Foreground{
			Image:         transformed,
			Color:         instanceColor,
			Category:      category.Name,
			SuperCategory: super.Name,
		})
		legend = append(legend, coco.ColorEntry{
			Key: instanceColor.Key(),
			ColorCategory: coco.ColorCategory{
				Category:      category.Name,
				SuperCategory: super.Name,
			},
		})
	}

	result, err := compose.Composite(background, g.cfg.Width, g.cfg.Height, foregrounds, g.cfg.AlphaThreshold, rng)
	if err != nil {
		return imageResult{}, fmt.Errorf("%w (background %s)", err, backgroundPath)
	}

	name := fmt.Sprintf("%0*d", zeroPadding, index)
	imageRel := filepath.ToSlash(filepath.Join("images", name+g.cfg.OutputType))
	maskRel := filepath.ToSlash(filepath.Join("masks", name+".png"))

	if err := imageio.Save(filepath.Join(g.cfg.OutputDir, filepath.FromSlash(imageRel)), result.Composite); err != nil {
		return imageResult{}, err
	}
	// Masks are always PNG: instance colors must survive pixel-exact.
	if err := imageio.Save(filepath.Join(g.cfg.OutputDir, filepath.FromSlash(maskRel)), result.Mask); err != nil {
		return imageResult{}, err
	}

	g.log.Debug().Str("image", imageRel).Int("foregrounds", numForegrounds).Msg("generated")
	return imageResult{imagePath: imageRel, maskPath: maskRel, legend: legend}, nil
}

// prepareOutputDirs creates the output tree and, unless the run is silent,
// refuses to write into an images directory that already has contents.
func (g *Generator) prepareOutputDirs() error {
	imagesDir := filepath.Join(g.cfg.OutputDir, "images")
	masksDir := filepath.Join(g.cfg.OutputDir, "masks")

	for _, dir := range []string{g.cfg.OutputDir, imagesDir, masksDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if !g.cfg.Silent {
		entries, err := os.ReadDir(imagesDir)
		if err != nil {
			return fmt.Errorf("failed to read output directory %s: %w", imagesDir, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("output directory is not empty, files may be overwritten: %s (run with --silent to proceed)", imagesDir)
		}
	}
	return nil
}
