// Package dataset orchestrates whole generation runs: it crawls the input
// library, drives the per-image composition pipeline, writes the output
// files and assembles the final COCO document.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Input directory layout:
//
//	input/
//	  backgrounds/            flat directory of .png/.jpg/.jpeg photos
//	  foregrounds/
//	    <super-category>/
//	      <category>/
//	        <cutout>.png      RGBA cutouts with transparent surroundings

var allowedBackgroundTypes = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Category is one leaf label with its cutout image paths.
type Category struct {
	Name    string
	Cutouts []string
}

// SuperCategory groups categories under one COCO super-category.
type SuperCategory struct {
	Name       string
	Categories []Category
}

// Library is the crawled input collection. Slices are sorted by name so a
// seeded run picks the same files on every filesystem.
type Library struct {
	SuperCategories []SuperCategory
	Backgrounds     []string
}

// ScanInputs crawls inputDir for foregrounds and backgrounds. Entries that
// do not fit the expected layout are logged and skipped; an empty result on
// either side is a configuration error that aborts the run.
func ScanInputs(inputDir string, log zerolog.Logger) (*Library, error) {
	if _, err := os.Stat(inputDir); err != nil {
		return nil, fmt.Errorf("input directory does not exist: %s", inputDir)
	}

	foregroundsDir := filepath.Join(inputDir, "foregrounds")
	backgroundsDir := filepath.Join(inputDir, "backgrounds")
	if _, err := os.Stat(foregroundsDir); err != nil {
		return nil, fmt.Errorf("foregrounds sub-directory was not found in %s", inputDir)
	}
	if _, err := os.Stat(backgroundsDir); err != nil {
		return nil, fmt.Errorf("backgrounds sub-directory was not found in %s", inputDir)
	}

	supers, err := scanForegrounds(foregroundsDir, log)
	if err != nil {
		return nil, err
	}
	backgrounds, err := scanBackgrounds(backgroundsDir, log)
	if err != nil {
		return nil, err
	}

	return &Library{SuperCategories: supers, Backgrounds: backgrounds}, nil
}

func scanForegrounds(dir string, log zerolog.Logger) ([]SuperCategory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read foregrounds directory %s: %w", dir, err)
	}

	var supers []SuperCategory
	for _, superEntry := range entries {
		if !superEntry.IsDir() {
			log.Warn().Str("path", filepath.Join(dir, superEntry.Name())).
				Msg("file found in foregrounds directory (expected super-category directories), ignoring")
			continue
		}

		superDir := filepath.Join(dir, superEntry.Name())
		categoryEntries, err := os.ReadDir(superDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read super-category directory %s: %w", superDir, err)
		}

		var categories []Category
		for _, catEntry := range categoryEntries {
			if !catEntry.IsDir() {
				log.Warn().Str("path", filepath.Join(superDir, catEntry.Name())).
					Msg("file found in super-category directory (expected category directories), ignoring")
				continue
			}

			catDir := filepath.Join(superDir, catEntry.Name())
			cutouts, err := scanCutouts(catDir, log)
			if err != nil {
				return nil, err
			}
			if len(cutouts) > 0 {
				categories = append(categories, Category{Name: catEntry.Name(), Cutouts: cutouts})
			}
		}
		if len(categories) > 0 {
			supers = append(supers, SuperCategory{Name: superEntry.Name(), Categories: categories})
		}
	}

	if len(supers) == 0 {
		return nil, fmt.Errorf("no valid foregrounds were found in %s", dir)
	}
	return supers, nil
}

func scanCutouts(dir string, log zerolog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read category directory %s: %w", dir, err)
	}

	var cutouts []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			log.Warn().Str("path", path).
				Msg("directory found inside a category directory, ignoring")
			continue
		}
		// Only PNG carries the transparency channel a cutout needs.
		if strings.ToLower(filepath.Ext(entry.Name())) != ".png" {
			log.Warn().Str("path", path).Msg("foreground must be a .png file, skipping")
			continue
		}
		cutouts = append(cutouts, path)
	}
	return cutouts, nil
}

func scanBackgrounds(dir string, log zerolog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backgrounds directory %s: %w", dir, err)
	}

	var backgrounds []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			log.Warn().Str("path", path).
				Msg("directory found inside the backgrounds directory, ignoring")
			continue
		}
		if !allowedBackgroundTypes[strings.ToLower(filepath.Ext(entry.Name()))] {
			log.Warn().Str("path", path).
				Msg("background must be .png, .jpg or .jpeg, ignoring")
			continue
		}
		backgrounds = append(backgrounds, path)
	}

	if len(backgrounds) == 0 {
		return nil, fmt.Errorf("no valid backgrounds were found in %s", dir)
	}
	return backgrounds, nil
}
