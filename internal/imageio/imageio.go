// Package imageio handles decoding and encoding of images at the pipeline
// boundary: backgrounds and foreground cutouts on the way in, composites and
// instance masks on the way out.
//
// The annotation stage re-reads composites and masks produced earlier in the
// same run, so loads go through a cache keyed by file path.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// jpegQuality is used for .jpg/.jpeg composite output. Masks are never
// written as JPEG.
const jpegQuality = 95

// ImageCache provides thread-safe caching of loaded images to avoid
// redundant disk reads. It is safe for concurrent use by the parallel
// generation workers.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache ready for use.
func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]image.Image)}
}

// Load retrieves an image from the cache or decodes it from disk. Supported
// formats are PNG, JPEG and GIF. The image is cached by the exact path
// string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all cached images, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Load decodes a single image from disk without caching.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path, choosing the encoder from the file extension.
// ".png" is lossless; ".jpg" and ".jpeg" use a fixed high quality setting.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("unsupported image extension: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Dimensions returns the width and height of the image at path, loading it
// through the cache.
func Dimensions(cache *ImageCache, path string) (width, height int, err error) {
	img, err := cache.Load(path)
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
