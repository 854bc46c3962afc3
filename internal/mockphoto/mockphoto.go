// Package mockphoto draws a placeholder cover photo for development setups
// that have no real picture yet.
package mockphoto

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	Width  = 800
	Height = 1200
)

// Gradient renders a warm vertical gradient of the given size.
func Gradient(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{A: 255})
	for y := 0; y < h; y++ {
		fy := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			fx := float64(x) / float64(w)
			img.SetNRGBA(x, y, color.NRGBA{
				R: clamp(240 - fy*40 + fx*15),
				G: clamp(220 - fy*50 + fx*10),
				B: clamp(210 - fy*50),
				A: 255,
			})
		}
	}
	return img
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Generate writes cover.jpg and cover.webp into dir and returns their paths.
func Generate(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	img := Gradient(Width, Height)

	jpgPath := filepath.Join(dir, "cover.jpg")
	if err := imaging.Save(img, jpgPath, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", jpgPath, err)
	}

	webpPath := filepath.Join(dir, "cover.webp")
	f, err := os.Create(webpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", webpPath, err)
	}
	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode %s: %w", webpPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return []string{jpgPath, webpPath}, nil
}
