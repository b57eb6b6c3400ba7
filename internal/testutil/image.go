package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PageConfig configures a synthetic digitized-page image.
type PageConfig struct {
	Width      int
	Height     int
	Label      string
	Background color.Color
	Foreground color.Color
	NoiseLevel float64 // 0 disables noise
}

// DefaultPageConfig returns a plausible scan-like page configuration.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Width:      800,
		Height:     1200,
		Label:      "Page",
		Background: color.RGBA{248, 248, 248, 255},
		Foreground: color.RGBA{32, 32, 32, 255},
	}
}

// GeneratePage renders a synthetic digitized page: a scan-colored
// background with a centered label, optionally degraded with noise to
// simulate scanning artifacts.
func GeneratePage(config PageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: basicfont.Face7x13,
	}
	textWidth := font.MeasureString(basicfont.Face7x13, config.Label).Ceil()
	x := (config.Width - textWidth) / 2
	y := config.Height / 2
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(config.Label)

	if config.NoiseLevel > 0 {
		return addNoise(img, config.NoiseLevel)
	}
	return img
}

// CreateBlankPage creates a uniformly colored page of the given size.
func CreateBlankPage(width, height int, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	return img
}

// addNoise flips a fraction of pixels to simulate scanning artifacts.
func addNoise(img *image.RGBA, noiseLevel float64) *image.RGBA {
	bounds := img.Bounds()
	noisy := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if math.Mod(float64(x*y), 1.0/noiseLevel) < 1.0 && (x+y)%2 == 0 {
				r = 65535 - r
				g = 65535 - g
				b = 65535 - b
			}
			//nolint:gosec // G115: safe conversion for synthetic pixel noise
			noisy.Set(x, y, color.RGBA64{uint16(r), uint16(g), uint16(b), uint16(a)})
		}
	}
	return noisy
}

// SaveJPEGPage writes a generated page as a JPEG file, creating parent
// directories as needed.
func SaveJPEGPage(t *testing.T, img image.Image, path string, quality int) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)))

	file, err := os.Create(path) //nolint:gosec // G304: test file creation with controlled path
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	require.NoError(t, jpeg.Encode(file, img, &jpeg.Options{Quality: quality}))
}

// SaveImage saves an image as PNG to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)))

	file, err := os.Create(path) //nolint:gosec // G304: test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() { require.NoError(t, file.Close()) }()

	require.NoError(t, png.Encode(file, img), "Failed to encode PNG image")
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "Failed to decode image")

	return img
}

// CompareImages compares two images and returns true if their average
// per-pixel color distance is within tolerance (0..1).
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds1 := img1.Bounds()
	bounds2 := img2.Bounds()
	if bounds1 != bounds2 {
		return false
	}

	var totalDiff, pixelCount float64
	for y := bounds1.Min.Y; y < bounds1.Max.Y; y++ {
		for x := bounds1.Min.X; x < bounds1.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x, y).RGBA()
			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)
			totalDiff += math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			pixelCount++
		}
	}

	avgDiff := totalDiff / pixelCount
	maxDiff := math.Sqrt(4 * 65535 * 65535)
	return (avgDiff / maxDiff) <= tolerance
}

// GenerateDigitalVolume creates a set of sequentially labeled page JPEGs
// under dir, named 0001.jpg .. NNNN.jpg, and returns their paths.
func GenerateDigitalVolume(t *testing.T, dir string, pageCount int) []string {
	t.Helper()

	require.NoError(t, EnsureDir(dir))

	paths := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		config := DefaultPageConfig()
		config.Label = fmt.Sprintf("Page %d", i)

		img := GeneratePage(config)
		path := filepath.Join(dir, fmt.Sprintf("%04d.jpg", i))
		SaveJPEGPage(t, img, path, 90)
		paths = append(paths, path)
	}
	return paths
}
