package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPageConfig(t *testing.T) {
	config := DefaultPageConfig()
	assert.Equal(t, 800, config.Width)
	assert.Equal(t, 1200, config.Height)
	assert.Equal(t, "Page", config.Label)
}

func TestGeneratePage(t *testing.T) {
	config := DefaultPageConfig()
	config.Label = "Test"
	config.Width, config.Height = 320, 240

	img := GeneratePage(config)
	require.NotNil(t, img)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestGeneratePageWithNoise(t *testing.T) {
	config := DefaultPageConfig()
	config.NoiseLevel = 0.05

	img := GeneratePage(config)
	require.NotNil(t, img)
	assert.Equal(t, config.Width, img.Bounds().Dx())
}

func TestCreateBlankPage(t *testing.T) {
	img := CreateBlankPage(100, 50, color.White)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(65535), r)
	assert.Equal(t, uint32(65535), g)
	assert.Equal(t, uint32(65535), b)
}

func TestSaveAndLoadImage(t *testing.T) {
	img := GeneratePage(DefaultPageConfig())

	tempDir := CreateTempDir(t)
	imagePath := filepath.Join(tempDir, "test_image.png")
	SaveImage(t, img, imagePath)

	assert.True(t, FileExists(imagePath))

	loadedImg := LoadImage(t, imagePath)
	assert.Equal(t, img.Bounds(), loadedImg.Bounds())
}

func TestCompareImages(t *testing.T) {
	config := DefaultPageConfig()
	img1 := GeneratePage(config)
	img2 := GeneratePage(config)
	assert.True(t, CompareImages(img1, img2, 0.01))

	config.Background = color.Black
	config.Foreground = color.White
	img3 := GeneratePage(config)
	assert.False(t, CompareImages(img1, img3, 0.8))
}

func TestGenerateDigitalVolume(t *testing.T) {
	tempDir := CreateTempDir(t)
	paths := GenerateDigitalVolume(t, tempDir, 3)
	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.True(t, FileExists(p))
	}
	assert.Equal(t, filepath.Join(tempDir, "0001.jpg"), paths[0])
}
