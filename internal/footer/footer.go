// Package footer implements the footer band renderer (§4.2): a pre-rendered
// metadata band appended below each page image, optionally overlaid with a
// per-page granular identifier.
package footer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/derivans/internal/model"
)

const (
	lineHeight  = 16
	charWidth   = 7 // basicfont.Face7x13 advance width
	bandPadding = 10
	// maxWidthDrift is the fractional tolerance for band/image width
	// mismatch before the band is rescaled (§4.2).
	maxWidthDrift = 0.02
)

// Band is a pre-rendered footer band: the template text laid out
// top-to-bottom, centred, on a white background.
type Band struct {
	img image.Image
}

// Render builds the base band from template, substituting {{title}},
// {{person}}, {{year_published}}, {{license}} placeholders with data's
// fields, word-wrapping each resulting line to fit width.
func Render(width int, template string, data model.DescriptiveData) (*Band, error) {
	if width <= 0 {
		return nil, fmt.Errorf("footer: invalid width %d", width)
	}
	text := substitute(template, data)
	lines := wrapLines(text, width)
	img := renderLines(width, lines, bandPadding)
	return &Band{img: img}, nil
}

// WithGranular returns a clone of the band with the given granular
// identifier centred below the template block.
func (b *Band) WithGranular(identifier string) *Band {
	base := imaging.Clone(b.img)
	bounds := base.Bounds()
	line := []string{identifier}
	overlay := renderLines(bounds.Dx(), line, 4)
	combined := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()+overlay.Bounds().Dy()))
	draw.Draw(combined, bounds, base, image.Point{}, draw.Src)
	draw.Draw(combined, image.Rect(0, bounds.Dy(), bounds.Dx(), bounds.Dy()+overlay.Bounds().Dy()),
		overlay, image.Point{}, draw.Src)
	return &Band{img: combined}
}

// MatchWidth scales the band horizontally so its width matches target,
// unless already within maxWidthDrift, in which case the band is returned
// unchanged. A non-trivial rescale is logged, per §4.2.
func (b *Band) MatchWidth(target int) *Band {
	current := b.img.Bounds().Dx()
	if current == 0 {
		return b
	}
	drift := 1 - float64(target)/float64(current)
	if drift < 0 {
		drift = -drift
	}
	if drift <= maxWidthDrift {
		return b
	}
	slog.Warn("footer band width rescaled", "from", current, "to", target)
	ratio := float64(target) / float64(current)
	newHeight := int(float64(b.img.Bounds().Dy()) * ratio)
	resized := imaging.Resize(b.img, target, newHeight, imaging.Lanczos)
	return &Band{img: resized}
}

// Image returns the rendered band as an image.Image.
func (b *Band) Image() image.Image {
	return b.img
}

// Height returns the band's current pixel height.
func (b *Band) Height() int {
	return b.img.Bounds().Dy()
}

func substitute(template string, data model.DescriptiveData) string {
	r := strings.NewReplacer(
		"{{title}}", data.Title,
		"{{person}}", data.Person,
		"{{year_published}}", data.YearPublished,
		"{{license}}", data.License,
	)
	return r.Replace(template)
}

// wrapLines breaks text into lines no wider than width, measured in the
// fixed-advance basicfont.Face7x13 grid, following the word-wrap-then-
// measure approach used by gg-style text layouts: greedily pack words onto
// a line until the next word would overflow, then start a new line.
func wrapLines(text string, width int) []string {
	maxChars := (width - 2*bandPadding) / charWidth
	if maxChars < 1 {
		maxChars = 1
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var cur strings.Builder
		for _, w := range words {
			candidate := w
			if cur.Len() > 0 {
				candidate = cur.String() + " " + w
			}
			if len(candidate) > maxChars && cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				cur.WriteString(w)
				continue
			}
			cur.Reset()
			cur.WriteString(candidate)
		}
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
		}
	}
	return lines
}

// renderLines draws lines centred on a white background sized to fit.
func renderLines(width int, lines []string, verticalPadding int) *image.RGBA {
	height := verticalPadding*2 + len(lines)*lineHeight
	if height < lineHeight {
		height = lineHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		textWidth := drawer.MeasureString(line).Ceil()
		x := (width - textWidth) / 2
		if x < 0 {
			x = 0
		}
		y := verticalPadding + (i+1)*lineHeight - 4
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}
	return img
}
