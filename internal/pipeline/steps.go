package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/MeKo-Tech/derivans/internal/footer"
	"github.com/MeKo-Tech/derivans/internal/imageproc"
	"github.com/MeKo-Tech/derivans/internal/model"
)

// minFooterHeight is the §4.1 failure threshold: a downstream scale that
// would shrink an already-applied footer band below this many pixels fails
// the page (and, by propagation, the step) rather than silently producing
// an illegible footer.
const minFooterHeight = 25

// outputPathFor computes the step's output path for page, always
// normalising the extension to .jpg (§4.5: every image step re-encodes to
// JPEG regardless of the source format).
func outputPathFor(outputDir string, page *model.DigitalPage) string {
	base := filepath.Base(page.ImagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".jpg")
}

// deriveImage implements the shared body of ImageCopy and ImageScale
// (§4.5): decode, optionally scale to maxDimension, re-encode as JPEG.
func deriveImage(outputDir string, quality, maxDimension int) func(context.Context, *model.DigitalPage) error {
	return func(_ context.Context, page *model.DigitalPage) error {
		img, meta, err := imageproc.Decode(page.ImagePath)
		if err != nil {
			return fmt.Errorf("decode %s: %w", page.ImagePath, err)
		}

		scaled := imageproc.Scale(img, maxDimension)

		if page.FooterHeight > 0 {
			origHeight := img.Bounds().Dy()
			if origHeight > 0 {
				ratio := float64(scaled.Bounds().Dy()) / float64(origHeight)
				projected := float64(page.FooterHeight) * ratio
				if projected < minFooterHeight {
					return fmt.Errorf("image: scaling page %d would shrink footer band to %.1fpx, below the %dpx minimum", page.Order, projected, minFooterHeight)
				}
				page.FooterHeight = int(projected)
			}
		}

		out := outputPathFor(outputDir, page)
		if err := imageproc.WriteJPEG(out, scaled, quality, meta); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		page.ImagePath = out
		return nil
	}
}

// deriveFooter implements ImageFooter/ImageFooterGranular (§4.2, §4.5): it
// appends a clone of base, rescaled to the page's width, optionally
// overlaid with the page's granular identifier. granularSeen is
// incremented once per page whose granular line is actually rendered.
func deriveFooter(outputDir string, quality int, base *footer.Band, granular bool, granularSeen *int64) func(context.Context, *model.DigitalPage) error {
	return func(_ context.Context, page *model.DigitalPage) error {
		img, meta, err := imageproc.Decode(page.ImagePath)
		if err != nil {
			return fmt.Errorf("decode %s: %w", page.ImagePath, err)
		}

		width := img.Bounds().Dx()
		band := base
		if granular {
			if page.HasIdentifier() {
				band = band.WithGranular(page.Identifier)
				atomic.AddInt64(granularSeen, 1)
			} else {
				slog.Warn("page has no granular identifier, footer line omitted", "page", page.Order)
			}
		}
		band = band.MatchWidth(width)

		combined := imageproc.AppendBelow(img, band.Image())

		out := outputPathFor(outputDir, page)
		if err := imageproc.WriteJPEG(out, combined, quality, meta); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		page.ImagePath = out
		page.FooterHeight = band.Height()
		return nil
	}
}
