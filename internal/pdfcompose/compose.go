// Package pdfcompose implements the PDF composer (§4.6): page assembly
// from derivative images, an invisible OCR text layer with per-line
// font-size fitting, a hierarchical outline built from the structure tree,
// PDF/A conformance, and document metadata/XMP stamping.
package pdfcompose

import (
	"fmt"
	"image"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/MeKo-Tech/derivans/internal/imageproc"
	"github.com/MeKo-Tech/derivans/internal/model"
)

// Options bundles the per-run composition parameters not derivable from
// the page/structure inputs themselves.
type Options struct {
	Descriptive model.DescriptiveData
	Conformance string // empty disables PDF/A (§4.6 "conformance level")
	FontSize    int    // passed to the text layer; its fit loop sizes each line from the line's bounds and does not read this value
}

// Compose assembles the searchable PDF/A described in §4.6 from pages (in
// order, each with its final on-disk image and optional OCR projection)
// and the pre-built outline tree. It returns true iff the number of pages
// written equals len(pages) and, when root is non-nil, the outline was
// built from it; with a nil root no outline is written or required.
func Compose(pages []*model.DigitalPage, root *model.StructureNode, outPath string, opts Options) (bool, error) {
	if len(pages) == 0 {
		return false, fmt.Errorf("pdf: no pages to compose")
	}

	imagePaths := make([]string, len(pages))
	dims := make([]image.Rectangle, len(pages))
	for i, p := range pages {
		imagePaths[i] = p.ImagePath
		img, _, err := imageproc.Decode(p.ImagePath)
		if err != nil {
			return false, fmt.Errorf("pdf: read page %d dims: %w", p.Order, err)
		}
		dims[i] = img.Bounds()
	}

	if err := importPages(imagePaths, dims, outPath); err != nil {
		return false, fmt.Errorf("pdf: import images: %w", err)
	}

	ctx, err := api.ReadContextFile(outPath)
	if err != nil {
		return false, fmt.Errorf("pdf: reopen %s: %w", outPath, err)
	}

	for i, p := range pages {
		if p.OCR == nil {
			continue
		}
		if err := addTextLayer(ctx, i+1, p, dims[i].Dy(), opts.FontSize); err != nil {
			return false, fmt.Errorf("pdf: text layer page %d: %w", p.Order, err)
		}
	}

	outlineBuilt := false
	if root != nil {
		if err := addOutline(ctx, root); err != nil {
			return false, fmt.Errorf("pdf: outline: %w", err)
		}
		outlineBuilt = true
	}

	if err := applyDocumentMetadata(ctx, opts.Descriptive); err != nil {
		return false, fmt.Errorf("pdf: metadata: %w", err)
	}

	if opts.Conformance != "" {
		if err := applyPDFA(ctx, opts.Conformance); err != nil {
			return false, fmt.Errorf("pdf: pdf/a conformance: %w", err)
		}
	} else {
		if err := ensureHelvetica(ctx); err != nil {
			return false, fmt.Errorf("pdf: base font: %w", err)
		}
	}

	if err := api.WriteContextFile(ctx, outPath); err != nil {
		return false, fmt.Errorf("pdf: write %s: %w", outPath, err)
	}

	pageCount, err := api.PageCountFile(outPath)
	if err != nil {
		return false, fmt.Errorf("pdf: count pages: %w", err)
	}

	// A METS-less run has no structure tree to build an outline from (§8
	// scenario S2 "only images"): success there only requires the page
	// count to match, not an outline.
	return pageCount == len(pages) && (outlineBuilt || root == nil), nil
}

// importPages builds a one-page-per-image PDF where each page is sized to
// its source image's pixel dimensions at 1px = 1 user unit, per §4.6
// "page size: derived from the first image's pixel dimensions ... margins
// are zero." Each image is imported individually so later pages can use a
// different source size without pdfcpu normalising all pages to one form.
func importPages(imagePaths []string, dims []image.Rectangle, outPath string) error {
	conf := pdfcpu.NewDefaultConfiguration()

	for i, path := range imagePaths {
		w, h := dims[i].Dx(), dims[i].Dy()
		imp := &pdfcpu.Import{
			PageDim: pdfcpu.Dim{Width: float64(w), Height: float64(h)},
			PageSize: "",
			Pos:      pdfcpu.Center,
			Scale:    1.0,
			ScaleAbs: true,
			DPI:      72,
		}

		if i == 0 {
			if err := api.ImportImagesFile([]string{path}, outPath, imp, conf); err != nil {
				return err
			}
			continue
		}

		tmp := outPath + ".page.pdf"
		if err := api.ImportImagesFile([]string{path}, tmp, imp, conf); err != nil {
			return err
		}
		if err := api.MergeAppendFile([]string{outPath, tmp}, outPath, false, conf); err != nil {
			_ = os.Remove(tmp)
			return err
		}
		_ = os.Remove(tmp)
	}

	return nil
}
