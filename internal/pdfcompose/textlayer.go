package pdfcompose

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// ocrScaleTolerance is the drift threshold below which the OCR page's
// reported dimensions and the rendered image height are treated as equal
// (§4.6 step 3).
const ocrScaleTolerance = 0.01

// fontSizeStep and minFontSize implement the per-line fitting loop: start
// from an estimate, subtract fontSizeStep until the text fits bounds.W,
// floor at minFontSize.
const (
	fontSizeStep = 3.0
	minFontSize  = 1.0
	// helveticaAvgWidthPer1000 approximates font.width(text)/1000 for the
	// built-in Helvetica metric used to seed the fitting loop.
	helveticaAvgWidthPer1000 = 550.0
)

// addTextLayer injects an invisible OCR text stream below page pageNr
// (1-based), following the content-stream append technique: BT / 3 Tr (no
// fill, no stroke, still hit-testable) / Tj per line.
func addTextLayer(ctx *pdfmodel.Context, pageNr int, page *model.DigitalPage, imageHeight int, baseFontSize int) error {
	ocr := page.OCR
	pageHeightOCR := ocr.PageHeight + page.FooterHeight
	if pageHeightOCR <= 0 {
		return fmt.Errorf("invalid ocr page height %d", pageHeightOCR)
	}

	ratio := float64(imageHeight) / float64(pageHeightOCR)
	if math.Abs(1-ratio) <= ocrScaleTolerance {
		ratio = 1
	}
	if ratio != 1 {
		ocr.Scale(ratio)
	}

	stream := buildInvisibleTextStream(ocr, float64(imageHeight))
	if len(stream) == 0 {
		return nil
	}
	return appendTextStreamToPage(ctx, pageNr, stream)
}

func buildInvisibleTextStream(ocr *model.OcrPage, pageHeightPt float64) []byte {
	if len(ocr.Lines) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString("q\nBT\n3 Tr\n0 g\n")

	lastFontSize := -1.0
	for _, line := range ocr.Lines {
		fontSize := fitFontSize(line)
		if math.Abs(fontSize-lastFontSize) > 0.25 {
			fmt.Fprintf(&buf, "/F0 %.2f Tf\n", fontSize)
			lastFontSize = fontSize
		}

		x := float64(line.Bounds.X)
		y := pageHeightPt - float64(line.Bounds.Y+line.Bounds.H) - fontSize
		fmt.Fprintf(&buf, "1 0 0 1 %.2f %.2f Tm\n", x, y)
		fmt.Fprintf(&buf, "(%s) Tj\n", escapePDFString(line.Text))
	}

	buf.WriteString("ET\nQ\n")
	return buf.Bytes()
}

// fitFontSize implements §4.6's fitting loop: start from
// font.width(text)/1000 * bounds.height, then repeatedly subtract
// fontSizeStep until the estimated rendered width fits bounds.W, floor at
// minFontSize.
func fitFontSize(line model.TextLine) float64 {
	if line.Text == "" || line.Bounds.W <= 0 {
		return minFontSize
	}
	size := helveticaAvgWidthPer1000 / 1000 * float64(line.Bounds.H)
	for size > minFontSize {
		if estimatedWidth(line.Text, size) <= float64(line.Bounds.W) {
			break
		}
		size -= fontSizeStep
	}
	if size < minFontSize {
		size = minFontSize
	}
	return size
}

// estimatedWidth approximates a string's rendered width at the given font
// size using Helvetica's average glyph-width metric.
func estimatedWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * helveticaAvgWidthPer1000 / 1000
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

// appendTextStreamToPage appends content as a new content stream on page
// pageNr, ensuring the page has a Helvetica font resource named F0.
func appendTextStreamToPage(ctx *pdfmodel.Context, pageNr int, content []byte) error {
	pageDict, pageIndRef, inh, err := ctx.XRefTable.PageDict(pageNr, false)
	if err != nil {
		return err
	}

	if err := ensureHelveticaOnPage(ctx.XRefTable, pageDict, inh); err != nil {
		return err
	}

	sd := types.NewStreamDict(types.Dict{}, int64(len(content)), nil, nil, nil)
	sd.Content = content
	sd.Raw = content

	newIR, err := ctx.XRefTable.IndRefForNewObject(sd)
	if err != nil {
		return err
	}

	switch c := pageDict["Contents"].(type) {
	case nil:
		pageDict["Contents"] = *newIR
	case types.IndirectRef:
		pageDict["Contents"] = types.Array{c, *newIR}
	case types.Array:
		pageDict["Contents"] = append(c, *newIR)
	default:
		return fmt.Errorf("unsupported Contents type: %T", c)
	}

	objNr := pageIndRef.ObjectNumber.Value()
	entry, found := ctx.XRefTable.Table[objNr]
	if !found {
		return fmt.Errorf("page object %d not found in xref table", objNr)
	}
	entry.Object = pageDict

	return nil
}
