// Package alto implements the ALTO reader (§4D): parsing per-page OCR XML
// into normalised text lines with pixel bounding boxes. No OCR is
// performed; ALTO is consumed as written.
package alto

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/derivans/internal/model"
)

type altoDocument struct {
	XMLName xml.Name  `xml:"alto"`
	Layout  altoLayout `xml:"Layout"`
}

type altoLayout struct {
	Page altoPage `xml:"Page"`
}

type altoPage struct {
	Width       int              `xml:"WIDTH,attr"`
	Height      int              `xml:"HEIGHT,attr"`
	PrintSpace  altoPrintSpace   `xml:"PrintSpace"`
}

type altoPrintSpace struct {
	TextBlock []altoTextBlock `xml:"TextBlock"`
}

type altoTextBlock struct {
	TextLine []altoTextLine `xml:"TextLine"`
}

type altoTextLine struct {
	HPOS   int              `xml:"HPOS,attr"`
	VPOS   int              `xml:"VPOS,attr"`
	WIDTH  int              `xml:"WIDTH,attr"`
	HEIGHT int              `xml:"HEIGHT,attr"`
	String []altoStringElem `xml:"String"`
}

type altoStringElem struct {
	Content string `xml:"CONTENT,attr"`
}

// ParseALTO reads the ALTO file at path and returns its text lines with
// pixel bounding boxes, and the page dimensions they were measured
// against.
func ParseALTO(path string) (*model.OcrPage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("alto: read %s: %w", path, err)
	}

	var doc altoDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("alto: parse %s: %w", path, err)
	}

	page := doc.Layout.Page
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("alto: %s has invalid page dimensions %dx%d", path, page.Width, page.Height)
	}

	out := &model.OcrPage{PageWidth: page.Width, PageHeight: page.Height}
	for _, block := range page.PrintSpace.TextBlock {
		for _, line := range block.TextLine {
			text := concatWords(line.String)
			if text == "" {
				continue
			}
			out.Lines = append(out.Lines, model.TextLine{
				Text: text,
				Bounds: model.Box{
					X: line.HPOS,
					Y: line.VPOS,
					W: line.WIDTH,
					H: line.HEIGHT,
				},
			})
		}
	}
	return out, nil
}

// concatWords joins a line's String/@CONTENT tokens into one normalised,
// single-line span.
func concatWords(words []altoStringElem) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		c := strings.TrimSpace(w.Content)
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
