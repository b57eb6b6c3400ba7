// Package model holds the data types shared across the derivation pipeline:
// the page list built by the metadata store, the OCR projection attached by
// the PDF composer, and the logical structure tree built by the structure
// mapper. Keeping these in one leaf package avoids import cycles between
// mets, alto, structure, pipeline and pdfcompose.
package model

// NotAvailable is the sentinel used for unknown descriptive string fields.
const NotAvailable = "n.a."

// Box is an axis-aligned pixel rectangle in the coordinate system of the
// image or OCR source it was read from.
type Box struct {
	X int
	Y int
	W int
	H int
}

// TextLine is one normalised, single-line span of OCR text with its pixel
// bounding box in the page's OCR coordinate system.
type TextLine struct {
	Text   string
	Bounds Box
}

// OcrPage is the OCR projection for a single page: the pixel dimensions the
// coordinates were measured against, and the ordered text lines.
type OcrPage struct {
	PageWidth  int
	PageHeight int
	Lines      []TextLine
}

// Scale multiplies every line's bounds and the page dimensions by ratio.
// Intended to be called at most once per page, when the pipeline's final
// image dimensions differ from the OCR source's.
func (p *OcrPage) Scale(ratio float64) {
	if ratio == 1 {
		return
	}
	p.PageWidth = int(float64(p.PageWidth) * ratio)
	p.PageHeight = int(float64(p.PageHeight) * ratio)
	for i := range p.Lines {
		b := p.Lines[i].Bounds
		p.Lines[i].Bounds = Box{
			X: int(float64(b.X) * ratio),
			Y: int(float64(b.Y) * ratio),
			W: int(float64(b.W) * ratio),
			H: int(float64(b.H) * ratio),
		}
	}
}

// DigitalPage is one physical page of the run: its position in the
// sequence, the METS-recorded source filename, the current on-disk image
// (rewritten by every pipeline step), and its optional OCR projection.
type DigitalPage struct {
	Order        int
	FilePointer  string
	ImagePath    string
	Identifier   string // granular URN, empty if none
	FooterHeight int    // 0 if no footer has been applied yet
	OCR          *OcrPage
}

// HasIdentifier reports whether the page carries a granular URN.
func (p *DigitalPage) HasIdentifier() bool {
	return p.Identifier != ""
}

// DescriptiveData is the bibliographic projection read from MODS. Unknown
// string fields hold NotAvailable rather than the empty string.
type DescriptiveData struct {
	URN            string
	Identifier     string
	Title          string
	Person         string
	YearPublished  string
	License        string
	Keywords       string
	Creator        string
}

// NewDescriptiveData returns a DescriptiveData with every field defaulted to
// NotAvailable, ready to be overwritten field by field as MODS is parsed.
func NewDescriptiveData() DescriptiveData {
	return DescriptiveData{
		URN:           NotAvailable,
		Identifier:    NotAvailable,
		Title:         NotAvailable,
		Person:        NotAvailable,
		YearPublished: NotAvailable,
		License:       NotAvailable,
		Keywords:      NotAvailable,
		Creator:       NotAvailable,
	}
}

// SetYearPublished assigns YearPublished, coercing the "n.a." sentinel to
// "0" per the data model invariant.
func (d *DescriptiveData) SetYearPublished(year string) {
	if year == "" {
		year = NotAvailable
	}
	if year == NotAvailable {
		d.YearPublished = "0"
		return
	}
	d.YearPublished = year
}

// StructureNode is one node of the logical outline tree. Page is 1-based;
// the root's Page is always 1.
type StructureNode struct {
	Label    string
	Page     int
	Children []*StructureNode
}

// UnresolvedPage marks a child whose logical->physical link could not be
// resolved; such nodes are dropped from the tree after construction.
const UnresolvedPage = -1
