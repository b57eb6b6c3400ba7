// Package imageproc implements the image processing component (§4.1): page
// decode, aspect-preserving scale, vertical append for the footer band, and
// JPEG re-encode that carries DPI/JFIF density metadata forward.
package imageproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

// Metadata is the subset of a source image's metadata the pipeline must
// preserve across re-encodes: the JFIF pixel density used to compute
// physical page size in viewers and print layouts.
type Metadata struct {
	DPIX int
	DPIY int
}

// defaultDPI is used when a source image carries no density information.
const defaultDPI = 300

// Decode reads path and dispatches to the JPEG or TIFF decoder by
// extension, returning the image and whatever density metadata could be
// recovered.
func Decode(path string) (image.Image, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("image: open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("image: read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".tif", ".tiff":
		img, err := tiff.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("image: decode tiff %s: %w", path, err)
		}
		return img, readTIFFResolution(raw), nil
	case ".jpg", ".jpeg":
		img, err := jpeg.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("image: decode jpeg %s: %w", path, err)
		}
		meta := readJFIFDensity(raw)
		return img, meta, nil
	default:
		return nil, Metadata{}, fmt.Errorf("image: unsupported source format %q", ext)
	}
}

// Scale resizes img so its longest edge equals maxDimension, preserving
// aspect ratio. maxDimension <= 0 or an image already within the bound
// returns img unchanged (§4.1 "maximal" edge case).
func Scale(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDimension {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}

// Clone returns an independent deep copy of img, used when the same base
// page must be altered differently for multiple outputs (e.g. the
// per-granular footer overlay).
func Clone(img image.Image) image.Image {
	return imaging.Clone(img)
}

// AppendBelow stacks footer below page, left-aligned (§4.2 "footer band
// appended below the page image"). The result is as wide as page and as
// tall as page and footer together; a footer of another width is resized
// horizontally to the page width, keeping its own height.
func AppendBelow(page, footer image.Image) image.Image {
	pb, fb := page.Bounds(), footer.Bounds()
	width := pb.Dx()
	if fb.Dx() != width {
		footer = imaging.Resize(footer, width, fb.Dy(), imaging.Lanczos)
		fb = footer.Bounds()
	}
	canvas := imaging.New(width, pb.Dy()+fb.Dy(), image.Transparent)
	canvas = imaging.Paste(canvas, page, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, footer, image.Pt(0, pb.Dy()))
	return canvas
}

// WriteJPEG encodes img as a JPEG at the given quality (1-100), patching in
// the JFIF APP0 density fields from meta so downstream viewers and the PDF
// composer see the same physical page size as the source.
func WriteJPEG(path string, img image.Image, quality int, meta Metadata) error {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("image: encode jpeg %s: %w", path, err)
	}

	out := patchJFIFDensity(buf.Bytes(), meta)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("image: mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("image: write %s: %w", path, err)
	}
	return nil
}

// TIFF tags consulted for DPI carry-over (§4.1): XResolution, YResolution
// and ResolutionUnit, each as defined by the TIFF 6.0 IFD layout.
const (
	tiffTagXResolution    = 282
	tiffTagYResolution    = 283
	tiffTagResolutionUnit = 296
	tiffTypeShort         = 3
	tiffTypeRational      = 5
	tiffResUnitInch       = 2
)

// readTIFFResolution walks the first IFD of a TIFF byte stream for its
// XResolution/YResolution/ResolutionUnit tags, returning defaultDPI when the
// unit is not "inch" or the tags are absent, per §4.1's DPI carry-over rule.
func readTIFFResolution(raw []byte) Metadata {
	meta := Metadata{DPIX: defaultDPI, DPIY: defaultDPI}
	if len(raw) < 8 {
		return meta
	}

	var order binary.ByteOrder
	switch {
	case raw[0] == 'I' && raw[1] == 'I':
		order = binary.LittleEndian
	case raw[0] == 'M' && raw[1] == 'M':
		order = binary.BigEndian
	default:
		return meta
	}

	ifdOffset := order.Uint32(raw[4:8])
	if int(ifdOffset)+2 > len(raw) {
		return meta
	}

	entryCount := int(order.Uint16(raw[ifdOffset : ifdOffset+2]))
	entriesStart := ifdOffset + 2

	unit := 0
	var xRes, yRes float64
	haveX, haveY := false, false

	for i := 0; i < entryCount; i++ {
		off := int(entriesStart) + i*12
		if off+12 > len(raw) {
			break
		}
		entry := raw[off : off+12]
		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])

		switch tag {
		case tiffTagResolutionUnit:
			if typ == tiffTypeShort {
				unit = int(order.Uint16(entry[8:10]))
			}
		case tiffTagXResolution:
			if v, ok := readRational(raw, order, typ, entry[8:12]); ok {
				xRes, haveX = v, true
			}
		case tiffTagYResolution:
			if v, ok := readRational(raw, order, typ, entry[8:12]); ok {
				yRes, haveY = v, true
			}
		}
	}

	if unit == tiffResUnitInch && haveX && haveY && xRes > 0 && yRes > 0 {
		meta.DPIX = int(xRes + 0.5)
		meta.DPIY = int(yRes + 0.5)
	}
	return meta
}

// readRational resolves a TIFF RATIONAL-typed tag's value: valueOffsetField
// is the entry's 4-byte value/offset slot, which for a RATIONAL (8 bytes)
// always holds an offset into raw, pointing at a numerator/denominator pair.
func readRational(raw []byte, order binary.ByteOrder, typ uint16, valueOffsetField []byte) (float64, bool) {
	if typ != tiffTypeRational {
		return 0, false
	}
	offset := int(order.Uint32(valueOffsetField))
	if offset+8 > len(raw) {
		return 0, false
	}
	num := order.Uint32(raw[offset : offset+4])
	den := order.Uint32(raw[offset+4 : offset+8])
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// jfifDensityUnitsDPI is the JFIF "units" byte value meaning the two
// density fields that follow are pixels per inch.
const jfifDensityUnitsDPI = 0x01

// readJFIFDensity scans a JPEG's APP0 JFIF segment for density fields.
// Returns defaultDPI for both axes if no JFIF segment is present.
func readJFIFDensity(raw []byte) Metadata {
	meta := Metadata{DPIX: defaultDPI, DPIY: defaultDPI}
	if len(raw) < 20 || raw[0] != 0xFF || raw[1] != 0xD8 {
		return meta
	}
	if raw[2] != 0xFF || raw[3] != 0xE0 {
		return meta
	}
	// APP0 payload: "JFIF\0" version(2) units(1) Xdensity(2) Ydensity(2) ...
	if len(raw) < 4+2+5+1+4 {
		return meta
	}
	payload := raw[4+2:]
	if string(payload[:5]) != "JFIF\x00" {
		return meta
	}
	units := payload[7]
	xDensity := int(payload[8])<<8 | int(payload[9])
	yDensity := int(payload[10])<<8 | int(payload[11])
	if units == jfifDensityUnitsDPI && xDensity > 0 && yDensity > 0 {
		meta.DPIX, meta.DPIY = xDensity, yDensity
	}
	return meta
}

// patchJFIFDensity sets the JFIF density of an already-encoded JPEG to
// meta, with units=1 (DPI). image/jpeg's encoder writes no APP0 segment
// (SOI is followed directly by DQT), so a JFIF APP0 segment is inserted
// right after SOI; an existing JFIF APP0 segment is patched in place.
func patchJFIFDensity(jpg []byte, meta Metadata) []byte {
	if len(jpg) < 4 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		return jpg
	}
	if jpg[2] != 0xFF || jpg[3] != 0xE0 || len(jpg) < 20 || string(jpg[6:11]) != "JFIF\x00" {
		app0 := []byte{0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, jfifDensityUnitsDPI,
			byte(meta.DPIX >> 8), byte(meta.DPIX & 0xFF), byte(meta.DPIY >> 8), byte(meta.DPIY & 0xFF), 0x00, 0x00}
		out := make([]byte, 0, len(jpg)+len(app0))
		out = append(out, jpg[:2]...)
		out = append(out, app0...)
		return append(out, jpg[2:]...)
	}
	out := make([]byte, len(jpg))
	copy(out, jpg)
	base := 4 + 2
	out[base+7] = jfifDensityUnitsDPI
	out[base+8] = byte(meta.DPIX >> 8)
	out[base+9] = byte(meta.DPIX & 0xFF)
	out[base+10] = byte(meta.DPIY >> 8)
	out[base+11] = byte(meta.DPIY & 0xFF)
	return out
}
