package imageproc

import (
	"encoding/binary"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTIFFHeader assembles the header + single IFD of a little-endian TIFF
// carrying only XResolution/YResolution/ResolutionUnit tags (282, 283, 296),
// enough for readTIFFResolution, which never touches pixel data.
func buildTIFFHeader(xRes, yRes uint32, unit uint16) []byte {
	const (
		tagXRes  = 282
		tagYRes  = 283
		tagUnit  = 296
		typeRat  = 5
		typeShrt = 3
	)

	buf := make([]byte, 66)
	le := binary.LittleEndian
	buf[0], buf[1] = 'I', 'I'
	le.PutUint16(buf[2:4], 42)
	le.PutUint32(buf[4:8], 8) // IFD offset

	le.PutUint16(buf[8:10], 3) // 3 entries

	writeEntry := func(off int, tag, typ uint16, count uint32, value []byte) {
		le.PutUint16(buf[off:off+2], tag)
		le.PutUint16(buf[off+2:off+4], typ)
		le.PutUint32(buf[off+4:off+8], count)
		copy(buf[off+8:off+12], value)
	}

	xOffVal := make([]byte, 4)
	le.PutUint32(xOffVal, 50)
	writeEntry(10, tagXRes, typeRat, 1, xOffVal)

	yOffVal := make([]byte, 4)
	le.PutUint32(yOffVal, 58)
	writeEntry(22, tagYRes, typeRat, 1, yOffVal)

	unitVal := make([]byte, 4)
	le.PutUint16(unitVal, unit)
	writeEntry(34, tagUnit, typeShrt, 1, unitVal)

	le.PutUint32(buf[46:50], 0) // no next IFD

	le.PutUint32(buf[50:54], xRes)
	le.PutUint32(buf[54:58], 1)
	le.PutUint32(buf[58:62], yRes)
	le.PutUint32(buf[62:66], 1)

	return buf
}

func TestReadTIFFResolutionReadsXYResolutionTags(t *testing.T) {
	raw := buildTIFFHeader(300, 300, 2) // unit 2 = inch
	meta := readTIFFResolution(raw)
	assert.Equal(t, 300, meta.DPIX)
	assert.Equal(t, 300, meta.DPIY)
}

func TestReadTIFFResolutionDefaultsWhenUnitNotInch(t *testing.T) {
	raw := buildTIFFHeader(300, 300, 1) // unit 1 = no absolute unit
	meta := readTIFFResolution(raw)
	assert.Equal(t, defaultDPI, meta.DPIX)
	assert.Equal(t, defaultDPI, meta.DPIY)
}

func TestReadTIFFResolutionDefaultsOnTruncatedHeader(t *testing.T) {
	meta := readTIFFResolution([]byte{0x49, 0x49})
	assert.Equal(t, defaultDPI, meta.DPIX)
	assert.Equal(t, defaultDPI, meta.DPIY)
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestScaleNoopUnderLimit(t *testing.T) {
	img := solidImage(100, 50, color.White)
	out := Scale(img, 200)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestScalePreservesAspect(t *testing.T) {
	img := solidImage(2000, 1000, color.White)
	out := Scale(img, 1000)
	b := out.Bounds()
	assert.Equal(t, 1000, b.Dx())
	assert.Equal(t, 500, b.Dy())
}

func TestScaleDisabledWhenZero(t *testing.T) {
	img := solidImage(2000, 1000, color.White)
	out := Scale(img, 0)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestAppendBelowStacksAndWidens(t *testing.T) {
	page := solidImage(100, 200, color.White)
	footer := solidImage(50, 40, color.Black)
	out := AppendBelow(page, footer)
	b := out.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 240, b.Dy())
}

func TestWriteJPEGRoundTripsDensity(t *testing.T) {
	dir := t.TempDir()
	img := solidImage(64, 64, color.White)
	path := filepath.Join(dir, "out.jpg")

	require.NoError(t, WriteJPEG(path, img, 90, Metadata{DPIX: 400, DPIY: 400}))

	decoded, meta, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 400, meta.DPIX)
	assert.Equal(t, 400, meta.DPIY)
}

func TestCloneIsIndependent(t *testing.T) {
	img := solidImage(10, 10, color.White)
	clone := Clone(img)
	assert.Equal(t, img.Bounds(), clone.Bounds())
}
