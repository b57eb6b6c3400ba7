// Package assets embeds the binary resources the PDF/A conformance path
// needs: an sRGB output-intent ICC profile and an embeddable TrueType font.
//
// TODO: replace both placeholders with redistributable production assets
// (a licensed sRGB IEC61966-2.1 profile and FreeMonoBold.ttf) before this
// package is used to produce archival PDF/A output.
package assets

import _ "embed"

//go:embed srgb_placeholder.icc
var SRGBICCProfile []byte

//go:embed freemonobold_placeholder.ttf
var FreeMonoBoldTTF []byte
