package pdfcompose

import (
	"fmt"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/MeKo-Tech/derivans/internal/pdfcompose/assets"
)

const textLayerFontResourceName = "F0"

// ensureHelveticaOnPage ensures the page carries a built-in, non-embedded
// Helvetica/WinAnsi font under resource name F0, used by the non-PDF/A
// text layer (§4.6 "otherwise use a built-in Helvetica with WinAnsi
// encoding").
func ensureHelveticaOnPage(xref *pdfmodel.XRefTable, pageDict types.Dict, inh *pdfmodel.InheritedPageAttrs) error {
	fontDict, err := ensureFontDict(xref, pageDict)
	if err != nil {
		return err
	}
	if _, ok := fontDict[textLayerFontResourceName]; ok {
		return nil
	}
	helv := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ir, err := xref.IndRefForNewObject(helv)
	if err != nil {
		return err
	}
	fontDict[textLayerFontResourceName] = *ir
	return nil
}

// ensureHelvetica is the doc-level counterpart called once when no
// conformance level is set; per-page resources are added lazily by
// ensureHelveticaOnPage as each page's text layer is written, so this only
// validates the document was opened successfully.
func ensureHelvetica(ctx *pdfmodel.Context) error {
	if ctx == nil || ctx.XRefTable == nil {
		return fmt.Errorf("nil xref table")
	}
	return nil
}

func ensureFontDict(xref *pdfmodel.XRefTable, pageDict types.Dict) (types.Dict, error) {
	resDict, err := ensureResourceDict(xref, pageDict)
	if err != nil {
		return nil, err
	}
	switch f := resDict["Font"].(type) {
	case nil:
		fontDict := types.Dict{}
		resDict["Font"] = fontDict
		return fontDict, nil
	case types.Dict:
		return f, nil
	case types.IndirectRef:
		o, err := xref.Dereference(f)
		if err != nil {
			return nil, err
		}
		d, ok := o.(types.Dict)
		if !ok {
			return nil, fmt.Errorf("Font not a dict: %T", o)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported Font type: %T", f)
	}
}

func ensureResourceDict(xref *pdfmodel.XRefTable, pageDict types.Dict) (types.Dict, error) {
	switch r := pageDict["Resources"].(type) {
	case nil:
		resDict := types.Dict{}
		pageDict["Resources"] = resDict
		return resDict, nil
	case types.Dict:
		return r, nil
	case types.IndirectRef:
		o, err := xref.Dereference(r)
		if err != nil {
			return nil, err
		}
		d, ok := o.(types.Dict)
		if !ok {
			return nil, fmt.Errorf("Resources not a dict: %T", o)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported Resources type: %T", r)
	}
}

// applyPDFA upgrades the document for PDF/A conformance (§4.6): embeds the
// packaged sRGB output intent and swaps every page's F0 text-layer font
// for an embedded TrueType font with Identity-H encoding, so the document
// carries no reference to a non-embedded base-14 font.
func applyPDFA(ctx *pdfmodel.Context, conformance string) error {
	fontIR, err := embedFreeMonoBold(ctx.XRefTable)
	if err != nil {
		return fmt.Errorf("embed font: %w", err)
	}

	pageCount := ctx.PageCount
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		pageDict, _, _, err := ctx.XRefTable.PageDict(pageNr, false)
		if err != nil {
			return err
		}
		fontDict, err := ensureFontDict(ctx.XRefTable, pageDict)
		if err != nil {
			return err
		}
		if _, ok := fontDict[textLayerFontResourceName]; ok {
			fontDict[textLayerFontResourceName] = *fontIR
		}
	}

	return addOutputIntent(ctx, conformance)
}

func embedFreeMonoBold(xref *pdfmodel.XRefTable) (*types.IndirectRef, error) {
	streamDict := types.NewStreamDict(types.Dict{
		"Length1": types.Integer(len(assets.FreeMonoBoldTTF)),
	}, int64(len(assets.FreeMonoBoldTTF)), nil, nil, nil)
	streamDict.Content = assets.FreeMonoBoldTTF
	streamDict.Raw = assets.FreeMonoBoldTTF

	fontFileIR, err := xref.IndRefForNewObject(streamDict)
	if err != nil {
		return nil, err
	}

	descriptor := types.Dict{
		"Type":        types.Name("FontDescriptor"),
		"FontName":    types.Name("FreeMonoBold"),
		"Flags":       types.Integer(4),
		"FontFile2":   *fontFileIR,
		"ItalicAngle": types.Float(0),
		"StemV":       types.Integer(0),
	}
	descIR, err := xref.IndRefForNewObject(descriptor)
	if err != nil {
		return nil, err
	}

	cidFont := types.Dict{
		"Type":           types.Name("Font"),
		"Subtype":        types.Name("CIDFontType2"),
		"BaseFont":       types.Name("FreeMonoBold"),
		"FontDescriptor": *descIR,
		"CIDSystemInfo": types.Dict{
			"Registry":   types.StringLiteral("Adobe"),
			"Ordering":   types.StringLiteral("Identity"),
			"Supplement": types.Integer(0),
		},
	}
	cidIR, err := xref.IndRefForNewObject(cidFont)
	if err != nil {
		return nil, err
	}

	composite := types.Dict{
		"Type":            types.Name("Font"),
		"Subtype":         types.Name("Type0"),
		"BaseFont":        types.Name("FreeMonoBold"),
		"Encoding":        types.Name("Identity-H"),
		"DescendantFonts": types.Array{*cidIR},
	}
	return xref.IndRefForNewObject(composite)
}

func addOutputIntent(ctx *pdfmodel.Context, conformance string) error {
	iccStream := types.NewStreamDict(types.Dict{
		"N": types.Integer(3),
	}, int64(len(assets.SRGBICCProfile)), nil, nil, nil)
	iccStream.Content = assets.SRGBICCProfile
	iccStream.Raw = assets.SRGBICCProfile

	iccIR, err := ctx.XRefTable.IndRefForNewObject(iccStream)
	if err != nil {
		return err
	}

	intent := types.Dict{
		"Type":              types.Name("OutputIntent"),
		"S":                 types.Name("GTS_PDFA1"),
		"OutputConditionIdentifier": types.StringLiteral("sRGB IEC61966-2.1"),
		"Info":              types.StringLiteral("sRGB IEC61966-2.1"),
		"DestOutputProfile": *iccIR,
	}
	intentIR, err := ctx.XRefTable.IndRefForNewObject(intent)
	if err != nil {
		return err
	}

	root, err := ctx.XRefTable.Catalog()
	if err != nil {
		return err
	}
	switch existing := root["OutputIntents"].(type) {
	case nil:
		root["OutputIntents"] = types.Array{*intentIR}
	case types.Array:
		root["OutputIntents"] = append(existing, *intentIR)
	}

	root["PDFAConformance"] = types.Name(conformance)
	return nil
}
