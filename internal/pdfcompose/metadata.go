package pdfcompose

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// applyDocumentMetadata stamps Title/Author/Creator/Keywords and the
// custom "Access condition"/"Published" headers described in §4.6, then
// generates an XMP packet mirroring the same fields and attaches it as the
// document's /Metadata stream.
func applyDocumentMetadata(ctx *pdfmodel.Context, d model.DescriptiveData) error {
	info, err := ensureInfoDict(ctx)
	if err != nil {
		return err
	}

	setIfKnown(info, "Title", d.Title)
	setIfKnown(info, "Author", d.Person)
	info["Creator"] = types.StringLiteral("derivans")
	setIfKnown(info, "Keywords", d.Keywords)
	setIfKnown(info, "Access condition", d.License)
	setIfKnown(info, "Published", d.YearPublished)
	info["ModDate"] = types.StringLiteral(pdfDate(time.Now()))

	return attachXMPMetadata(ctx, d)
}

// attachXMPMetadata builds an XMP packet from d and registers it as the
// document catalog's /Metadata stream, per §4.6 "XMP metadata is
// generated."
func attachXMPMetadata(ctx *pdfmodel.Context, d model.DescriptiveData) error {
	packet := buildXMPPacket(d)

	sd := types.NewStreamDict(types.Dict{
		"Type":    types.Name("Metadata"),
		"Subtype": types.Name("XML"),
	}, int64(len(packet)), nil, nil, nil)
	sd.Content = packet
	sd.Raw = packet

	ir, err := ctx.XRefTable.IndRefForNewObject(sd)
	if err != nil {
		return fmt.Errorf("create xmp metadata stream: %w", err)
	}

	root, err := ctx.XRefTable.Catalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	root["Metadata"] = *ir
	return nil
}

// buildXMPPacket renders a minimal Dublin Core + Adobe PDF namespace XMP
// packet carrying the same fields as the classic info dict, skipping any
// field still at the NotAvailable sentinel.
func buildXMPPacket(d model.DescriptiveData) []byte {
	var buf bytes.Buffer
	buf.WriteString("<?xpacket begin=\"﻿\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	buf.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	buf.WriteString("  <rdf:RDF xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\">\n")
	buf.WriteString("    <rdf:Description rdf:about=\"\"\n")
	buf.WriteString("      xmlns:dc=\"http://purl.org/dc/elements/1.1/\"\n")
	buf.WriteString("      xmlns:pdf=\"http://ns.adobe.com/pdf/1.3/\">\n")

	if title := xmpValue(d.Title); title != "" {
		fmt.Fprintf(&buf, "      <dc:title><rdf:Alt><rdf:li xml:lang=\"x-default\">%s</rdf:li></rdf:Alt></dc:title>\n", title)
	}
	if creator := xmpValue(d.Person); creator != "" {
		fmt.Fprintf(&buf, "      <dc:creator><rdf:Seq><rdf:li>%s</rdf:li></rdf:Seq></dc:creator>\n", creator)
	}
	if keywords := xmpValue(d.Keywords); keywords != "" {
		fmt.Fprintf(&buf, "      <pdf:Keywords>%s</pdf:Keywords>\n", keywords)
	}
	if license := xmpValue(d.License); license != "" {
		fmt.Fprintf(&buf, "      <pdf:Rights>%s</pdf:Rights>\n", license)
	}
	buf.WriteString("      <pdf:Producer>derivans</pdf:Producer>\n")
	buf.WriteString("    </rdf:Description>\n")
	buf.WriteString("  </rdf:RDF>\n")
	buf.WriteString("</x:xmpmeta>\n")
	buf.WriteString("<?xpacket end=\"w\"?>")
	return buf.Bytes()
}

// xmpValue XML-escapes s for inclusion in the XMP packet, or returns "" for
// an unset field so the caller can skip emitting the element entirely.
func xmpValue(s string) string {
	if s == "" || s == model.NotAvailable {
		return ""
	}
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}

func setIfKnown(info types.Dict, key, value string) {
	if value == "" || value == model.NotAvailable {
		return
	}
	info[key] = types.StringLiteral(value)
}

func ensureInfoDict(ctx *pdfmodel.Context) (types.Dict, error) {
	if ctx.XRefTable.Info != nil {
		existing, err := ctx.XRefTable.DereferenceDict(*ctx.XRefTable.Info)
		if err == nil && existing != nil {
			return existing, nil
		}
	}
	d := types.Dict{}
	ir, err := ctx.XRefTable.IndRefForNewObject(d)
	if err != nil {
		return nil, fmt.Errorf("create info dict: %w", err)
	}
	ctx.XRefTable.Info = ir
	return d, nil
}

// pdfDate formats t per the PDF date string spec: D:YYYYMMDDHHmmSSOHH'mm'.
func pdfDate(t time.Time) string {
	return "D:" + t.Format("20060102150405-07'00'")
}
