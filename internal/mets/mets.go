// Package mets implements the metadata store (§4.3): read-only projection
// of METS/MODS into DescriptiveData and an ordered physical page sequence,
// plus in-place enrichment of the METS document with a new PDF file group.
package mets

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/derivans/internal/model"
	"github.com/MeKo-Tech/derivans/internal/structure"
)

// relatorAuthor and relatorPublisher are the MARC relator codes consulted
// when resolving DescriptiveData.Person (§9 resolved open question).
const (
	relatorAuthor    = "aut"
	relatorPublisher = "pbl"
)

// MetadataStore holds a fully-parsed METS document and exposes read-only
// projections over it. Per §9's resolved open question there is a single
// constructor: parsing happens once, eagerly, at construction time.
type MetadataStore struct {
	path string
	doc  *metsDocument
}

// NewMetadataStore parses path and returns a store ready to answer
// Descriptive, Pages and enrichment requests.
func NewMetadataStore(path string) (*MetadataStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mets: read %s: %w", path, err)
	}
	var doc metsDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("mets: parse %s: %w", path, err)
	}
	return &MetadataStore{path: path, doc: &doc}, nil
}

// Descriptive extracts the DescriptiveData projection described in §4.3.
func (s *MetadataStore) Descriptive() model.DescriptiveData {
	d := model.NewDescriptiveData()

	mods := s.primaryMODS()
	if mods == nil {
		return d
	}

	if id := mods.RecordInfo.RecordIdentifier; id != nil {
		d.Identifier = nonEmpty(id.Value)
	}
	for _, ident := range mods.Identifier {
		if ident.Type == "urn" {
			d.URN = nonEmpty(ident.Value)
			break
		}
	}
	if len(mods.TitleInfo) > 0 && len(mods.TitleInfo[0].Title) > 0 {
		d.Title = nonEmpty(mods.TitleInfo[0].Title[0])
	}
	if person := findPerson(mods.Name); person != "" {
		d.Person = person
	}
	if len(mods.AccessCondition) > 0 {
		d.License = nonEmpty(mods.AccessCondition[0].Value)
	}
	d.SetYearPublished(findYearPublished(mods.OriginInfo))

	return d
}

// Pages extracts the ordered physical page sequence described in §4.3.
func (s *MetadataStore) Pages() ([]*model.DigitalPage, error) {
	physMap := s.doc.findPhysicalStructMap()
	if physMap == nil {
		return nil, fmt.Errorf("mets: no physical structMap")
	}

	fileByID := s.doc.fileLocationsByID()

	var pages []*model.DigitalPage
	order := 1
	for _, div := range physMap.Div.Div {
		fptr := firstFptr(div)
		if fptr == "" {
			return nil, fmt.Errorf("mets: physical div %q has no fptr", div.ID)
		}
		loc, ok := fileByID[fptr]
		if !ok {
			return nil, fmt.Errorf("mets: fptr %q has no file location", fptr)
		}
		pages = append(pages, &model.DigitalPage{
			Order:       order,
			FilePointer: loc,
			Identifier:  div.ContentIDs,
		})
		order++
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("mets: physical structMap has no pages")
	}
	return pages, nil
}

func firstFptr(div metsDiv) string {
	for _, f := range div.Fptr {
		if f.FileID != "" {
			return f.FileID
		}
	}
	return ""
}

func nonEmpty(s string) string {
	if s == "" {
		return model.NotAvailable
	}
	return s
}

func findPerson(names []modsName) string {
	var publisher string
	for _, n := range names {
		code := n.roleCode()
		display := n.displayName()
		if display == "" {
			continue
		}
		if code == relatorAuthor {
			return display
		}
		if code == relatorPublisher && publisher == "" {
			publisher = display
		}
	}
	return publisher
}

func findYearPublished(origins []modsOriginInfo) string {
	for _, o := range origins {
		if o.EventType == "publication" && o.DateIssued != "" {
			return o.DateIssued
		}
	}
	for _, o := range origins {
		if o.DateIssued != "" {
			return o.DateIssued
		}
	}
	return ""
}

// primaryMODS returns the MODS section linked from the logical root
// container's DMDID, falling back to the first subdiv carrying a DMDID for
// multivolume works.
func (s *MetadataStore) primaryMODS() *modsSection {
	logMap := s.doc.findLogicalStructMap()
	if logMap == nil {
		return s.doc.firstMODS()
	}
	root := &logMap.Div
	if dmdID := root.DMDID; dmdID != "" {
		if m := s.doc.modsByDMDID(dmdID); m != nil {
			return m
		}
	}
	for _, child := range root.Div {
		if child.DMDID != "" {
			if m := s.doc.modsByDMDID(child.DMDID); m != nil {
				return m
			}
		}
	}
	return s.doc.firstMODS()
}

// StructureInput projects the parsed logical/physical structMaps and
// structLink table into the mapper-agnostic shape structure.BuildTree
// consumes (§4.4), decoupling that package from this one's XML types.
func (s *MetadataStore) StructureInput(fallbackTitle string, enableLeaves bool) (structure.Input, error) {
	logMap := s.doc.findLogicalStructMap()
	if logMap == nil {
		return structure.Input{}, fmt.Errorf("mets: no logical structMap")
	}
	physMap := s.doc.findPhysicalStructMap()
	if physMap == nil {
		return structure.Input{}, fmt.Errorf("mets: no physical structMap")
	}

	in := structure.Input{
		Root:          toLogicalDiv(&logMap.Div),
		FallbackTitle: fallbackTitle,
		StructLinks:   map[string]string{},
		PhysicalByID:  map[string]structure.PhysicalDiv{},
		EnableLeaves:  enableLeaves,
		LeafTargets:   map[string][]string{},
	}

	collectPhysicalDivs(&physMap.Div, in.PhysicalByID)

	if s.doc.StructLink != nil {
		for _, link := range s.doc.StructLink.SmLink {
			if link.From == "" || link.To == "" {
				continue
			}
			if _, seen := in.StructLinks[link.From]; !seen {
				in.StructLinks[link.From] = link.To
				continue
			}
			in.LeafTargets[link.From] = append(in.LeafTargets[link.From], link.To)
		}
	}

	return in, nil
}

// toLogicalDiv recursively copies a metsDiv into the structure package's
// XML-agnostic LogicalDiv, keeping only children that carry a @TYPE per
// §4.4 "For each logical child with a non-null @TYPE".
func toLogicalDiv(div *metsDiv) *structure.LogicalDiv {
	out := &structure.LogicalDiv{
		ID:         div.ID,
		Type:       div.Type,
		Label:      div.Label,
		OrderLabel: div.OrderLabel,
	}
	for i := range div.Div {
		if div.Div[i].Type == "" {
			continue
		}
		out.Children = append(out.Children, toLogicalDiv(&div.Div[i]))
	}
	return out
}

// collectPhysicalDivs flattens the physical structMap's div tree into a
// lookup keyed by div ID.
func collectPhysicalDivs(div *metsDiv, out map[string]structure.PhysicalDiv) {
	if div.ID != "" {
		out[div.ID] = structure.PhysicalDiv{
			ID:         div.ID,
			Order:      div.Order,
			Label:      div.Label,
			OrderLabel: div.OrderLabel,
		}
	}
	for i := range div.Div {
		collectPhysicalDivs(&div.Div[i], out)
	}
}

// EnrichPDF mutates the in-memory document per §4.3's enrichment rules and
// writes it back to s.path. toolLabel is the packaged tool name+version
// recorded in the injected <agent>.
func (s *MetadataStore) EnrichPDF(identifier, toolLabel string, now time.Time) error {
	if s.doc.alreadyEnriched(identifier) {
		return nil // idempotent re-run, invariant 5
	}

	s.doc.addAgent(toolLabel, fmt.Sprintf("PDF FileGroup for %s created at %s", identifier, now.Format(time.RFC3339)))
	s.doc.addDownloadFileGroup(identifier)

	container := s.doc.findTopLevelContainer()
	if container == nil {
		return fmt.Errorf("mets: no monograph/volume logical container found")
	}
	fptrID := "PDF_" + identifier
	container.Fptr = append([]metsFptr{{FileID: fptrID}}, container.Fptr...)

	out, err := xml.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("mets: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("mets: write %s: %w", s.path, err)
	}
	return nil
}
