package mets

import "encoding/xml"

// metsDocument mirrors the subset of METS/MODS this store projects from.
// Field order matters for EnrichPDF's marshal: Fptr must precede Div so
// freshly-inserted file pointers serialize before sibling divs.
type metsDocument struct {
	XMLName  xml.Name    `xml:"mets"`
	Attrs    []xml.Attr  `xml:",any,attr"`
	Hdr      *metsHdr    `xml:"metsHdr"`
	DmdSecs  []dmdSec    `xml:"dmdSec"`
	FileSec  metsFileSec `xml:"fileSec"`
	StructMaps []metsStructMap `xml:"structMap"`
	StructLink *metsStructLink `xml:"structLink"`
}

type metsHdr struct {
	Agents []metsAgent `xml:"agent"`
}

type metsAgent struct {
	Type      string `xml:"TYPE,attr,omitempty"`
	Role      string `xml:"ROLE,attr,omitempty"`
	OtherType string `xml:"OTHERTYPE,attr,omitempty"`
	Name      string `xml:"name"`
	Note      string `xml:"note,omitempty"`
}

type dmdSec struct {
	ID      string     `xml:"ID,attr"`
	MdWrap  mdWrap     `xml:"mdWrap"`
}

type mdWrap struct {
	MdType string      `xml:"MDTYPE,attr"`
	XmlData modsWrapper `xml:"xmlData"`
}

type modsWrapper struct {
	Mods modsSection `xml:"mods"`
}

type modsSection struct {
	RecordInfo      modsRecordInfo    `xml:"recordInfo"`
	Identifier      []modsIdentifier  `xml:"identifier"`
	TitleInfo       []modsTitleInfo   `xml:"titleInfo"`
	Name            []modsName        `xml:"name"`
	AccessCondition []modsValue       `xml:"accessCondition"`
	OriginInfo      []modsOriginInfo  `xml:"originInfo"`
}

type modsRecordInfo struct {
	RecordIdentifier *modsIdentifier `xml:"recordIdentifier"`
}

type modsIdentifier struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type modsTitleInfo struct {
	Title []string `xml:"title"`
}

type modsValue struct {
	Value string `xml:",chardata"`
}

type modsName struct {
	DisplayForm string         `xml:"displayForm"`
	NamePart    []modsNamePart `xml:"namePart"`
	Role        modsRole       `xml:"role"`
}

type modsNamePart struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type modsRole struct {
	RoleTerm []modsRoleTerm `xml:"roleTerm"`
}

type modsRoleTerm struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

func (n modsName) roleCode() string {
	for _, rt := range n.Role.RoleTerm {
		if rt.Type == "code" {
			return rt.Value
		}
	}
	return ""
}

func (n modsName) displayName() string {
	if n.DisplayForm != "" {
		return n.DisplayForm
	}
	for _, np := range n.NamePart {
		if np.Type == "family" {
			return np.Value
		}
	}
	return ""
}

type modsOriginInfo struct {
	EventType  string `xml:"eventType,attr,omitempty"`
	DateIssued string `xml:"dateIssued"`
}

type metsFileSec struct {
	FileGrp []metsFileGrp `xml:"fileGrp"`
}

type metsFileGrp struct {
	Use  string     `xml:"USE,attr"`
	File []metsFile `xml:"file"`
}

type metsFile struct {
	ID     string       `xml:"ID,attr"`
	FLocat metsFLocat   `xml:"FLocat"`
}

type metsFLocat struct {
	Href string `xml:"http://www.w3.org/1999/xlink href,attr"`
}

type metsStructMap struct {
	Type string  `xml:"TYPE,attr"`
	Div  metsDiv `xml:"div"`
}

type metsDiv struct {
	ID         string     `xml:"ID,attr,omitempty"`
	Type       string     `xml:"TYPE,attr,omitempty"`
	Label      string     `xml:"LABEL,attr,omitempty"`
	OrderLabel string     `xml:"ORDERLABEL,attr,omitempty"`
	Order      int        `xml:"ORDER,attr,omitempty"`
	DMDID      string     `xml:"DMDID,attr,omitempty"`
	ContentIDs string     `xml:"CONTENTIDS,attr,omitempty"`
	Fptr       []metsFptr `xml:"fptr"`
	Div        []metsDiv  `xml:"div"`
}

type metsFptr struct {
	FileID string `xml:"FILEID,attr"`
}

type metsStructLink struct {
	SmLink []metsSmLink `xml:"smLink"`
}

type metsSmLink struct {
	From string `xml:"http://www.w3.org/1999/xlink from,attr"`
	To   string `xml:"http://www.w3.org/1999/xlink to,attr"`
}

func (d *metsDocument) findPhysicalStructMap() *metsStructMap {
	for i := range d.StructMaps {
		if d.StructMaps[i].Type == "PHYSICAL" {
			return &d.StructMaps[i]
		}
	}
	return nil
}

func (d *metsDocument) findLogicalStructMap() *metsStructMap {
	for i := range d.StructMaps {
		if d.StructMaps[i].Type == "LOGICAL" {
			return &d.StructMaps[i]
		}
	}
	return nil
}

func (d *metsDocument) firstMODS() *modsSection {
	if len(d.DmdSecs) == 0 {
		return nil
	}
	return &d.DmdSecs[0].MdWrap.XmlData.Mods
}

func (d *metsDocument) modsByDMDID(id string) *modsSection {
	for i := range d.DmdSecs {
		if d.DmdSecs[i].ID == id {
			return &d.DmdSecs[i].MdWrap.XmlData.Mods
		}
	}
	return nil
}

// fileLocationsByID maps every file's ID attribute, across all file groups,
// to its FLocat href (the original filename as recorded in METS).
func (d *metsDocument) fileLocationsByID() map[string]string {
	out := make(map[string]string)
	for _, grp := range d.FileSec.FileGrp {
		for _, f := range grp.File {
			out[f.ID] = f.FLocat.Href
		}
	}
	return out
}

func (d *metsDocument) alreadyEnriched(identifier string) bool {
	for _, grp := range d.FileSec.FileGrp {
		if grp.Use == "DOWNLOAD" {
			for _, f := range grp.File {
				if f.ID == "PDF_"+identifier {
					return true
				}
			}
		}
	}
	return false
}

func (d *metsDocument) addAgent(toolLabel, note string) {
	if d.Hdr == nil {
		d.Hdr = &metsHdr{}
	}
	d.Hdr.Agents = append(d.Hdr.Agents, metsAgent{
		Type:      "OTHER",
		Role:      "OTHER",
		OtherType: "SOFTWARE",
		Name:      toolLabel,
		Note:      note,
	})
}

func (d *metsDocument) addDownloadFileGroup(identifier string) {
	d.FileSec.FileGrp = append(d.FileSec.FileGrp, metsFileGrp{
		Use: "DOWNLOAD",
		File: []metsFile{{
			ID:     "PDF_" + identifier,
			FLocat: metsFLocat{Href: identifier + ".pdf"},
		}},
	})
}

// findTopLevelContainer returns the first logical div whose TYPE is
// monograph or volume.
func (d *metsDocument) findTopLevelContainer() *metsDiv {
	logMap := d.findLogicalStructMap()
	if logMap == nil {
		return nil
	}
	var search func(*metsDiv) *metsDiv
	search = func(div *metsDiv) *metsDiv {
		if div.Type == "monograph" || div.Type == "volume" {
			return div
		}
		for i := range div.Div {
			if found := search(&div.Div[i]); found != nil {
				return found
			}
		}
		return nil
	}
	return search(&logMap.Div)
}
