package mets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMETS = `<?xml version="1.0" encoding="UTF-8"?>
<mets xmlns="http://www.loc.gov/METS/" xmlns:xlink="http://www.w3.org/1999/xlink">
  <dmdSec ID="DMD1">
    <mdWrap MDTYPE="MODS">
      <xmlData>
        <mods>
          <recordInfo><recordIdentifier>vd18-12345</recordIdentifier></recordInfo>
          <identifier type="urn">urn:nbn:de:gbv:3:3-21437</identifier>
          <titleInfo><title>Faust</title></titleInfo>
          <name>
            <displayForm>Goethe, Johann Wolfgang von</displayForm>
            <role><roleTerm type="code">aut</roleTerm></role>
          </name>
          <accessCondition>Public Domain</accessCondition>
          <originInfo eventType="publication"><dateIssued>1808</dateIssued></originInfo>
        </mods>
      </xmlData>
    </mdWrap>
  </dmdSec>
  <fileSec>
    <fileGrp USE="DEFAULT">
      <file ID="FILE_0001"><FLocat xlink:href="00000001.jpg"/></file>
      <file ID="FILE_0002"><FLocat xlink:href="00000002.jpg"/></file>
    </fileGrp>
  </fileSec>
  <structMap TYPE="PHYSICAL">
    <div TYPE="physSequence">
      <div ID="PHYS_0001" ORDER="1" CONTENTIDS="urn:nbn:de:gbv:3:3-21437-p0001-0"><fptr FILEID="FILE_0001"/></div>
      <div ID="PHYS_0002" ORDER="2"><fptr FILEID="FILE_0002"/></div>
    </div>
  </structMap>
  <structMap TYPE="LOGICAL">
    <div TYPE="monograph" DMDID="DMD1" LABEL="Faust">
      <div TYPE="chapter" ID="LOG_0001" LABEL="Erster Teil"/>
    </div>
  </structMap>
  <structLink>
    <smLink xlink:from="LOG_0001" xlink:to="PHYS_0001"/>
  </structLink>
</mets>`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mets.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMETS), 0o644))
	return path
}

func TestDescriptiveExtractsFields(t *testing.T) {
	store, err := NewMetadataStore(writeSample(t))
	require.NoError(t, err)

	d := store.Descriptive()
	assert.Equal(t, "vd18-12345", d.Identifier)
	assert.Equal(t, "urn:nbn:de:gbv:3:3-21437", d.URN)
	assert.Equal(t, "Faust", d.Title)
	assert.Equal(t, "Goethe, Johann Wolfgang von", d.Person)
	assert.Equal(t, "Public Domain", d.License)
	assert.Equal(t, "1808", d.YearPublished)
}

func TestPagesOrderedWithIdentifier(t *testing.T) {
	store, err := NewMetadataStore(writeSample(t))
	require.NoError(t, err)

	pages, err := store.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Order)
	assert.Equal(t, "00000001.jpg", pages[0].FilePointer)
	assert.True(t, pages[0].HasIdentifier())
	assert.False(t, pages[1].HasIdentifier())
}

func TestStructureInputResolvesLinks(t *testing.T) {
	store, err := NewMetadataStore(writeSample(t))
	require.NoError(t, err)

	in, err := store.StructureInput("Faust", false)
	require.NoError(t, err)

	require.NotNil(t, in.Root)
	assert.Equal(t, "monograph", in.Root.Type)
	require.Len(t, in.Root.Children, 1)
	assert.Equal(t, "LOG_0001", in.Root.Children[0].ID)
	assert.Equal(t, "PHYS_0001", in.StructLinks["LOG_0001"])
	assert.Equal(t, 1, in.PhysicalByID["PHYS_0001"].Order)
}

func TestEnrichPDFIsIdempotent(t *testing.T) {
	path := writeSample(t)
	store, err := NewMetadataStore(path)
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.EnrichPDF("vd18-12345", "derivans/1.0", now))

	reloaded, err := NewMetadataStore(path)
	require.NoError(t, err)
	assert.True(t, reloaded.doc.alreadyEnriched("vd18-12345"))

	// Second run must not duplicate the agent or file group.
	require.NoError(t, reloaded.EnrichPDF("vd18-12345", "derivans/1.0", now))
	assert.Len(t, reloaded.doc.Hdr.Agents, 1)
}
