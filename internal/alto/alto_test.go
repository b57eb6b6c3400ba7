package alto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleALTO = `<?xml version="1.0" encoding="UTF-8"?>
<alto>
  <Layout>
    <Page WIDTH="2000" HEIGHT="3000">
      <PrintSpace>
        <TextBlock>
          <TextLine HPOS="100" VPOS="200" WIDTH="800" HEIGHT="40">
            <String CONTENT="Hello"/>
            <String CONTENT="world"/>
          </TextLine>
          <TextLine HPOS="100" VPOS="260" WIDTH="400" HEIGHT="40">
            <String CONTENT="Faust"/>
          </TextLine>
        </TextBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

func TestParseALTOExtractsLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page1.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleALTO), 0o644))

	page, err := ParseALTO(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, page.PageWidth)
	assert.Equal(t, 3000, page.PageHeight)
	require.Len(t, page.Lines, 2)
	assert.Equal(t, "Hello world", page.Lines[0].Text)
	assert.Equal(t, 100, page.Lines[0].Bounds.X)
	assert.Equal(t, "Faust", page.Lines[1].Text)
}

func TestParseALTORejectsMissingDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<alto><Layout><Page WIDTH="0" HEIGHT="0"/></Layout></alto>`), 0o644))

	_, err := ParseALTO(path)
	assert.Error(t, err)
}
