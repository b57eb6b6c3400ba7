package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/derivans/internal/model"
)

func TestCreateSampleFixtures(t *testing.T) {
	CreateSampleFixtures(t)

	fixturesDir := GetFixturesDir(t)
	assert.True(t, DirExists(fixturesDir))

	assert.True(t, FileExists(fixturesDir+"/monograph_three_pages.json"))
	assert.True(t, FileExists(fixturesDir+"/multivolume_work.json"))
	assert.True(t, FileExists(fixturesDir+"/granular_page.json"))
}

func TestLoadFixture(t *testing.T) {
	CreateSampleFixtures(t)

	fixture := LoadFixture(t, "monograph_three_pages")
	assert.Equal(t, "monograph_three_pages", fixture.Name)
	assert.Equal(t, "volumes/monograph/mets.xml", fixture.InputFile)
	assert.NotNil(t, fixture.Expected)
}

func TestSaveAndLoadFixture(t *testing.T) {
	fixture := TestFixture{
		Name:        "test_fixture",
		Description: "Test fixture for unit testing",
		InputFile:   "test/input.xml",
		Expected: VolumeExpectedResult{
			Descriptive: model.DescriptiveData{Title: "Test Title"},
			PageCount:   1,
		},
	}

	SaveFixture(t, fixture)

	loadedFixture := LoadFixture(t, "test_fixture")
	assert.Equal(t, fixture.Name, loadedFixture.Name)
	assert.Equal(t, fixture.Description, loadedFixture.Description)
	assert.Equal(t, fixture.InputFile, loadedFixture.InputFile)
}

func TestGetFixtureInputPath(t *testing.T) {
	fixture := TestFixture{
		InputFile: "volumes/monograph/mets.xml",
	}

	path := GetFixtureInputPath(t, fixture)
	assert.Contains(t, path, "testdata/volumes/monograph/mets.xml")
}
