package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// TestFixture represents a test fixture with input and expected output.
type TestFixture struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputFile   string                 `json:"input_file"`
	Expected    interface{}            `json:"expected"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// VolumeExpectedResult is the expected descriptive/page projection for a
// synthetic digitized volume, used to assert mets/alto/structure parsing.
type VolumeExpectedResult struct {
	Descriptive model.DescriptiveData `json:"descriptive"`
	PageCount   int                   `json:"page_count"`
	OutlineTags []string              `json:"outline_tags"`
}

// LoadFixture loads a test fixture from JSON file.
func LoadFixture(t *testing.T, name string) TestFixture {
	t.Helper()

	fixturesDir := GetFixturesDir(t)
	fixturePath := filepath.Join(fixturesDir, name+".json")

	data, err := os.ReadFile(fixturePath) //nolint:gosec // G304: Reading test fixture files with controlled paths
	require.NoError(t, err, "Failed to read fixture file: %s", fixturePath)

	var fixture TestFixture
	err = json.Unmarshal(data, &fixture)
	require.NoError(t, err, "Failed to unmarshal fixture JSON")

	return fixture
}

// SaveFixture saves a test fixture to JSON file.
func SaveFixture(t *testing.T, fixture TestFixture) {
	t.Helper()

	fixturesDir := GetFixturesDir(t)
	require.NoError(t, EnsureDir(fixturesDir))

	fixturePath := filepath.Join(fixturesDir, fixture.Name+".json")

	data, err := json.MarshalIndent(fixture, "", "  ")
	require.NoError(t, err, "Failed to marshal fixture to JSON")

	err = os.WriteFile(fixturePath, data, 0o600)
	require.NoError(t, err, "Failed to write fixture file: %s", fixturePath)
}

// createMonographFixture describes a small single-volume monograph: three
// pages, a title page and two chapters.
func createMonographFixture(t *testing.T) TestFixture {
	t.Helper()

	return TestFixture{
		Name:        "monograph_three_pages",
		Description: "Three-page monograph with title page and two chapters",
		InputFile:   "volumes/monograph/mets.xml",
		Expected: VolumeExpectedResult{
			Descriptive: model.DescriptiveData{
				URN:           "urn:nbn:de:test-0001",
				Identifier:    "PPN123456789",
				Title:         "Sample Monograph",
				Person:        "Mustermann, Max",
				YearPublished: "1887",
				License:       "https://creativecommons.org/publicdomain/mark/1.0/",
			},
			PageCount:   3,
			OutlineTags: []string{"title_page", "chapter", "chapter"},
		},
		Metadata: map[string]interface{}{
			"structure": "monograph",
		},
	}
}

// createMultivolumeFixture describes a two-volume work sharing one
// top-level bibliographic record.
func createMultivolumeFixture(t *testing.T) TestFixture {
	t.Helper()

	return TestFixture{
		Name:        "multivolume_work",
		Description: "Two-volume work with per-volume DMDID fallback",
		InputFile:   "volumes/multivolume/mets.xml",
		Expected: VolumeExpectedResult{
			Descriptive: model.DescriptiveData{
				URN:           "urn:nbn:de:test-0002",
				Identifier:    "PPN987654321",
				Title:         "Collected Letters, Volume 1",
				Person:        "Goethe, Johann Wolfgang von",
				YearPublished: "1820",
				License:       model.NotAvailable,
			},
			PageCount:   4,
			OutlineTags: []string{"volume", "chapter"},
		},
		Metadata: map[string]interface{}{
			"structure": "multivolume",
			"volumes":   2,
		},
	}
}

// createGranularFixture describes a volume with a single page carrying a
// granular URN.
func createGranularFixture(t *testing.T) TestFixture {
	t.Helper()

	return TestFixture{
		Name:        "granular_page",
		Description: "Monograph with one granular-URN page requiring an extra footer line",
		InputFile:   "volumes/granular/mets.xml",
		Expected: VolumeExpectedResult{
			Descriptive: model.DescriptiveData{
				URN:           "urn:nbn:de:test-0003",
				Identifier:    "PPN111222333",
				Title:         "Illustrated Plates",
				Person:        model.NotAvailable,
				YearPublished: "0",
				License:       model.NotAvailable,
			},
			PageCount:   2,
			OutlineTags: []string{"monograph"},
		},
		Metadata: map[string]interface{}{
			"structure":        "monograph",
			"granular_page":    2,
			"granular_urn":     "urn:nbn:de:test-0003-2",
		},
	}
}

// CreateSampleFixtures creates the standard set of sample test fixtures.
func CreateSampleFixtures(t *testing.T) {
	t.Helper()

	SaveFixture(t, createMonographFixture(t))
	SaveFixture(t, createMultivolumeFixture(t))
	SaveFixture(t, createGranularFixture(t))
}

// GetFixtureInputPath returns the full path to a fixture's input file.
func GetFixtureInputPath(t *testing.T, fixture TestFixture) string {
	t.Helper()

	testDataDir := GetTestDataDir(t)
	return filepath.Join(testDataDir, fixture.InputFile)
}
