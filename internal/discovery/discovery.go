// Package discovery resolves the two input shapes accepted by a run (§6):
// a bare directory containing an image subdirectory, or a METS file path
// whose sibling image directory is located via the file group URIs.
package discovery

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// candidateImageDirs are checked, in order, when no METS file is given.
var candidateImageDirs = []string{"MAX", "TIF", "DEFAULT"}

// fulltextDirName is the conventional ALTO directory alongside the image
// directory.
const fulltextDirName = "FULLTEXT"

// Input is the resolved shape of a run's source data.
type Input struct {
	// MetsPath is empty when the run was given a bare image directory.
	MetsPath string
	ImageDir string
	// AltoDir is empty when no FULLTEXT sibling directory exists.
	AltoDir string
}

// Resolve inspects path and returns the resolved Input. If path is a METS
// XML file, the sibling image directory is located via the file group
// URIs it declares; otherwise path is treated as a directory containing
// one of the conventional image subdirectories.
func Resolve(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("discovery: stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return resolveFromMets(path)
	}
	return resolveFromDirectory(path)
}

func resolveFromDirectory(dir string) (Input, error) {
	for _, candidate := range candidateImageDirs {
		imgDir := filepath.Join(dir, candidate)
		if isDir(imgDir) {
			in := Input{ImageDir: imgDir}
			if alto := filepath.Join(dir, fulltextDirName); isDir(alto) {
				in.AltoDir = alto
			}
			return in, nil
		}
	}
	return Input{}, fmt.Errorf("discovery: no image subdirectory (%v) found under %s", candidateImageDirs, dir)
}

func resolveFromMets(metsPath string) (Input, error) {
	raw, err := os.ReadFile(metsPath)
	if err != nil {
		return Input{}, fmt.Errorf("discovery: read %s: %w", metsPath, err)
	}

	var doc struct {
		FileSec struct {
			FileGrp []struct {
				File []struct {
					FLocat struct {
						Href string `xml:"href,attr"`
					} `xml:"FLocat"`
				} `xml:"file"`
			} `xml:"fileGrp"`
		} `xml:"fileSec"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Input{}, fmt.Errorf("discovery: parse %s: %w", metsPath, err)
	}

	base := filepath.Dir(metsPath)
	for _, grp := range doc.FileSec.FileGrp {
		for _, f := range grp.File {
			if f.FLocat.Href == "" {
				continue
			}
			imgDir := filepath.Join(base, filepath.Dir(f.FLocat.Href))
			if isDir(imgDir) {
				in := Input{MetsPath: metsPath, ImageDir: imgDir}
				if alto := filepath.Join(base, fulltextDirName); isDir(alto) {
					in.AltoDir = alto
				}
				return in, nil
			}
		}
	}

	return Input{}, fmt.Errorf("discovery: could not locate sibling image directory for %s", metsPath)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
