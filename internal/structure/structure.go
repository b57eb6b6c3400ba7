// Package structure implements the structure mapper (§4.4): builds the
// logical outline tree from a parsed METS document, resolving logical to
// physical links and localising the fixed logical-type vocabulary.
package structure

import (
	"fmt"
	"sort"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// typeLabels maps a logical div's TYPE attribute to its localised label.
// An unmapped type yields no label and the node is discarded.
var typeLabels = map[string]string{
	"cover_front":         "Vorderdeckel",
	"cover_back":          "Rückdeckel",
	"title_page":          "Titelblatt",
	"engraved_titlepage":  "Kupfertitel",
	"preface":             "Vorwort",
	"chapter":             "Kapitel",
	"volume":              "Band",
	"monograph":           "Monographie",
	"table_of_contents":   "Inhaltsverzeichnis",
	"index":               "Register",
	"illustration":        "Abbildung",
	"map":                 "Karte",
	"binding":             "Einband",
}

// topLevelContainerTypes are the logical types beneath which plain leaves
// are never synthesised (§4.4 "Plain leaves").
var topLevelContainerTypes = map[string]bool{
	"volume":    true,
	"monograph": true,
}

// physrootTarget is the structLink special target mapping to page 1.
const physrootTarget = "physroot"

// LogicalDiv is the subset of a parsed logical structMap div the mapper
// needs: its own attributes plus its children, independent of how the
// caller's METS parser represents the XML.
type LogicalDiv struct {
	ID         string
	Type       string
	Label      string
	OrderLabel string
	Children   []*LogicalDiv
}

// PhysicalDiv is the subset of a parsed physical structMap div needed to
// resolve a structLink target.
type PhysicalDiv struct {
	ID         string
	Order      int
	Label      string
	OrderLabel string
}

// Input bundles everything BuildTree needs, decoupled from the mets
// package's XML representation so structure has no import-cycle risk.
type Input struct {
	Root             *LogicalDiv
	FallbackTitle    string
	StructLinks      map[string]string    // logical id -> physical id (first smLink[@from])
	PhysicalByID     map[string]PhysicalDiv
	EnableLeaves     bool
	LeafTargets      map[string][]string // logical id -> additional physical ids linked from it
}

// BuildTree constructs the DigitalStructureTree described in §4.4. Missing
// logical structMap, missing physical target, or missing @ORDER are fatal.
func BuildTree(in Input) (*model.StructureNode, error) {
	if in.Root == nil {
		return nil, fmt.Errorf("structure: missing logical structMap root")
	}

	root, err := buildNode(in.Root, in, true)
	if err != nil {
		return nil, err
	}
	root.Page = 1 // the root's page is always 1, per the data model invariant
	dropUnresolved(root)
	return root, nil
}

func buildNode(div *LogicalDiv, in Input, isRoot bool) (*model.StructureNode, error) {
	label := resolveLabel(div, in.FallbackTitle, isRoot)
	if label == "" {
		return nil, nil // unmapped type: caller drops this node
	}

	page, err := resolvePage(div.ID, in)
	if err != nil {
		return nil, err
	}

	node := &model.StructureNode{Label: label, Page: page}

	for _, child := range div.Children {
		childNode, err := buildNode(child, in, false)
		if err != nil {
			return nil, err
		}
		if childNode != nil {
			node.Children = append(node.Children, childNode)
		}
	}

	if in.EnableLeaves && !topLevelContainerTypes[div.Type] {
		node.Children = append(node.Children, buildLeaves(div.ID, in)...)
	}

	return node, nil
}

func resolveLabel(div *LogicalDiv, fallbackTitle string, isRoot bool) string {
	if div.Label != "" {
		return div.Label
	}
	if div.OrderLabel != "" {
		return div.OrderLabel
	}
	if mapped, ok := typeLabels[div.Type]; ok {
		return mapped
	}
	if isRoot && fallbackTitle != "" {
		return fallbackTitle
	}
	return ""
}

func resolvePage(logicalID string, in Input) (int, error) {
	physID, ok := in.StructLinks[logicalID]
	if !ok {
		return model.UnresolvedPage, nil
	}
	if physID == physrootTarget {
		return 1, nil
	}
	phys, ok := in.PhysicalByID[physID]
	if !ok {
		return 0, fmt.Errorf("structure: smLink target %q has no physical div", physID)
	}
	if phys.Order <= 0 {
		return 0, fmt.Errorf("structure: physical div %q missing ORDER", physID)
	}
	return phys.Order, nil
}

// buildLeaves returns one child per additional physical target linked from
// logicalID, ordered by the physical div's @ORDER per §4.4 ("Leaves ...
// ordered by physical @ORDER"), not by smLink document order.
func buildLeaves(logicalID string, in Input) []*model.StructureNode {
	targets := in.LeafTargets[logicalID]
	if len(targets) == 0 {
		return nil
	}
	leaves := make([]model.StructureNode, 0, len(targets))
	for _, physID := range targets {
		phys, ok := in.PhysicalByID[physID]
		if !ok || phys.Order <= 0 {
			continue
		}
		label := phys.Label
		if label == "" {
			label = phys.OrderLabel
		}
		leaves = append(leaves, model.StructureNode{Label: label, Page: phys.Order})
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Page < leaves[j].Page })

	out := make([]*model.StructureNode, len(leaves))
	for i := range leaves {
		out[i] = &leaves[i]
	}
	return out
}

// dropUnresolved recursively removes any subtree whose page is
// UnresolvedPage, per §4.4's post-pass.
func dropUnresolved(node *model.StructureNode) {
	kept := node.Children[:0]
	for _, child := range node.Children {
		if child.Page == model.UnresolvedPage {
			continue
		}
		dropUnresolved(child)
		kept = append(kept, child)
	}
	node.Children = kept
}
