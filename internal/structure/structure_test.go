package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/model"
)

func TestBuildTreeResolvesPhysrootAndOrder(t *testing.T) {
	in := Input{
		Root: &LogicalDiv{
			ID:   "LOG_ROOT",
			Type: "monograph",
			Children: []*LogicalDiv{
				{ID: "LOG_0001", Type: "title_page"},
				{ID: "LOG_0002", Type: "chapter"},
			},
		},
		FallbackTitle: "Faust",
		StructLinks: map[string]string{
			"LOG_ROOT": physrootTarget,
			"LOG_0001": "PHYS_0001",
			"LOG_0002": "PHYS_0002",
		},
		PhysicalByID: map[string]PhysicalDiv{
			"PHYS_0001": {ID: "PHYS_0001", Order: 1},
			"PHYS_0002": {ID: "PHYS_0002", Order: 5},
		},
	}

	root, err := BuildTree(in)
	require.NoError(t, err)
	assert.Equal(t, 1, root.Page)
	assert.Equal(t, "Monographie", labelOrFallback(root, "Faust")) // monograph maps, falls back only if unmapped

	require.Len(t, root.Children, 2)
	assert.Equal(t, "Titelblatt", root.Children[0].Label)
	assert.Equal(t, 1, root.Children[0].Page)
	assert.Equal(t, "Kapitel", root.Children[1].Label)
	assert.Equal(t, 5, root.Children[1].Page)
}

func labelOrFallback(n *model.StructureNode, fallback string) string {
	if n.Label == "" {
		return fallback
	}
	return n.Label
}

func TestBuildTreeDropsUnresolvedSubtree(t *testing.T) {
	in := Input{
		Root: &LogicalDiv{
			ID:   "LOG_ROOT",
			Type: "volume",
			Children: []*LogicalDiv{
				{ID: "LOG_0001", Type: "chapter"},
			},
		},
		FallbackTitle: "Faust",
		StructLinks: map[string]string{
			"LOG_ROOT": physrootTarget,
			// LOG_0001 has no structLink entry at all -> unresolved
		},
		PhysicalByID: map[string]PhysicalDiv{},
	}

	root, err := BuildTree(in)
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}

func TestBuildTreeFatalOnMissingOrder(t *testing.T) {
	in := Input{
		Root: &LogicalDiv{ID: "LOG_ROOT", Type: "monograph"},
		StructLinks: map[string]string{
			"LOG_ROOT": "PHYS_BAD",
		},
		PhysicalByID: map[string]PhysicalDiv{
			"PHYS_BAD": {ID: "PHYS_BAD", Order: 0},
		},
	}

	_, err := BuildTree(in)
	assert.Error(t, err)
}

func TestBuildTreeLeavesExcludedUnderTopLevelContainer(t *testing.T) {
	in := Input{
		Root: &LogicalDiv{ID: "LOG_ROOT", Type: "monograph"},
		StructLinks: map[string]string{
			"LOG_ROOT": physrootTarget,
		},
		PhysicalByID: map[string]PhysicalDiv{},
		EnableLeaves: true,
		LeafTargets: map[string][]string{
			"LOG_ROOT": {"PHYS_0001"},
		},
	}

	root, err := BuildTree(in)
	require.NoError(t, err)
	assert.Empty(t, root.Children, "leaves must not be added beneath top-level containers")
}

func TestBuildTreeLeavesOrderedByPhysicalOrderNotLinkOrder(t *testing.T) {
	in := Input{
		Root: &LogicalDiv{
			ID:   "LOG_ROOT",
			Type: "volume",
			Children: []*LogicalDiv{
				{ID: "LOG_0001", Type: "chapter"},
			},
		},
		StructLinks: map[string]string{
			"LOG_ROOT": physrootTarget,
			"LOG_0001": "PHYS_0003",
		},
		PhysicalByID: map[string]PhysicalDiv{
			"PHYS_0001": {ID: "PHYS_0001", Order: 1, Label: "First"},
			"PHYS_0002": {ID: "PHYS_0002", Order: 2, Label: "Second"},
			"PHYS_0003": {ID: "PHYS_0003", Order: 3, Label: "Third"},
		},
		EnableLeaves: true,
		// Links recorded out of physical order; the third-order target is
		// listed first to prove sorting isn't smLink document order.
		LeafTargets: map[string][]string{
			"LOG_0001": {"PHYS_0003", "PHYS_0001", "PHYS_0002"},
		},
	}

	root, err := BuildTree(in)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	leaves := root.Children[0].Children
	require.Len(t, leaves, 3)
	assert.Equal(t, "First", leaves[0].Label)
	assert.Equal(t, "Second", leaves[1].Label)
	assert.Equal(t, "Third", leaves[2].Label)
}
