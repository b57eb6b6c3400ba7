package pdfcompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/model"
)

func TestToBookmarksPreservesTreeOrder(t *testing.T) {
	root := &model.StructureNode{
		Label: "Faust",
		Page:  1,
		Children: []*model.StructureNode{
			{Label: "Titelblatt", Page: 1},
			{Label: "Kapitel", Page: 5},
		},
	}

	bms := toBookmarks(root)
	require.Len(t, bms, 1)
	assert.Equal(t, "Faust", bms[0].Title)
	require.Len(t, bms[0].Kids, 2)
	assert.Equal(t, "Titelblatt", bms[0].Kids[0].Title)
	assert.Equal(t, 5, bms[0].Kids[1].PageFrom)
}
