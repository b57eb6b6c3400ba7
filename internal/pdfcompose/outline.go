package pdfcompose

import (
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// addOutline builds the PDF outline (bookmark tree) from root, in tree
// order, per §4.6: the root outline title is the root label, each node
// becomes a bookmark with a goto-local-page/FITB action, children recurse.
func addOutline(ctx *pdfmodel.Context, root *model.StructureNode) error {
	bookmarks := toBookmarks(root)
	return ctx.XRefTable.AddBookmarks(bookmarks, true)
}

func toBookmarks(node *model.StructureNode) []*pdfmodel.Bookmark {
	bm := &pdfmodel.Bookmark{
		Title:    node.Label,
		PageFrom: node.Page,
	}
	for _, child := range node.Children {
		bm.Kids = append(bm.Kids, toBookmarks(child)...)
	}
	return []*pdfmodel.Bookmark{bm}
}
