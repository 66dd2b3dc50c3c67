package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regestra/regestra/internal/search"
	"github.com/regestra/regestra/internal/signature"
)

// seedArchive builds a small fonds: one component with two elements
// ("[I] Fonds", "[II] Maps"), one unit, two child documents and one root
// document, plus a "maps" tag on one child.
type archiveFixture struct {
	docs     *DocumentStore
	ctx      context.Context
	fonds    *signature.Element
	maps     *signature.Element
	unit     *Document
	letter   *Document
	mapSheet *Document
	loose    *Document
	mapsTag  *Tag
}

func seedArchive(t *testing.T) archiveFixture {
	t.Helper()
	ctx := context.Background()
	docs, tags, elements, components := newTestStores(t)

	comp, err := components.Create(ctx, "Topographic", "", signature.IndexTypeRoman)
	require.NoError(t, err)
	fonds, err := elements.Create(ctx, signature.CreateElementInput{
		ComponentID: comp.ID, Name: "Fonds",
	})
	require.NoError(t, err)
	maps, err := elements.Create(ctx, signature.CreateElementInput{
		ComponentID: comp.ID, Name: "Maps", ParentIDs: []int64{fonds.ID},
	})
	require.NoError(t, err)

	mapsTag, err := tags.Create(ctx, "maps", "")
	require.NoError(t, err)

	unit, err := docs.Create(ctx, CreateDocumentInput{Type: TypeUnit, Title: "Province files"})
	require.NoError(t, err)
	letter, err := docs.Create(ctx, CreateDocumentInput{
		Title:        "Letter",
		ParentUnitID: &unit.ID,
		TopographicSignatures: []signature.Path{{fonds.ID}},
	})
	require.NoError(t, err)
	mapSheet, err := docs.Create(ctx, CreateDocumentInput{
		Title:        "Map sheet 4",
		ParentUnitID: &unit.ID,
		TopographicSignatures: []signature.Path{{fonds.ID, maps.ID}},
		TagIDs:       []int64{mapsTag.ID},
	})
	require.NoError(t, err)
	loose, err := docs.Create(ctx, CreateDocumentInput{Title: "Loose note"})
	require.NoError(t, err)

	return archiveFixture{
		docs: docs, ctx: ctx, fonds: fonds, maps: maps,
		unit: unit, letter: letter, mapSheet: mapSheet, loose: loose,
		mapsTag: mapsTag,
	}
}

func ids(docs []*Document) []int64 {
	out := make([]int64, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestDocumentSearch_SignaturePrefix(t *testing.T) {
	f := seedArchive(t)

	// Everything filed under the fonds, at any depth.
	resp, err := f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "topographicSignature",
			Condition: search.CondStartsWith,
			Value:     []any{float64(f.fonds.ID)},
		}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{f.letter.ID, f.mapSheet.ID}, ids(resp.Data))

	// Exact path match only.
	resp, err = f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "topographicSignature",
			Condition: search.CondEQ,
			Value:     []any{float64(f.fonds.ID), float64(f.maps.ID)},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.mapSheet.ID}, ids(resp.Data))
}

func TestDocumentSearch_SignatureSequence(t *testing.T) {
	f := seedArchive(t)

	resp, err := f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "topographicSignature",
			Condition: search.CondContainsSequence,
			Value:     []any{float64(f.maps.ID)},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.mapSheet.ID}, ids(resp.Data))
}

func TestDocumentSearch_TagJoin(t *testing.T) {
	f := seedArchive(t)

	resp, err := f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "tagIds",
			Condition: search.CondAnyOf,
			Value:     []any{float64(f.mapsTag.ID)},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.mapSheet.ID}, ids(resp.Data))
	assert.Equal(t, int64(1), resp.TotalSize)
}

func TestDocumentSearch_RootsAndUnits(t *testing.T) {
	f := seedArchive(t)

	// Roots: documents with no parent unit (null EQ).
	resp, err := f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "parentUnitArchiveDocumentId",
			Condition: search.CondEQ,
			Value:     nil,
		}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{f.unit.ID, f.loose.ID}, ids(resp.Data))

	// Unit navigation: children of one unit, units only filter.
	resp, err = f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field:     "parentUnitArchiveDocumentId",
			Condition: search.CondEQ,
			Value:     f.unit.ID,
		}},
		Sort: []search.SortElement{{Field: "title", Direction: search.SortAsc}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.letter.ID, f.mapSheet.ID}, ids(resp.Data))

	resp, err = f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field: "type", Condition: search.CondEQ, Value: string(TypeUnit),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.unit.ID}, ids(resp.Data))
}

func TestDocumentSearch_ResolvedSignatures(t *testing.T) {
	f := seedArchive(t)

	resp, err := f.docs.Search(f.ctx, search.Request{
		Query: []search.QueryElement{{
			Field: "title", Condition: search.CondEQ, Value: "Map sheet 4",
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	got := resp.Data[0]
	require.Len(t, got.ResolvedTopographicSignatures, 1)
	assert.Equal(t, "[I] Fonds / [II] Maps", got.ResolvedTopographicSignatures[0])
	assert.Equal(t, []int64{f.mapsTag.ID}, got.TagIDs)
}

func TestDocumentSearch_ActiveFilterPagination(t *testing.T) {
	ctx := context.Background()
	docs, _, _, _ := newTestStores(t)

	for i := 0; i < 30; i++ {
		doc, err := docs.Create(ctx, CreateDocumentInput{Title: "doc"})
		require.NoError(t, err)
		if i >= 25 {
			require.NoError(t, docs.Disable(ctx, doc.ID))
		}
	}

	resp, err := docs.Search(ctx, search.Request{
		Query: []search.QueryElement{{
			Field: "active", Condition: search.CondEQ, Value: true,
		}},
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), resp.TotalSize)
	assert.Equal(t, int64(3), resp.TotalPages)
	assert.Len(t, resp.Data, 5)
}
