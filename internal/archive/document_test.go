package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/store"
)

func newTestStores(t *testing.T) (*DocumentStore, *TagStore, *signature.ElementStore, *signature.ComponentStore) {
	t.Helper()

	db, err := store.Open("", 5000)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	elements, err := signature.NewElementStore(db, 128)
	require.NoError(t, err)

	return NewDocumentStore(db, elements), NewTagStore(db),
		elements, signature.NewComponentStore(db)
}

func TestDocumentCreateAndGet(t *testing.T) {
	ctx := context.Background()
	docs, _, _, _ := newTestStores(t)

	unit, err := docs.Create(ctx, CreateDocumentInput{
		Type:  TypeUnit,
		Title: "Correspondence 1918-1939",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, unit.RefCode)
	assert.True(t, unit.Active)
	assert.Nil(t, unit.ParentUnitID)
	assert.Empty(t, unit.TopographicSignatures)

	pages := int64(12)
	doc, err := docs.Create(ctx, CreateDocumentInput{
		Type:          TypeDocument,
		ParentUnitID:  &unit.ID,
		Title:         "Letter to the province office",
		Creator:       "J. Nowak",
		CreationDate:  "1921-03-14",
		NumberOfPages: &pages,
		TopographicSignatures: []signature.Path{{1, 2}},
		DescriptiveSignatures: []signature.Path{{7}},
	})
	require.NoError(t, err)

	got, err := docs.GetByID(ctx, doc.ID, "parentUnit")
	require.NoError(t, err)
	assert.Equal(t, []signature.Path{{1, 2}}, got.TopographicSignatures)
	assert.Equal(t, []signature.Path{{7}}, got.DescriptiveSignatures)
	require.NotNil(t, got.NumberOfPages)
	assert.Equal(t, int64(12), *got.NumberOfPages)
	require.NotNil(t, got.ParentUnit)
	assert.Equal(t, unit.ID, got.ParentUnit.ID)
}

func TestDocumentCreateValidation(t *testing.T) {
	ctx := context.Background()
	docs, _, _, _ := newTestStores(t)

	_, err := docs.Create(ctx, CreateDocumentInput{Title: ""})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))

	// Parent must exist.
	missing := int64(999)
	_, err = docs.Create(ctx, CreateDocumentInput{Title: "x", ParentUnitID: &missing})
	require.Error(t, err)

	// Parent must be a unit, not a leaf document.
	leaf, err := docs.Create(ctx, CreateDocumentInput{Title: "leaf"})
	require.NoError(t, err)
	_, err = docs.Create(ctx, CreateDocumentInput{Title: "x", ParentUnitID: &leaf.ID})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}

func TestDocumentUpdate(t *testing.T) {
	ctx := context.Background()
	docs, tags, _, _ := newTestStores(t)

	mapsTag, err := tags.Create(ctx, "maps", "")
	require.NoError(t, err)

	doc, err := docs.Create(ctx, CreateDocumentInput{Title: "before"})
	require.NoError(t, err)

	title := "after"
	sigs := []signature.Path{{3, 4, 5}}
	tagIDs := []int64{mapsTag.ID}
	updated, err := docs.Update(ctx, doc.ID, DocumentPatch{
		Title:                 &title,
		TopographicSignatures: &sigs,
		TagIDs:                &tagIDs,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, sigs, updated.TopographicSignatures)
	assert.Equal(t, []int64{mapsTag.ID}, updated.TagIDs)

	// Clearing the parent via a present-but-nil field.
	unit, err := docs.Create(ctx, CreateDocumentInput{Type: TypeUnit, Title: "unit"})
	require.NoError(t, err)
	parent := &unit.ID
	updated, err = docs.Update(ctx, doc.ID, DocumentPatch{ParentUnitID: &parent})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentUnitID)

	var noParent *int64
	updated, err = docs.Update(ctx, doc.ID, DocumentPatch{ParentUnitID: &noParent})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentUnitID)

	_, err = docs.Update(ctx, 999, DocumentPatch{Title: &title})
	require.Error(t, err)
}

func TestDocumentDisable(t *testing.T) {
	ctx := context.Background()
	docs, _, _, _ := newTestStores(t)

	doc, err := docs.Create(ctx, CreateDocumentInput{Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, docs.Disable(ctx, doc.ID))

	// The record survives, flagged inactive.
	got, err := docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.Error(t, docs.Disable(ctx, 999))
}

func TestTagStore(t *testing.T) {
	ctx := context.Background()
	_, tags, _, _ := newTestStores(t)

	a, err := tags.Create(ctx, "maps", "cartographic material")
	require.NoError(t, err)
	_, err = tags.Create(ctx, "letters", "")
	require.NoError(t, err)

	_, err = tags.Create(ctx, "maps", "")
	require.Error(t, err, "duplicate name conflicts")

	all, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "letters", all[0].Name)

	require.NoError(t, tags.Delete(ctx, a.ID))
	require.Error(t, tags.Delete(ctx, a.ID))
}
