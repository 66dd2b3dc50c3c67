package archive

import (
	"context"
	"database/sql"

	"github.com/regestra/regestra/internal/search"
	"github.com/regestra/regestra/internal/signature"
)

// documentCompiler builds the document search compiler. The signature
// fields run through the canonical-text path handler; tagIds joins the
// tag link table.
func documentCompiler() *search.Compiler {
	return &search.Compiler{
		Table:      "archive_documents",
		Alias:      "ad",
		PrimaryKey: "ad.id",
		Columns: map[string]string{
			"refCode":                     "ad.ref_code",
			"type":                        "ad.doc_type",
			"parentUnitArchiveDocumentId": "ad.parent_unit_archive_document_id",
			"title":                       "ad.title",
			"creator":                     "ad.creator",
			"creationDate":                "ad.creation_date",
			"documentLanguage":            "ad.document_language",
			"accessLevel":                 "ad.access_level",
			"isDigitized":                 "ad.is_digitized",
			"active":                      "ad.active",
			"createdOn":                   "ad.created_on",
			"modifiedOn":                  "ad.modified_on",
		},
		Handlers: map[string]search.FieldHandler{
			"topographicSignature": signature.PathHandler{Column: "ad.topographic_signatures"},
			"descriptiveSignature": signature.PathHandler{Column: "ad.descriptive_signatures"},
			"tagIds": search.JoinHandler{
				Join:   "JOIN archive_document_tags adt ON adt.archive_document_id = ad.id",
				Column: "adt.tag_id",
			},
		},
	}
}

// Search runs an abstract query over documents. Results carry tag ids and
// resolved signature labels; the parent unit stays an id (populate via
// GetByID when a full record is needed).
func (s *DocumentStore) Search(ctx context.Context, req search.Request) (*search.Response[*Document], error) {
	req.Normalize(search.DefaultPageSize, search.MaxPageSize)

	compiled := documentCompiler().Compile(req, "DISTINCT "+documentColumns)

	resp, err := search.Execute(ctx, s.db, compiled, func(rows *sql.Rows) (*Document, error) {
		return scanDocumentRow(rows.Scan)
	})
	if err != nil {
		return nil, err
	}

	for _, doc := range resp.Data {
		if err := s.loadTags(ctx, doc); err != nil {
			return nil, err
		}
		if err := s.resolveSignatures(ctx, doc); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
