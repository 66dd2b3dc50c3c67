// Package archive manages archive documents, the signature-bearing records
// of the system. Documents carry topographic and descriptive signature
// paths (stored as canonical JSON), belong to parent units, and are
// soft-disabled rather than deleted.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/store"
)

// DocumentType discriminates navigable units from leaf documents.
type DocumentType string

const (
	TypeUnit     DocumentType = "unit"
	TypeDocument DocumentType = "document"
)

// ParseDocumentType validates a document type string.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case TypeUnit, TypeDocument:
		return DocumentType(s), nil
	}
	return "", apperr.InvalidInput(fmt.Sprintf("unknown document type %q", s))
}

// Document is one archive record. Signature fields hold raw element-id
// paths; the Resolved* fields are filled on read from the element store.
type Document struct {
	ID           int64        `json:"id"`
	RefCode      string       `json:"refCode"`
	Type         DocumentType `json:"type"`
	ParentUnitID *int64       `json:"parentUnitArchiveDocumentId"`

	Title        string `json:"title"`
	Creator      string `json:"creator"`
	CreationDate string `json:"creationDate"`

	NumberOfPages              *int64  `json:"numberOfPages,omitempty"`
	PhysicalType               *string `json:"documentType,omitempty"`
	Dimensions                 *string `json:"dimensions,omitempty"`
	Binding                    *string `json:"binding,omitempty"`
	Condition                  *string `json:"condition,omitempty"`
	DocumentLanguage           *string `json:"documentLanguage,omitempty"`
	ContentDescription         *string `json:"contentDescription,omitempty"`
	Remarks                    *string `json:"remarks,omitempty"`
	AccessLevel                *string `json:"accessLevel,omitempty"`
	AccessConditions           *string `json:"accessConditions,omitempty"`
	AdditionalInformation      *string `json:"additionalInformation,omitempty"`
	RelatedDocumentsReferences *string `json:"relatedDocumentsReferences,omitempty"`

	IsDigitized          bool    `json:"isDigitized"`
	DigitizedVersionLink *string `json:"digitizedVersionLink,omitempty"`

	Active bool `json:"active"`

	TopographicSignatures []signature.Path `json:"topographicSignatures"`
	DescriptiveSignatures []signature.Path `json:"descriptiveSignatures"`

	ResolvedTopographicSignatures []string `json:"resolvedTopographicSignatures,omitempty"`
	ResolvedDescriptiveSignatures []string `json:"resolvedDescriptiveSignatures,omitempty"`

	TagIDs []int64 `json:"tagIds"`

	ParentUnit *Document `json:"parentUnit,omitempty"`

	CreatedOn  time.Time `json:"createdOn"`
	ModifiedOn time.Time `json:"modifiedOn"`
}

// CreateDocumentInput carries a new document. RefCode is generated.
type CreateDocumentInput struct {
	Type         DocumentType
	ParentUnitID *int64
	Title        string
	Creator      string
	CreationDate string

	NumberOfPages              *int64
	PhysicalType               *string
	Dimensions                 *string
	Binding                    *string
	Condition                  *string
	DocumentLanguage           *string
	ContentDescription         *string
	Remarks                    *string
	AccessLevel                *string
	AccessConditions           *string
	AdditionalInformation      *string
	RelatedDocumentsReferences *string

	IsDigitized          bool
	DigitizedVersionLink *string

	TopographicSignatures []signature.Path
	DescriptiveSignatures []signature.Path

	TagIDs []int64
}

// DocumentPatch updates a document in place. Nil fields are untouched;
// slice fields, when present, replace the stored set wholesale.
type DocumentPatch struct {
	Type         *DocumentType
	ParentUnitID **int64
	Title        *string
	Creator      *string
	CreationDate *string

	NumberOfPages              **int64
	PhysicalType               **string
	ContentDescription         **string
	Remarks                    **string
	AccessLevel                **string
	DigitizedVersionLink       **string
	IsDigitized                *bool

	TopographicSignatures *[]signature.Path
	DescriptiveSignatures *[]signature.Path

	TagIDs *[]int64
}

// DocumentStore persists archive documents.
type DocumentStore struct {
	db       *store.DB
	elements *signature.ElementStore
}

// NewDocumentStore wires the document store to its database and to the
// element store used for signature label resolution.
func NewDocumentStore(db *store.DB, elements *signature.ElementStore) *DocumentStore {
	return &DocumentStore{db: db, elements: elements}
}

// documentColumns is the scan order shared by every document SELECT.
const documentColumns = `ad.id, ad.ref_code, ad.doc_type,
	ad.parent_unit_archive_document_id, ad.title, ad.creator,
	ad.creation_date, ad.number_of_pages, ad.document_type, ad.dimensions,
	ad.binding, ad.condition, ad.document_language, ad.content_description,
	ad.remarks, ad.access_level, ad.access_conditions,
	ad.additional_information, ad.related_documents_references,
	ad.is_digitized, ad.digitized_version_link, ad.active,
	ad.topographic_signatures, ad.descriptive_signatures,
	ad.created_on, ad.modified_on`

// Create inserts a document with a fresh reference code, its tag links
// included, in one transaction.
func (s *DocumentStore) Create(ctx context.Context, input CreateDocumentInput) (*Document, error) {
	if input.Title == "" {
		return nil, apperr.InvalidInput("document title must not be empty")
	}
	docType := input.Type
	if docType == "" {
		docType = TypeDocument
	}
	if _, err := ParseDocumentType(string(docType)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refCode := uuid.NewString()

	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if input.ParentUnitID != nil {
			if err := checkParentUnit(ctx, tx, *input.ParentUnitID); err != nil {
				return err
			}
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO archive_documents
			   (ref_code, doc_type, parent_unit_archive_document_id, title,
			    creator, creation_date, number_of_pages, document_type,
			    dimensions, binding, condition, document_language,
			    content_description, remarks, access_level, access_conditions,
			    additional_information, related_documents_references,
			    is_digitized, digitized_version_link,
			    topographic_signatures, descriptive_signatures,
			    created_on, modified_on)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 RETURNING id`,
			refCode, string(docType), input.ParentUnitID, input.Title,
			input.Creator, input.CreationDate, input.NumberOfPages,
			input.PhysicalType, input.Dimensions, input.Binding,
			input.Condition, input.DocumentLanguage, input.ContentDescription,
			input.Remarks, input.AccessLevel, input.AccessConditions,
			input.AdditionalInformation, input.RelatedDocumentsReferences,
			input.IsDigitized, input.DigitizedVersionLink,
			signature.EncodePathList(input.TopographicSignatures),
			signature.EncodePathList(input.DescriptiveSignatures),
			formatTime(now), formatTime(now),
		).Scan(&id)
		if err != nil {
			return apperr.New(apperr.ErrCodeInternal, "failed to insert document", err)
		}

		return replaceTagLinks(ctx, tx, id, input.TagIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Update applies a patch. Signature lists and tag sets replace wholesale.
func (s *DocumentStore) Update(ctx context.Context, id int64, patch DocumentPatch) (*Document, error) {
	set := []string{"modified_on = ?"}
	args := []any{formatTime(time.Now().UTC())}

	addSet := func(column string, value any) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if patch.Type != nil {
		if _, err := ParseDocumentType(string(*patch.Type)); err != nil {
			return nil, err
		}
		addSet("doc_type", string(*patch.Type))
	}
	if patch.ParentUnitID != nil {
		addSet("parent_unit_archive_document_id", *patch.ParentUnitID)
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, apperr.InvalidInput("document title must not be empty")
		}
		addSet("title", *patch.Title)
	}
	if patch.Creator != nil {
		addSet("creator", *patch.Creator)
	}
	if patch.CreationDate != nil {
		addSet("creation_date", *patch.CreationDate)
	}
	if patch.NumberOfPages != nil {
		addSet("number_of_pages", *patch.NumberOfPages)
	}
	if patch.PhysicalType != nil {
		addSet("document_type", *patch.PhysicalType)
	}
	if patch.ContentDescription != nil {
		addSet("content_description", *patch.ContentDescription)
	}
	if patch.Remarks != nil {
		addSet("remarks", *patch.Remarks)
	}
	if patch.AccessLevel != nil {
		addSet("access_level", *patch.AccessLevel)
	}
	if patch.DigitizedVersionLink != nil {
		addSet("digitized_version_link", *patch.DigitizedVersionLink)
	}
	if patch.IsDigitized != nil {
		addSet("is_digitized", *patch.IsDigitized)
	}
	if patch.TopographicSignatures != nil {
		addSet("topographic_signatures", signature.EncodePathList(*patch.TopographicSignatures))
	}
	if patch.DescriptiveSignatures != nil {
		addSet("descriptive_signatures", signature.EncodePathList(*patch.DescriptiveSignatures))
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if patch.ParentUnitID != nil && *patch.ParentUnitID != nil {
			if **patch.ParentUnitID == id {
				return apperr.InvalidInput("a document cannot be its own parent unit")
			}
			if err := checkParentUnit(ctx, tx, **patch.ParentUnitID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE archive_documents SET %s WHERE id = ?", strings.Join(set, ", ")),
			append(args, id)...)
		if err != nil {
			return apperr.New(apperr.ErrCodeInternal, "failed to update document", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("archive document", id)
		}

		if patch.TagIDs != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM archive_document_tags WHERE archive_document_id = ?`, id); err != nil {
				return apperr.New(apperr.ErrCodeInternal, "failed to clear tag links", err)
			}
			return replaceTagLinks(ctx, tx, id, *patch.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetByID loads one document with tags and resolved signature labels.
// Populate options: "parentUnit" loads the parent unit record.
func (s *DocumentStore) GetByID(ctx context.Context, id int64, populate ...string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM archive_documents ad WHERE ad.id = ?`, id)

	doc, err := scanDocumentRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("archive document", id)
	}
	if err != nil {
		return nil, apperr.New(apperr.ErrCodeInternal, "failed to load document", err)
	}

	if err := s.loadTags(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.resolveSignatures(ctx, doc); err != nil {
		return nil, err
	}

	for _, p := range populate {
		if p != "parentUnit" || doc.ParentUnitID == nil {
			continue
		}
		parent, err := s.GetByID(ctx, *doc.ParentUnitID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		doc.ParentUnit = parent
	}
	return doc, nil
}

// Disable soft-deletes a document. The row and its signature history stay.
func (s *DocumentStore) Disable(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE archive_documents SET active = 0, modified_on = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return apperr.New(apperr.ErrCodeInternal, "failed to disable document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("archive document", id)
	}
	return nil
}

// checkParentUnit verifies the parent exists and is a unit.
func checkParentUnit(ctx context.Context, tx *sql.Tx, parentID int64) error {
	var docType string
	err := tx.QueryRowContext(ctx,
		`SELECT doc_type FROM archive_documents WHERE id = ?`, parentID).Scan(&docType)
	if err == sql.ErrNoRows {
		return apperr.NotFound("parent unit", parentID)
	}
	if err != nil {
		return err
	}
	if DocumentType(docType) != TypeUnit {
		return apperr.InvalidInput(
			fmt.Sprintf("document %d is not a unit and cannot hold children", parentID))
	}
	return nil
}

func replaceTagLinks(ctx context.Context, tx *sql.Tx, docID int64, tagIDs []int64) error {
	seen := make(map[int64]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tags WHERE id = ?`, tagID).Scan(&exists)
		if err == sql.ErrNoRows {
			return apperr.NotFound("tag", tagID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO archive_document_tags (archive_document_id, tag_id) VALUES (?, ?)`,
			docID, tagID); err != nil {
			return apperr.New(apperr.ErrCodeInternal, "failed to link tag", err)
		}
	}
	return nil
}

func (s *DocumentStore) loadTags(ctx context.Context, doc *Document) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM archive_document_tags WHERE archive_document_id = ? ORDER BY tag_id`,
		doc.ID)
	if err != nil {
		return apperr.New(apperr.ErrCodeInternal, "failed to load tags", err)
	}
	defer rows.Close()

	doc.TagIDs = []int64{}
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return err
		}
		doc.TagIDs = append(doc.TagIDs, tagID)
	}
	return rows.Err()
}

func (s *DocumentStore) resolveSignatures(ctx context.Context, doc *Document) error {
	topo, err := s.elements.ResolvePaths(ctx, doc.TopographicSignatures)
	if err != nil {
		return err
	}
	desc, err := s.elements.ResolvePaths(ctx, doc.DescriptiveSignatures)
	if err != nil {
		return err
	}
	doc.ResolvedTopographicSignatures = topo
	doc.ResolvedDescriptiveSignatures = desc
	return nil
}

// scanDocumentRow scans the documentColumns order from any scan function,
// so single-row and multi-row reads share one decoder.
func scanDocumentRow(scan func(...any) error) (*Document, error) {
	var (
		doc          Document
		docType      string
		parentUnitID sql.NullInt64
		pages        sql.NullInt64
		nullable     [11]sql.NullString
		digitLink    sql.NullString
		topoText     string
		descText     string
		createdOn    string
		modifiedOn   string
	)

	err := scan(
		&doc.ID, &doc.RefCode, &docType, &parentUnitID, &doc.Title,
		&doc.Creator, &doc.CreationDate, &pages,
		&nullable[0], &nullable[1], &nullable[2], &nullable[3], &nullable[4],
		&nullable[5], &nullable[6], &nullable[7], &nullable[8], &nullable[9],
		&nullable[10],
		&doc.IsDigitized, &digitLink, &doc.Active,
		&topoText, &descText, &createdOn, &modifiedOn,
	)
	if err != nil {
		return nil, err
	}

	doc.Type = DocumentType(docType)
	if parentUnitID.Valid {
		doc.ParentUnitID = &parentUnitID.Int64
	}
	if pages.Valid {
		doc.NumberOfPages = &pages.Int64
	}
	strField := func(n sql.NullString) *string {
		if !n.Valid {
			return nil
		}
		return &n.String
	}
	doc.PhysicalType = strField(nullable[0])
	doc.Dimensions = strField(nullable[1])
	doc.Binding = strField(nullable[2])
	doc.Condition = strField(nullable[3])
	doc.DocumentLanguage = strField(nullable[4])
	doc.ContentDescription = strField(nullable[5])
	doc.Remarks = strField(nullable[6])
	doc.AccessLevel = strField(nullable[7])
	doc.AccessConditions = strField(nullable[8])
	doc.AdditionalInformation = strField(nullable[9])
	doc.RelatedDocumentsReferences = strField(nullable[10])
	doc.DigitizedVersionLink = strField(digitLink)

	doc.TopographicSignatures, err = signature.DecodePathList(topoText)
	if err != nil {
		return nil, fmt.Errorf("corrupt topographic signatures on document %d: %w", doc.ID, err)
	}
	doc.DescriptiveSignatures, err = signature.DecodePathList(descText)
	if err != nil {
		return nil, fmt.Errorf("corrupt descriptive signatures on document %d: %w", doc.ID, err)
	}

	doc.CreatedOn = parseTime(createdOn)
	doc.ModifiedOn = parseTime(modifiedOn)
	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
