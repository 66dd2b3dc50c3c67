package store

import (
	apperr "github.com/regestra/regestra/internal/errors"
)

// Schema statements, applied in order. All idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS signature_components (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL UNIQUE,
		description  TEXT,
		index_count  INTEGER NOT NULL DEFAULT 0,
		index_type   TEXT NOT NULL DEFAULT 'dec',
		created_on   TEXT NOT NULL,
		modified_on  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS signature_elements (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		signature_component_id  INTEGER NOT NULL
			REFERENCES signature_components(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		description  TEXT,
		element_index TEXT,
		created_on   TEXT NOT NULL,
		modified_on  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_elements_component
		ON signature_elements(signature_component_id)`,

	// DAG edge set: child -> parent, unique per pair. Self-parenting is
	// rejected at the insertion boundary, not here.
	`CREATE TABLE IF NOT EXISTS signature_element_parents (
		element_id  INTEGER NOT NULL
			REFERENCES signature_elements(id) ON DELETE CASCADE,
		parent_id   INTEGER NOT NULL
			REFERENCES signature_elements(id) ON DELETE CASCADE,
		PRIMARY KEY (element_id, parent_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_element_parents_parent
		ON signature_element_parents(parent_id)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS archive_documents (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ref_code   TEXT NOT NULL UNIQUE,
		doc_type   TEXT NOT NULL DEFAULT 'document',
		parent_unit_archive_document_id INTEGER
			REFERENCES archive_documents(id) ON DELETE SET NULL,
		title            TEXT NOT NULL,
		creator          TEXT NOT NULL DEFAULT '',
		creation_date    TEXT NOT NULL DEFAULT '',
		number_of_pages  INTEGER,
		document_type    TEXT,
		dimensions       TEXT,
		binding          TEXT,
		condition        TEXT,
		document_language TEXT,
		content_description TEXT,
		remarks          TEXT,
		access_level     TEXT,
		access_conditions TEXT,
		additional_information TEXT,
		related_documents_references TEXT,
		is_digitized     INTEGER NOT NULL DEFAULT 0,
		digitized_version_link TEXT,
		active           INTEGER NOT NULL DEFAULT 1,
		-- Canonical JSON arrays of signature paths, e.g. [[1,2],[7]].
		-- No internal whitespace: the search handlers match on substrings.
		topographic_signatures TEXT NOT NULL DEFAULT '[]',
		descriptive_signatures TEXT NOT NULL DEFAULT '[]',
		created_on  TEXT NOT NULL,
		modified_on TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_parent
		ON archive_documents(parent_unit_archive_document_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_type
		ON archive_documents(doc_type)`,

	`CREATE TABLE IF NOT EXISTS archive_document_tags (
		archive_document_id INTEGER NOT NULL
			REFERENCES archive_documents(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL
			REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (archive_document_id, tag_id)
	)`,
}

// migrate applies the schema. Statements are idempotent, so this runs on
// every open.
func (d *DB) migrate() error {
	for _, stmt := range schemaStatements {
		if _, err := d.Exec(stmt); err != nil {
			return apperr.New(apperr.ErrCodeMigration, "schema migration failed", err)
		}
	}
	return nil
}
