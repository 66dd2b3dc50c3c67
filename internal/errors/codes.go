// Package errors provides structured error handling for Regestra.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (database, file)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Domain errors (missing or conflicting entities)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates database and file I/O errors.
	CategoryStorage Category = "STORAGE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
	// CategoryDomain indicates entity-level errors (not found, conflict).
	CategoryDomain Category = "DOMAIN"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeDatabaseOpen    = "ERR_201_DATABASE_OPEN"
	ErrCodeDatabaseCorrupt = "ERR_202_DATABASE_CORRUPT"
	ErrCodeMigration       = "ERR_203_MIGRATION_FAILED"
	ErrCodeMaintenanceLock = "ERR_204_MAINTENANCE_LOCK"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPath    = "ERR_402_INVALID_SIGNATURE_PATH"
	ErrCodeUnknownScheme  = "ERR_403_UNKNOWN_INDEX_SCHEME"
	ErrCodeSelfParent     = "ERR_404_SELF_PARENT"
	ErrCodeInvalidQuery   = "ERR_405_INVALID_QUERY"

	// Internal errors (500-599)
	ErrCodeInternal           = "ERR_501_INTERNAL"
	ErrCodeTransactionAborted = "ERR_502_TRANSACTION_ABORTED"
	ErrCodeSearchFailed       = "ERR_503_SEARCH_FAILED"

	// Domain errors (600-699)
	ErrCodeNotFound = "ERR_601_NOT_FOUND"
	ErrCodeConflict = "ERR_602_CONFLICT"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the numeric range digit (e.g., "1" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '4':
		return CategoryValidation
	case '6':
		return CategoryDomain
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDatabaseCorrupt, ErrCodeMigration:
		return SeverityFatal
	}
	return SeverityError
}
