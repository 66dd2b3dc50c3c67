package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
	}{
		{name: "config", code: ErrCodeConfigInvalid, category: CategoryConfig},
		{name: "storage", code: ErrCodeDatabaseOpen, category: CategoryStorage},
		{name: "validation", code: ErrCodeInvalidInput, category: CategoryValidation},
		{name: "internal", code: ErrCodeInternal, category: CategoryInternal},
		{name: "domain not found", code: ErrCodeNotFound, category: CategoryDomain},
		{name: "domain conflict", code: ErrCodeConflict, category: CategoryDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("component", 42)

	assert.True(t, stderrors.Is(err, New(ErrCodeNotFound, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeConflict, "", nil)))
}

func TestError_UnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := TransactionAborted("element create", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeTransactionAborted, err.Code)
	assert.Equal(t, "element create", err.Details["operation"])
}

func TestError_WrappedThroughFmt(t *testing.T) {
	inner := Conflict("component name already exists")
	outer := fmt.Errorf("create component: %w", inner)

	assert.True(t, IsConflict(outer))
	assert.Equal(t, ErrCodeConflict, GetCode(outer))
}

func TestIsInvalidInput_CoversValidationCategory(t *testing.T) {
	assert.True(t, IsInvalidInput(InvalidInput("bad value")))
	assert.True(t, IsInvalidInput(New(ErrCodeUnknownScheme, "bogus scheme", nil)))
	assert.False(t, IsInvalidInput(NotFound("element", 1)))
	assert.False(t, IsInvalidInput(stderrors.New("plain")))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestFormatForCLI_IncludesCodeAndDetails(t *testing.T) {
	err := NotFound("element", 7)
	out := FormatForCLI(err)

	assert.Contains(t, out, "element 7 not found")
	assert.Contains(t, out, ErrCodeNotFound)
}
