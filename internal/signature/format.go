// Package signature implements hierarchical signature classification:
// named components with numbering schemes, elements forming a parent DAG,
// deterministic re-indexing and the canonical path codec used for search.
package signature

import (
	"fmt"
	"strconv"
	"strings"

	apperr "github.com/regestra/regestra/internal/errors"
)

// IndexType is the numbering scheme of a component.
type IndexType string

const (
	// IndexTypeDecimal renders positions as plain base-10 numbers.
	IndexTypeDecimal IndexType = "dec"
	// IndexTypeRoman renders positions as classic Roman numerals.
	IndexTypeRoman IndexType = "roman"
	// IndexTypeLowerAlpha renders positions in bijective base-26: a..z, aa..
	IndexTypeLowerAlpha IndexType = "small_char"
	// IndexTypeUpperAlpha is the uppercase variant of IndexTypeLowerAlpha.
	IndexTypeUpperAlpha IndexType = "capital_char"
)

// ParseIndexType validates a scheme string from config or API input.
func ParseIndexType(s string) (IndexType, error) {
	switch IndexType(s) {
	case IndexTypeDecimal, IndexTypeRoman, IndexTypeLowerAlpha, IndexTypeUpperAlpha:
		return IndexType(s), nil
	}
	return "", apperr.New(apperr.ErrCodeUnknownScheme,
		fmt.Sprintf("unknown index type %q", s), nil)
}

// FormatIndex renders a 1-based position in the given numbering scheme.
// Pure and deterministic. Positions below 1 and unknown schemes are
// configuration errors, never silently defaulted.
func FormatIndex(position int, scheme IndexType) (string, error) {
	if position < 1 {
		return "", apperr.InvalidInput(
			fmt.Sprintf("index position must be >= 1, got %d", position))
	}

	switch scheme {
	case IndexTypeDecimal:
		return strconv.Itoa(position), nil
	case IndexTypeRoman:
		return formatRoman(position), nil
	case IndexTypeLowerAlpha:
		return formatAlpha(position), nil
	case IndexTypeUpperAlpha:
		return strings.ToUpper(formatAlpha(position)), nil
	}

	return "", apperr.New(apperr.ErrCodeUnknownScheme,
		fmt.Sprintf("unknown index type %q", scheme), nil)
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// formatRoman produces a classic additive/subtractive Roman numeral.
func formatRoman(n int) string {
	var sb strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			sb.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return sb.String()
}

// formatAlpha produces bijective base-26: 1->a, 26->z, 27->aa, 703->aaa.
// There is no zero digit, hence the -1 before each division.
func formatAlpha(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('a' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
