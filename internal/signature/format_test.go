package signature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/regestra/regestra/internal/errors"
)

func TestFormatIndex_Decimal(t *testing.T) {
	for _, n := range []int{1, 9, 10, 999, 12345} {
		got, err := FormatIndex(n, IndexTypeDecimal)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", n), got)
	}
}

func TestFormatIndex_Roman(t *testing.T) {
	tests := []struct {
		position int
		want     string
	}{
		{1, "I"}, {2, "II"}, {3, "III"}, {4, "IV"}, {5, "V"},
		{9, "IX"}, {14, "XIV"}, {40, "XL"}, {49, "XLIX"},
		{90, "XC"}, {400, "CD"}, {944, "CMXLIV"}, {1987, "MCMLXXXVII"},
		{3999, "MMMCMXCIX"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := FormatIndex(tt.position, IndexTypeRoman)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatIndex_BijectiveAlpha(t *testing.T) {
	tests := []struct {
		position int
		want     string
	}{
		{1, "a"}, {2, "b"}, {25, "y"}, {26, "z"},
		{27, "aa"}, {28, "ab"}, {52, "az"}, {53, "ba"},
		{702, "zz"}, {703, "aaa"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := FormatIndex(tt.position, IndexTypeLowerAlpha)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			upper, err := FormatIndex(tt.position, IndexTypeUpperAlpha)
			require.NoError(t, err)
			assert.NotEqual(t, got, upper)
		})
	}
}

func TestFormatIndex_Injective(t *testing.T) {
	for _, scheme := range []IndexType{
		IndexTypeDecimal, IndexTypeRoman, IndexTypeLowerAlpha, IndexTypeUpperAlpha,
	} {
		t.Run(string(scheme), func(t *testing.T) {
			seen := make(map[string]int, 2000)
			for n := 1; n <= 2000; n++ {
				got, err := FormatIndex(n, scheme)
				require.NoError(t, err)
				prev, dup := seen[got]
				require.False(t, dup, "positions %d and %d both render %q", prev, n, got)
				seen[got] = n
			}
		})
	}
}

func TestFormatIndex_RejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := FormatIndex(n, IndexTypeRoman)
		require.Error(t, err)
		assert.True(t, apperr.IsInvalidInput(err))
	}
}

func TestFormatIndex_RejectsUnknownScheme(t *testing.T) {
	_, err := FormatIndex(1, IndexType("binary"))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeUnknownScheme))
}

func TestParseIndexType(t *testing.T) {
	for _, s := range []string{"dec", "roman", "small_char", "capital_char"} {
		got, err := ParseIndexType(s)
		require.NoError(t, err)
		assert.Equal(t, IndexType(s), got)
	}

	_, err := ParseIndexType("hex")
	assert.Error(t, err)
}
