package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePath_Canonical(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "empty", path: Path{}, want: "[]"},
		{name: "nil", path: nil, want: "[]"},
		{name: "single", path: Path{12}, want: "[12]"},
		{name: "chain", path: Path{12, 47}, want: "[12,47]"},
		{name: "long", path: Path{1, 2, 3, 4, 5}, want: "[1,2,3,4,5]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodePath(tt.path)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, " ", "canonical form has no whitespace")
		})
	}
}

func TestDecodePath_RoundTrip(t *testing.T) {
	for _, path := range []Path{{}, {1}, {12, 47}, {1, 2, 3, 4, 5}} {
		enc := EncodePath(path)
		dec, err := DecodePath(enc)
		require.NoError(t, err)
		assert.Equal(t, path, dec)
	}
}

func TestDecodePath_RejectsNonCanonical(t *testing.T) {
	for _, s := range []string{
		"", "[", "]", "1,2", "[1, 2]", "[1,2,]", "[,1]", "[a,b]", "[1,-2]", "[[1]]",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := DecodePath(s)
			assert.Error(t, err)
		})
	}
}

func TestDecodePathList(t *testing.T) {
	paths, err := DecodePathList("[[1,2],[7]]")
	require.NoError(t, err)
	assert.Equal(t, []Path{{1, 2}, {7}}, paths)

	paths, err = DecodePathList("[]")
	require.NoError(t, err)
	assert.Empty(t, paths)

	for _, s := range []string{"", "[[1,2]", "[[1],[2],]", "[[1] [2]]"} {
		_, err := DecodePathList(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestEncodePathList_RoundTrip(t *testing.T) {
	in := []Path{{12, 47}, {3}}
	enc := EncodePathList(in)
	assert.Equal(t, "[[12,47],[3]]", enc)

	out, err := DecodePathList(enc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

// matchesAny mirrors the substring matching the SQL LIKE predicates perform
// against the stored column text.
func matchesAny(stored string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(stored, p) {
			return true
		}
	}
	return false
}

func TestPrefixPatterns_BoundaryCorrectness(t *testing.T) {
	query := Path{1, 2}
	patterns := PrefixPatterns(query)

	tests := []struct {
		stored Path
		match  bool
	}{
		{stored: Path{1, 2}, match: true},    // exact counts as prefix
		{stored: Path{1, 2, 3}, match: true}, // true prefix
		{stored: Path{1, 20}, match: false},  // id boundary: 2 vs 20
		{stored: Path{10, 2}, match: false},  // id boundary: 1 vs 10
		{stored: Path{2, 1, 2}, match: false}, // not at the start
	}

	for _, tt := range tests {
		t.Run(EncodePath(tt.stored), func(t *testing.T) {
			assert.Equal(t, tt.match, matchesAny(EncodePath(tt.stored), patterns))
		})
	}
}

func TestSequencePatterns_AllPositions(t *testing.T) {
	query := Path{2, 3}
	patterns := SequencePatterns(query)
	require.Len(t, patterns, 4)

	tests := []struct {
		stored Path
		match  bool
	}{
		{stored: Path{2, 3}, match: true},       // whole path
		{stored: Path{2, 3, 9}, match: true},    // at the start
		{stored: Path{1, 2, 3, 4}, match: true}, // in the middle
		{stored: Path{5, 2, 3}, match: true},    // at the end
		{stored: Path{1, 23}, match: false},     // digits must not merge
		{stored: Path{2, 30}, match: false},
		{stored: Path{12, 3}, match: false},
		{stored: Path{3, 2}, match: false}, // order matters
	}

	for _, tt := range tests {
		t.Run(EncodePath(tt.stored), func(t *testing.T) {
			assert.Equal(t, tt.match, matchesAny(EncodePath(tt.stored), patterns))
		})
	}
}

func TestPatterns_EmptyPathMatchesNothing(t *testing.T) {
	assert.Nil(t, ExactPatterns(nil))
	assert.Nil(t, PrefixPatterns(Path{}))
	assert.Nil(t, SequencePatterns(Path{}))
}
