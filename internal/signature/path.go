package signature

import (
	"fmt"
	"strconv"
	"strings"

	apperr "github.com/regestra/regestra/internal/errors"
)

// Path is an ordered chain of signature element ids. [12, 47] means
// "classified first under element 12, then under element 47".
type Path []int64

// EncodePath serializes a path to its canonical text form: integers,
// comma-separated, surrounded by brackets, no whitespace. The empty path
// encodes to "[]".
//
// The canonical form is a durability contract: stored documents keep paths
// in exactly this shape, and the search handlers rely on the absence of
// whitespace for substring matching.
func EncodePath(path Path) string {
	if len(path) == 0 {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range path {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

// EncodePathList serializes a list of paths, canonically, for storage in a
// document column. An empty list encodes to "[]".
func EncodePathList(paths []Path) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range paths {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(EncodePath(p))
	}
	sb.WriteByte(']')
	return sb.String()
}

// DecodePath parses canonical path text. Rejects anything that is not
// strictly canonical (whitespace, trailing commas, non-integers), so that a
// decoded path always re-encodes to its input.
func DecodePath(s string) (Path, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, apperr.New(apperr.ErrCodeInvalidPath,
			fmt.Sprintf("malformed signature path %q", s), nil)
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return Path{}, nil
	}

	parts := strings.Split(inner, ",")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidPath,
				fmt.Sprintf("malformed signature path %q", s), err)
		}
		path = append(path, id)
	}
	return path, nil
}

// DecodePathList parses a canonical list of paths, e.g. "[[1,2],[7]]".
func DecodePathList(s string) ([]Path, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, apperr.New(apperr.ErrCodeInvalidPath,
			fmt.Sprintf("malformed signature path list %q", s), nil)
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return []Path{}, nil
	}

	var paths []Path
	for len(inner) > 0 {
		if inner[0] != '[' {
			return nil, apperr.New(apperr.ErrCodeInvalidPath,
				fmt.Sprintf("malformed signature path list %q", s), nil)
		}
		end := strings.IndexByte(inner, ']')
		if end < 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidPath,
				fmt.Sprintf("malformed signature path list %q", s), nil)
		}

		p, err := DecodePath(inner[:end+1])
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)

		inner = inner[end+1:]
		if strings.HasPrefix(inner, ",") {
			inner = inner[1:]
		} else if len(inner) > 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidPath,
				fmt.Sprintf("malformed signature path list %q", s), nil)
		}
	}
	return paths, nil
}

// ExactPatterns returns substring patterns matching a stored path equal to
// the query path. Empty query paths yield no patterns (guaranteed non-match).
func ExactPatterns(path Path) []string {
	if len(path) == 0 {
		return nil
	}
	return []string{EncodePath(path)}
}

// PrefixPatterns returns substring patterns for prefix matching: the stored
// path either equals the query path or starts with it followed by a comma.
// The comma keeps the boundary on an id edge, so [1,2] never matches [1,20].
// Exact equality counting as a prefix match is deliberate; callers depend
// on it.
func PrefixPatterns(path Path) []string {
	if len(path) == 0 {
		return nil
	}
	enc := EncodePath(path)
	return []string{
		enc,                             // whole path
		enc[:len(enc)-1] + ",",          // prefix followed by another id
	}
}

// SequencePatterns returns substring patterns for contiguous sub-sequence
// matching, covering all four positions the sequence can occupy in a stored
// path: the whole path, its start, its middle and its end.
func SequencePatterns(path Path) []string {
	if len(path) == 0 {
		return nil
	}
	enc := EncodePath(path)
	inner := enc[1 : len(enc)-1]
	return []string{
		enc,              // [2,3]   whole path
		"[" + inner + ",", // [2,3,   at the start
		"," + inner + ",", // ,2,3,   in the middle
		"," + inner + "]", // ,2,3]   at the end
	}
}
