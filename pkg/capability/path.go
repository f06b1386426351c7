// Package capability implements the resource/ability/caveat model: the
// ucan: proof-reference scheme, ability path matching with wildcards,
// caveat sets, and the JTD-constrained root CapabilitiesDefinition.
package capability

import "strings"

const (
	pathSeparator = "/"
	wildcard      = "*"
)

// Segment is one part of an Ability path. Segments are compared
// case-insensitively, following the path-segment validation rules this
// capability model inherits from the toolkit's path utilities.
type Segment struct {
	name     string
	wildcard bool
}

// NewSegment validates and builds a single path segment.
func NewSegment(s string) (Segment, error) {
	if s == "" {
		return Segment{}, &Error{Kind: ErrInvalidAbility, Message: "empty path segment"}
	}
	if s == wildcard {
		return Segment{wildcard: true}, nil
	}
	return Segment{name: s}, nil
}

// Equal compares two segments case-insensitively; a wildcard segment
// equals only another wildcard segment.
func (s Segment) Equal(other Segment) bool {
	if s.wildcard || other.wildcard {
		return s.wildcard == other.wildcard
	}
	return strings.EqualFold(s.name, other.name)
}

// String renders the segment back to its path form.
func (s Segment) String() string {
	if s.wildcard {
		return wildcard
	}
	return s.name
}

// splitPath splits a path ability string into validated segments.
func splitPath(path string) ([]Segment, error) {
	parts := strings.Split(path, pathSeparator)
	segments := make([]Segment, len(parts))
	for i, p := range parts {
		seg, err := NewSegment(p)
		if err != nil {
			return nil, err
		}
		segments[i] = seg
	}
	return segments, nil
}

// joinPath renders segments back to their path form.
func joinPath(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, pathSeparator)
}
