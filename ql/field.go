package ql

import "strings"

// FieldRef is a reference to a column, optionally descending into a nested
// path within it. A plain identifier has an empty Path. Path segments keep
// their surrounding quote characters from the source text; encoders strip
// them when building identifier or key expressions.
type FieldRef struct {
	Base string
	Path []string
}

// IsNested reports whether the reference descends into a nested path.
func (f FieldRef) IsNested() bool { return len(f.Path) > 0 }

// String returns the dotted form of the reference.
func (f FieldRef) String() string {
	if len(f.Path) == 0 {
		return f.Base
	}
	return f.Base + "." + strings.Join(f.Path, ".")
}

// ParseFieldRef resolves raw field token text into a FieldRef. Dots split
// the text into segments except while inside a quoted segment; segments are
// trimmed of surrounding whitespace and empty segments are dropped. Text
// that yields a single segment stays a plain identifier.
func ParseFieldRef(text string) FieldRef {
	if !strings.Contains(text, ".") {
		return FieldRef{Base: text}
	}

	var segments []string
	var current strings.Builder
	var quote rune

	push := func() {
		seg := strings.TrimSpace(current.String())
		if seg != "" {
			segments = append(segments, seg)
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case r == '.':
			push()
		default:
			current.WriteRune(r)
		}
	}
	push()

	switch len(segments) {
	case 0:
		return FieldRef{Base: text}
	case 1:
		return FieldRef{Base: segments[0]}
	default:
		return FieldRef{Base: segments[0], Path: segments[1:]}
	}
}

// unquoteSegment strips one pair of surrounding quote characters from a
// path segment, if present.
func unquoteSegment(seg string) string {
	if len(seg) >= 2 {
		first, last := seg[0], seg[len(seg)-1]
		if first == last && (first == '"' || first == '\'') {
			return seg[1 : len(seg)-1]
		}
	}
	return seg
}
