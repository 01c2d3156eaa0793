// Package dataset defines the version records that make up a dataset's history
// and the identifiers used to address them.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Path is a hierarchical dataset location such as space.folder.name.
type Path []string

// UntitledPath is the reserved location for drafts that were never named.
var UntitledPath = Path{"tmp", "UNTITLED"}

// ErrInvalidPath is returned by ParsePath for malformed input.
var ErrInvalidPath = errors.New("dataset: invalid path")

// NewPath builds a path from its components.
func NewPath(components ...string) Path {
	if len(components) == 0 {
		return nil
	}
	out := make(Path, len(components))
	copy(out, components)
	return out
}

// ParsePath parses the dotted string form produced by Path.String.
// Components may be double quoted to contain dots; a doubled quote inside a
// quoted component stands for a literal quote.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	var (
		parts   Path
		current strings.Builder
		quoted  bool
		wasQuot bool
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quoted && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			quoted = false
		case quoted:
			current.WriteRune(r)
		case r == '"':
			if current.Len() > 0 {
				return nil, fmt.Errorf("%w: unexpected quote in %q", ErrInvalidPath, s)
			}
			quoted = true
			wasQuot = true
		case r == '.':
			if current.Len() == 0 && !wasQuot {
				return nil, fmt.Errorf("%w: empty component in %q", ErrInvalidPath, s)
			}
			parts = append(parts, current.String())
			current.Reset()
			wasQuot = false
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidPath, s)
	}
	if current.Len() == 0 && !wasQuot {
		return nil, fmt.Errorf("%w: empty component in %q", ErrInvalidPath, s)
	}
	parts = append(parts, current.String())
	return parts, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	quotedParts := make([]string, len(p))
	for i, c := range p {
		if c == "" || strings.ContainsAny(c, `."`) {
			quotedParts[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
			continue
		}
		quotedParts[i] = c
	}
	return strings.Join(quotedParts, ".")
}

// Leaf returns the last component, which doubles as the dataset's name.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its leaf.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return NewPath(p[:len(p)-1]...)
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsUntitled reports whether p is the draft location.
func (p Path) IsUntitled() bool {
	return p.Equal(UntitledPath)
}
