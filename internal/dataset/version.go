package dataset

import (
	"github.com/oklog/ulid/v2"
)

// Version identifies one version of a dataset definition. Values are opaque;
// only equality is meaningful.
type Version string

// NewVersion returns a fresh identifier. ULIDs sort by creation time, which
// keeps stored rows in a readable order, but chain order always comes from
// the Previous links.
func NewVersion() Version {
	return Version(ulid.Make().String())
}

func (v Version) String() string { return string(v) }

// IsZero reports whether no version was given.
func (v Version) IsZero() bool { return v == "" }

// VersionRef addresses a stored record by (path, version).
type VersionRef struct {
	Path    Path
	Version Version
}

// NewRef is a shorthand constructor.
func NewRef(path Path, version Version) VersionRef {
	return VersionRef{Path: path, Version: version}
}

// Key returns a string usable as a map key for this reference.
func (r VersionRef) Key() string {
	return r.Path.String() + "@" + string(r.Version)
}

func (r VersionRef) String() string {
	return r.Key()
}

func (r VersionRef) Equal(other VersionRef) bool {
	return r.Version == other.Version && r.Path.Equal(other.Path)
}
