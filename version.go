package libvlc

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinimumVersion is the oldest libVLC release these bindings accept.
var MinimumVersion = MustParseVersion("3.0.0")

// versionPattern matches "major.minor.revision" followed by an optional
// free-form suffix, e.g. "3.0.18 Vetinari" or "3.0.0-git".
var versionPattern = regexp.MustCompile(`^\s*(\d+)\.(\d+)\.(\d+)(.*)$`)

// Version is a parsed libVLC version string.
//
// Ordering only looks at Major, Minor and Revision. Extra carries whatever
// the native library appends (code name, vendor tag) and never affects
// comparisons.
type Version struct {
	Major    int
	Minor    int
	Revision int
	Extra    string
}

// ParseVersion parses a dotted version string as reported by
// libvlc_get_version.
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version string %q", s)
	}

	var v Version
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}
	if v.Revision, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, fmt.Errorf("invalid revision in %q: %w", s, err)
	}
	v.Extra = strings.TrimSpace(strings.TrimLeft(m[4], " -_+~"))
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after other. Extra is ignored.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Revision, other.Revision)
}

// AtLeast reports whether v is the same as or newer than required.
func (v Version) AtLeast(required Version) bool {
	return v.Compare(required) >= 0
}

func (v Version) String() string {
	if v.Extra == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
	}
	return fmt.Sprintf("%d.%d.%d %s", v.Major, v.Minor, v.Revision, v.Extra)
}
