package semver

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	validPattern  = regexp.MustCompile(`^v?\d+(\.\d+)*(-[\w.-]+)?(\+[\w.-]+)?$`)
	pseudoPattern = regexp.MustCompile(`^v[0-9]+\.(0\.0-|\d+\.\d+-([^+]*\.)?0\.)\d{14}-[A-Za-z0-9]+(\+[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?$`)
)

// Version is a version string split into the parts that take part in ordering.
//
// Core holds at most three numeric components. Components that failed to
// parse as integers are dropped, so "1.x.3" yields [1 3]. Missing trailing
// components compare as 0. Build is retained for display only.
type Version struct {
	Core       []uint64
	Prerelease string
	Build      string
}

// Major returns the first numeric component, or 0.
func (v Version) Major() uint64 { return v.component(0) }

// Minor returns the second numeric component, or 0.
func (v Version) Minor() uint64 { return v.component(1) }

// Patch returns the third numeric component, or 0.
func (v Version) Patch() uint64 { return v.component(2) }

func (v Version) component(i int) uint64 {
	if i < len(v.Core) {
		return v.Core[i]
	}
	return 0
}

// Parse splits s into its numeric core, pre-release and build metadata.
// It never fails; malformed parts degrade to zero values.
func Parse(s string) Version {
	s = Trim(strings.TrimSpace(s))

	var v Version
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s, v.Build = s[:i], s[i+1:]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s, v.Prerelease = s[:i], s[i+1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			continue
		}
		v.Core = append(v.Core, n)
	}
	return v
}

// Compare returns -1, 0 or +1 as a is older than, equal to, or newer than b.
//
// Build metadata is ignored. A release is newer than any pre-release with
// the same numeric core. Pre-releases are compared identifier by identifier:
// numeric identifiers compare numerically and sort before alphanumeric ones,
// and a shorter pre-release whose identifiers all match sorts first.
// Pseudo-versions get no special treatment.
func Compare(a, b string) int {
	return compareParsed(Parse(a), Parse(b))
}

func compareParsed(a, b Version) int {
	for i := 0; i < 3; i++ {
		if c := cmpUint(a.component(i), b.component(i)); c != 0 {
			return c
		}
	}

	switch {
	case a.Prerelease == "" && b.Prerelease == "":
		return 0
	case a.Prerelease == "":
		return 1
	case b.Prerelease == "":
		return -1
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func comparePrerelease(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		switch {
		case i >= len(as):
			return -1
		case i >= len(bs):
			return 1
		}
		if c := compareIdent(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareIdent(a, b string) int {
	an, bn := isNumeric(a), isNumeric(b)
	switch {
	case an && bn:
		return compareDigits(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits orders two all-digit strings numerically without a width
// limit, so 14-digit timestamps and longer hashes never overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsNewer reports whether a orders after b.
func IsNewer(a, b string) bool { return Compare(a, b) > 0 }

// IsOlder reports whether a orders before b.
func IsOlder(a, b string) bool { return Compare(a, b) < 0 }

// Equal reports whether a and b order the same. Versions that differ only
// in build metadata are equal.
func Equal(a, b string) bool { return Compare(a, b) == 0 }

// SortDesc sorts versions newest first. The sort is stable so equal
// versions keep their input order.
func SortDesc(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}

// SortAsc sorts versions oldest first.
func SortAsc(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// Max returns the newest version in versions, or "" if it is empty.
// The first of several equal maxima wins.
func Max(versions []string) string {
	var best string
	for i, v := range versions {
		if i == 0 || Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

// Min returns the oldest version in versions, or "" if it is empty.
func Min(versions []string) string {
	var best string
	for i, v := range versions {
		if i == 0 || Compare(v, best) < 0 {
			best = v
		}
	}
	return best
}

// IsValid reports whether s is syntactically a version: an optional "v",
// dot-separated digits, then optional "-pre" and "+build" suffixes.
func IsValid(s string) bool {
	return validPattern.MatchString(s)
}

// IsPrerelease reports whether s carries a pre-release suffix.
func IsPrerelease(s string) bool {
	return Parse(s).Prerelease != ""
}

// IsPseudo reports whether s has the shape of a Go pseudo-version
// (vX.Y.Z-yyyymmddhhmmss-abcdefabcdef and its pre-release variants).
// It is informational; ordering treats pseudo-versions as plain pre-releases.
func IsPseudo(s string) bool {
	return pseudoPattern.MatchString(s)
}

// Canonical returns s with a leading "v", adding one if missing.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "v") {
		return s
	}
	return "v" + s
}

// Trim returns s without its leading "v".
func Trim(s string) string {
	return strings.TrimPrefix(s, "v")
}
