// Package semver orders Go module version strings.
//
// # Overview
//
// The package defines a single three-way comparison, [Compare], and builds
// every other helper on top of it so that sorting, maxima and equality can
// never disagree with each other.
//
// Accepted input is deliberately loose:
//
//   - an optional leading "v" ("1.2.3" and "v1.2.3" are equal)
//   - one to three numeric components (missing ones are 0)
//   - an optional pre-release introduced by "-"
//   - an optional build suffix introduced by "+", ignored for ordering
//
// # Ordering
//
//	v1.0.0-alpha < v1.0.0-alpha.1 < v1.0.0-alpha.beta < v1.0.0-beta < v1.0.0
//	v1.2.3 == v1.2.3+build.5
//
// Pseudo-versions such as v0.0.0-20240101120000-abcdef123456 are compared
// like any other pre-release; the 14-digit timestamp identifier makes them
// sort chronologically.
//
// # Usage
//
//	versions := []string{"v1.2.0", "v1.10.0", "v1.9.3-rc.1"}
//	semver.SortDesc(versions) // [v1.10.0 v1.9.3-rc.1 v1.2.0]
//
//	if semver.IsNewer(latest, current) {
//	    fmt.Println("update available")
//	}
package semver
