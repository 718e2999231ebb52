package snapshot

import (
	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

// ChangeKind classifies a requirement change between two snapshots.
type ChangeKind string

const (
	Added      ChangeKind = "added"
	Removed    ChangeKind = "removed"
	Upgraded   ChangeKind = "upgraded"
	Downgraded ChangeKind = "downgraded"
	Changed    ChangeKind = "changed" // same precedence, different string (build metadata)
)

// Change is one requirement that differs between two snapshots.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Path string     `json:"path"`
	From string     `json:"from,omitempty"`
	To   string     `json:"to,omitempty"`
}

// Diff lists the requirement changes from old to cur. Changes to existing
// and added requirements follow cur's order; removals come last in old's
// order. Unchanged requirements are omitted.
func Diff(old, cur *deps.Snapshot) []Change {
	before := make(map[string]string)
	if old != nil {
		for _, r := range old.Records {
			before[r.Path] = r.Version
		}
	}

	var changes []Change
	seen := make(map[string]bool)
	if cur != nil {
		for _, r := range cur.Records {
			seen[r.Path] = true
			prev, ok := before[r.Path]
			switch {
			case !ok:
				changes = append(changes, Change{Kind: Added, Path: r.Path, To: r.Version})
			case prev == r.Version:
			case semver.IsNewer(r.Version, prev):
				changes = append(changes, Change{Kind: Upgraded, Path: r.Path, From: prev, To: r.Version})
			case semver.IsOlder(r.Version, prev):
				changes = append(changes, Change{Kind: Downgraded, Path: r.Path, From: prev, To: r.Version})
			default:
				changes = append(changes, Change{Kind: Changed, Path: r.Path, From: prev, To: r.Version})
			}
		}
	}

	if old != nil {
		for _, r := range old.Records {
			if !seen[r.Path] {
				seen[r.Path] = true
				changes = append(changes, Change{Kind: Removed, Path: r.Path, From: r.Version})
			}
		}
	}
	return changes
}
