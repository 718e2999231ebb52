package deps

import (
	"context"

	"github.com/matzehuels/gomodwatch/pkg/modfile"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

// Record is the assembled view of one require directive.
type Record struct {
	Path      string              `json:"path"`
	Version   string              `json:"version"`
	Indirect  bool                `json:"indirect"`
	Latest    string              `json:"latest,omitempty"`
	HasUpdate bool                `json:"has_update"`
	Used      bool                `json:"used"`
	Replaced  *modfile.ModVersion `json:"replaced,omitempty"`
}

// UsageFunc reports whether a requirement is imported by the project.
type UsageFunc func(path string) bool

// LatestResolver resolves the latest version of many modules at once,
// returning results in input order.
type LatestResolver interface {
	CheckUpdates(ctx context.Context, keys []string) []resolve.Result
}

// Assemble builds one Record per require directive of f, in source order.
//
// HasUpdate is set only when a latest version was found and it orders after
// the declared version. A nil used marks every record unused; a nil r leaves
// Latest empty.
func Assemble(ctx context.Context, f *modfile.File, used UsageFunc, r LatestResolver) []Record {
	if f == nil || len(f.Require) == 0 {
		return nil
	}

	var results []resolve.Result
	if r != nil {
		keys := make([]string, len(f.Require))
		for i, req := range f.Require {
			keys[i] = req.Path
		}
		results = r.CheckUpdates(ctx, keys)
	}

	records := make([]Record, len(f.Require))
	for i, req := range f.Require {
		rec := Record{
			Path:     req.Path,
			Version:  req.Version,
			Indirect: req.Indirect,
		}
		if i < len(results) && results[i].Found {
			rec.Latest = results[i].Latest
			rec.HasUpdate = semver.IsNewer(rec.Latest, rec.Version)
		}
		if used != nil {
			rec.Used = used(req.Path)
		}
		if rep, ok := f.Replacement(req.Path, req.Version); ok {
			rec.Replaced = &rep.New
		}
		records[i] = rec
	}
	return records
}

// Updates returns the records that have a newer version available.
func Updates(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.HasUpdate {
			out = append(out, r)
		}
	}
	return out
}

// Unused returns the direct requirements no source file imports.
// Indirect requirements are never imported directly and are left out.
func Unused(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if !r.Indirect && !r.Used {
			out = append(out, r)
		}
	}
	return out
}
