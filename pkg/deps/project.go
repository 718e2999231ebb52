package deps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/imports"
	"github.com/matzehuels/gomodwatch/pkg/modfile"
)

// CachingResolver is a LatestResolver whose memoized answers can be dropped.
type CachingResolver interface {
	LatestResolver
	ClearCache()
}

// Snapshot is one refresh of a project: the parsed go.mod directives plus
// the assembled records. Snapshots are never modified after Load returns.
type Snapshot struct {
	ID        uuid.UUID         `json:"id"`
	Dir       string            `json:"dir"`
	Module    string            `json:"module"`
	Go        string            `json:"go,omitempty"`
	Toolchain string            `json:"toolchain,omitempty"`
	Records   []Record          `json:"records"`
	Replace   []modfile.Replace `json:"replace,omitempty"`
	Exclude   []modfile.Exclude `json:"exclude,omitempty"`
	Retract   []modfile.Retract `json:"retract,omitempty"`
	TakenAt   time.Time         `json:"taken_at"`
}

// Updates returns the records with a newer version available.
func (s *Snapshot) Updates() []Record { return Updates(s.Records) }

// Unused returns the direct requirements nothing imports.
func (s *Snapshot) Unused() []Record { return Unused(s.Records) }

// Lookup returns the record for path.
func (s *Snapshot) Lookup(path string) (Record, bool) {
	for _, r := range s.Records {
		if r.Path == path {
			return r, true
		}
	}
	return Record{}, false
}

// ProjectOptions configures a Project.
type ProjectOptions struct {
	Scan   func(dir string) ([]string, error) // Import collector (default: imports.Scan)
	Logger *log.Logger                        // Debug logging (optional)
	Now    func() time.Time                   // Clock override for tests (optional)
}

// WithDefaults returns a copy of ProjectOptions with zero values replaced by defaults.
func (o ProjectOptions) WithDefaults() ProjectOptions {
	opts := o
	if opts.Scan == nil {
		opts.Scan = imports.Scan
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Project loads snapshots of Go modules on disk.
type Project struct {
	resolver CachingResolver
	opts     ProjectOptions
}

// NewProject creates a Project that resolves latest versions through r.
// r may be nil to skip resolution entirely.
func NewProject(r CachingResolver, opts ProjectOptions) *Project {
	return &Project{resolver: r, opts: opts.WithDefaults()}
}

// Load reads dir/go.mod, scans the sources under dir for imports and
// assembles a fresh Snapshot.
//
// A missing go.mod is returned as-is (it matches modfile.ErrNotFound).
// Every other failure, including a panic, is reported as a PARSE_FAILED
// error carrying the underlying message.
func (p *Project) Load(ctx context.Context, dir string) (snap *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, apperrors.New(apperrors.ErrCodeParseFailed, "load %s: %v", dir, r)
		}
	}()

	start := p.opts.Now()

	f, err := modfile.Read(dir)
	if errors.Is(err, modfile.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeParseFailed, err, "read %s", modfile.Filename)
	}

	paths, err := p.opts.Scan(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeParseFailed, err, "scan imports")
	}
	used := NewImports(paths)

	records := Assemble(ctx, f, used.Uses, p.resolver)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	snap = &Snapshot{
		ID:        uuid.New(),
		Dir:       dir,
		Module:    f.Module,
		Go:        f.Go,
		Toolchain: f.Toolchain,
		Records:   records,
		Replace:   f.Replace,
		Exclude:   f.Exclude,
		Retract:   f.Retract,
		TakenAt:   p.opts.Now(),
	}
	p.opts.Logger.Debug("loaded project",
		"module", snap.Module,
		"requires", len(records),
		"imports", used.Len(),
		"elapsed", p.opts.Now().Sub(start))
	return snap, nil
}

// Invalidate drops every cached resolution so the next Load re-queries the
// sources. Call it after changing go.mod, then Load again.
func (p *Project) Invalidate() {
	if p.resolver != nil {
		p.resolver.ClearCache()
	}
}
