// Package snapshot stores dependency snapshots so they can be listed and
// compared later.
//
// A snapshot is the [deps.Snapshot] produced by one project load. Storing
// them gives a history of how a module's requirements moved over time:
//
//	store, err := snapshot.NewFileStore("") // ~/.local/share/gomodwatch/snapshots
//	_ = store.Save(ctx, snap)
//
//	list, _ := store.List(ctx, snap.Module)
//	old, _ := store.Get(ctx, list[len(list)-1].ID)
//	for _, c := range snapshot.Diff(old, snap) {
//	    fmt.Println(c.Kind, c.Path, c.From, c.To)
//	}
//
// Two backends exist: [FileStore] for the CLI and [MemoryStore] for the API
// server and tests.
package snapshot

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Summary is the listing form of a stored snapshot.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Module   string    `json:"module"`
	Dir      string    `json:"dir"`
	Requires int       `json:"requires"`
	Updates  int       `json:"updates"`
	TakenAt  time.Time `json:"taken_at"`
}

// Summarize builds the Summary of s.
func Summarize(s *deps.Snapshot) Summary {
	return Summary{
		ID:       s.ID,
		Module:   s.Module,
		Dir:      s.Dir,
		Requires: len(s.Records),
		Updates:  len(s.Updates()),
		TakenAt:  s.TakenAt,
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot under its ID, replacing any previous copy.
	Save(ctx context.Context, s *deps.Snapshot) error

	// Get retrieves a snapshot by ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*deps.Snapshot, error)

	// List returns summaries newest first. A non-empty module restricts
	// the list to snapshots of that module.
	List(ctx context.Context, module string) ([]Summary, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Prune removes snapshots taken before cutoff and returns how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// Latest returns the newest stored snapshot of module.
func Latest(ctx context.Context, st Store, module string) (*deps.Snapshot, error) {
	list, err := st.List(ctx, module)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return st.Get(ctx, list[0].ID)
}

// sortSummaries orders newest first.
func sortSummaries(list []Summary) {
	slices.SortStableFunc(list, func(a, b Summary) int {
		return b.TakenAt.Compare(a.TakenAt)
	})
}
