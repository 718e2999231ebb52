package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// FileStore keeps one JSON file per snapshot in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based snapshot store.
// If baseDir is empty, it defaults to $XDG_DATA_HOME/gomodwatch/snapshots
// (~/.local/share/gomodwatch/snapshots).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func defaultDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "gomodwatch", "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gomodwatch", "snapshots"), nil
}

// Path returns the directory snapshot files live in.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) snapshotPath(id uuid.UUID) string {
	return filepath.Join(s.baseDir, id.String()+".json")
}

func (s *FileStore) Save(ctx context.Context, snap *deps.Snapshot) error {
	if snap.ID == uuid.Nil {
		return errors.New("snapshot has no ID")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.snapshotPath(snap.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id uuid.UUID) (*deps.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readSnapshot(s.snapshotPath(id))
}

func (s *FileStore) List(ctx context.Context, module string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []Summary
	err := s.each(func(path string, snap *deps.Snapshot) {
		if module == "" || snap.Module == module {
			list = append(list, Summarize(snap))
		}
	})
	if err != nil {
		return nil, err
	}
	sortSummaries(list)
	return list, nil
}

func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	err := s.each(func(path string, snap *deps.Snapshot) {
		if snap.TakenAt.Before(cutoff) && os.Remove(path) == nil {
			n++
		}
	})
	return n, err
}

// each calls fn for every readable snapshot file. Unreadable files are skipped.
func (s *FileStore) each(fn func(path string, snap *deps.Snapshot)) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		snap, err := readSnapshot(path)
		if err != nil {
			continue
		}
		fn(path, snap)
	}
	return nil
}

func readSnapshot(path string) (*deps.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var snap deps.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

var _ Store = (*FileStore)(nil)
