package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/gomodwatch/pkg/buildinfo"
	"github.com/matzehuels/gomodwatch/pkg/deps"
	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/modfile"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
	"github.com/matzehuels/gomodwatch/pkg/semver"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
)

type dependenciesResponse struct {
	*deps.Snapshot
	Records []deps.Record `json:"records"`
}

type versionsResponse struct {
	Path     string   `json:"path"`
	Versions []string `json:"versions"`
}

type compareResponse struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Result int    `json:"result"`
}

type diffResponse struct {
	From    uuid.UUID         `json:"from"`
	To      uuid.UUID         `json:"to"`
	Changes []snapshot.Change `json:"changes"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cfg.Project.Load(r.Context(), s.cfg.Dir)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records := snap.Records
	q := r.URL.Query()
	if flag(q.Get("updates")) {
		records = deps.Updates(records)
	}
	if flag(q.Get("unused")) {
		records = deps.Unused(records)
	}
	if records == nil {
		records = []deps.Record{}
	}
	writeJSON(w, http.StatusOK, dependenciesResponse{Snapshot: snap, Records: records})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	path, ok := s.modulePath(w, r)
	if !ok {
		return
	}
	latest, found := s.cfg.Resolver.Latest(r.Context(), path)
	writeJSON(w, http.StatusOK, resolve.Result{Key: path, Latest: latest, Found: found})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	path, ok := s.modulePath(w, r)
	if !ok {
		return
	}
	versions := s.cfg.Resolver.Versions(r.Context(), path)
	if versions == nil {
		versions = []string{}
	}
	writeJSON(w, http.StatusOK, versionsResponse{Path: path, Versions: versions})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "both a and b are required"))
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{A: a, B: b, Result: semver.Compare(a, b)})
}

func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	s.cfg.Resolver.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	list, err := s.cfg.Store.List(r.Context(), r.URL.Query().Get("module"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []snapshot.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	snap, err := s.cfg.Project.Load(r.Context(), s.cfg.Dir)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Store.Save(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot.Summarize(snap))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDiffSnapshot compares the snapshot against ?against=<id>, or against
// a fresh load of the project when no id is given.
func (s *Server) handleDiffSnapshot(w http.ResponseWriter, r *http.Request) {
	old, ok := s.loadSnapshot(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var cur *deps.Snapshot
	if against := r.URL.Query().Get("against"); against != "" {
		if cur, ok = s.loadSnapshot(w, r, against); !ok {
			return
		}
	} else {
		var err error
		if cur, err = s.cfg.Project.Load(r.Context(), s.cfg.Dir); err != nil {
			s.writeError(w, err)
			return
		}
	}

	changes := snapshot.Diff(old, cur)
	if changes == nil {
		changes = []snapshot.Change{}
	}
	writeJSON(w, http.StatusOK, diffResponse{From: old.ID, To: cur.ID, Changes: changes})
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request, raw string) (*deps.Snapshot, bool) {
	if !s.requireStore(w) {
		return nil, false
	}
	id, err := parseID(raw)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	snap, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return snap, true
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.cfg.Store == nil {
		s.writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "snapshot history is disabled"))
		return false
	}
	return true
}

func (s *Server) modulePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if err := apperrors.ValidateModulePath(path); err != nil {
		s.writeError(w, err)
		return "", false
	}
	return path, true
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid snapshot id %q", raw)
	}
	return id, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	switch {
	case errors.Is(err, modfile.ErrNotFound), errors.Is(err, snapshot.ErrNotFound):
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func flag(v string) bool {
	return v == "1" || v == "true"
}
