package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/modfile"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
)

type fakeLoader struct {
	snap *deps.Snapshot
	err  error
}

func (f *fakeLoader) Load(context.Context, string) (*deps.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.snap
	cp.ID = uuid.New()
	return &cp, nil
}

type fakeResolver struct {
	latest   map[string]string
	versions map[string][]string
	cleared  int
}

func (f *fakeResolver) Latest(_ context.Context, key string) (string, bool) {
	v, ok := f.latest[key]
	return v, ok
}

func (f *fakeResolver) Versions(_ context.Context, key string) []string {
	return f.versions[key]
}

func (f *fakeResolver) ClearCache() { f.cleared++ }

func testSnapshot() *deps.Snapshot {
	return &deps.Snapshot{
		Dir:    "/src/app",
		Module: "example.com/app",
		Records: []deps.Record{
			{Path: "github.com/spf13/cobra", Version: "v1.8.0", Latest: "v1.10.1", HasUpdate: true, Used: true},
			{Path: "github.com/google/uuid", Version: "v1.6.0", Latest: "v1.6.0", Used: false},
			{Path: "golang.org/x/sys", Version: "v0.20.0", Indirect: true},
		},
		TakenAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	srv      *httptest.Server
	loader   *fakeLoader
	resolver *fakeResolver
	store    *snapshot.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loader: &fakeLoader{snap: testSnapshot()},
		resolver: &fakeResolver{
			latest:   map[string]string{"github.com/spf13/cobra": "v1.10.1"},
			versions: map[string][]string{"github.com/spf13/cobra": {"v1.10.1", "v1.9.0", "v1.8.0"}},
		},
		store: snapshot.NewMemoryStore(0),
	}
	s := New(Config{
		Dir:      "/src/app",
		Project:  f.loader,
		Resolver: f.resolver,
		Store:    f.store,
		Logger:   log.New(io.Discard),
	})
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, v any) int {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	var got map[string]string
	if code := f.do(t, http.MethodGet, "/version", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got["version"] == "" || got["commit"] == "" {
		t.Errorf("GET /version = %v", got)
	}
}

func TestDependencies(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"github.com/spf13/cobra", "github.com/google/uuid", "golang.org/x/sys"}},
		{"?updates=1", []string{"github.com/spf13/cobra"}},
		{"?unused=true", []string{"github.com/google/uuid"}},
		{"?updates=1&unused=1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got struct {
				Module  string        `json:"module"`
				Records []deps.Record `json:"records"`
			}
			if code := f.do(t, http.MethodGet, "/dependencies"+tt.query, &got); code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if got.Module != "example.com/app" {
				t.Errorf("module = %q", got.Module)
			}
			if got.Records == nil {
				t.Fatal("records should be an array, not null")
			}
			if len(got.Records) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got.Records), len(tt.want))
			}
			for i, r := range got.Records {
				if r.Path != tt.want[i] {
					t.Errorf("records[%d] = %q, want %q", i, r.Path, tt.want[i])
				}
			}
		})
	}
}

func TestDependenciesManifestNotFound(t *testing.T) {
	f := newFixture(t)
	f.loader.err = modfile.ErrNotFound

	var got errorResponse
	if code := f.do(t, http.MethodGet, "/dependencies", &got); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if got.Error == "" {
		t.Error("expected an error message")
	}
}

func TestLatest(t *testing.T) {
	f := newFixture(t)

	var got resolve.Result
	code := f.do(t, http.MethodGet, "/modules/latest?path="+url.QueryEscape("github.com/spf13/cobra"), &got)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !got.Found || got.Latest != "v1.10.1" || got.Key != "github.com/spf13/cobra" {
		t.Errorf("got %+v", got)
	}

	got = resolve.Result{}
	f.do(t, http.MethodGet, "/modules/latest?path=example.com/unknown", &got)
	if got.Found || got.Latest != "" {
		t.Errorf("unknown module: got %+v", got)
	}
}

func TestLatestRequiresPath(t *testing.T) {
	f := newFixture(t)
	var got errorResponse
	if code := f.do(t, http.MethodGet, "/modules/latest", &got); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	if got.Code != "INVALID_PACKAGE" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestVersions(t *testing.T) {
	f := newFixture(t)

	var got versionsResponse
	f.do(t, http.MethodGet, "/modules/versions?path=github.com/spf13/cobra", &got)
	if strings.Join(got.Versions, ",") != "v1.10.1,v1.9.0,v1.8.0" {
		t.Errorf("versions = %v", got.Versions)
	}

	got = versionsResponse{}
	f.do(t, http.MethodGet, "/modules/versions?path=example.com/unknown", &got)
	if got.Versions == nil || len(got.Versions) != 0 {
		t.Errorf("unknown module versions = %#v, want empty array", got.Versions)
	}
}

func TestCompare(t *testing.T) {
	f := newFixture(t)

	var got compareResponse
	f.do(t, http.MethodGet, "/compare?a=v1.10.0&b=v1.9.0", &got)
	if got.Result != 1 {
		t.Errorf("compare v1.10.0 v1.9.0 = %d, want 1", got.Result)
	}
	if code := f.do(t, http.MethodGet, "/compare?a=v1.0.0", nil); code != http.StatusBadRequest {
		t.Errorf("missing b: status = %d, want 400", code)
	}
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	if code := f.do(t, http.MethodPost, "/cache/clear", nil); code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", code)
	}
	if f.resolver.cleared != 1 {
		t.Errorf("cleared = %d, want 1", f.resolver.cleared)
	}
}

func TestSnapshots(t *testing.T) {
	f := newFixture(t)

	var first snapshot.Summary
	if code := f.do(t, http.MethodPost, "/snapshots", &first); code != http.StatusCreated {
		t.Fatalf("POST /snapshots status = %d", code)
	}
	if first.Requires != 3 || first.Updates != 1 {
		t.Errorf("summary = %+v", first)
	}

	f.loader.snap.Records = append(f.loader.snap.Records[:1:1], deps.Record{Path: "github.com/google/uuid", Version: "v1.7.0"})
	f.loader.snap.TakenAt = f.loader.snap.TakenAt.Add(time.Hour)
	var second snapshot.Summary
	f.do(t, http.MethodPost, "/snapshots", &second)

	var list []snapshot.Summary
	f.do(t, http.MethodGet, "/snapshots?module=example.com/app", &list)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("list = %+v, want newest first", list)
	}

	var snap deps.Snapshot
	if code := f.do(t, http.MethodGet, "/snapshots/"+first.ID.String(), &snap); code != http.StatusOK {
		t.Fatalf("GET snapshot status = %d", code)
	}
	if snap.ID != first.ID || len(snap.Records) != 3 {
		t.Errorf("snapshot = %+v", snap)
	}

	var diff diffResponse
	f.do(t, http.MethodGet, "/snapshots/"+first.ID.String()+"/diff?against="+second.ID.String(), &diff)
	want := []snapshot.Change{
		{Kind: snapshot.Upgraded, Path: "github.com/google/uuid", From: "v1.6.0", To: "v1.7.0"},
		{Kind: snapshot.Removed, Path: "golang.org/x/sys", From: "v0.20.0"},
	}
	if len(diff.Changes) != len(want) {
		t.Fatalf("changes = %+v, want %+v", diff.Changes, want)
	}
	for i := range want {
		if diff.Changes[i] != want[i] {
			t.Errorf("changes[%d] = %+v, want %+v", i, diff.Changes[i], want[i])
		}
	}

	if code := f.do(t, http.MethodDelete, "/snapshots/"+first.ID.String(), nil); code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", code)
	}
	if code := f.do(t, http.MethodGet, "/snapshots/"+first.ID.String(), nil); code != http.StatusNotFound {
		t.Errorf("GET deleted snapshot status = %d, want 404", code)
	}
}

func TestSnapshotBadID(t *testing.T) {
	f := newFixture(t)
	if code := f.do(t, http.MethodGet, "/snapshots/not-a-uuid", nil); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestSnapshotsDisabled(t *testing.T) {
	s := New(Config{
		Project:  &fakeLoader{snap: testSnapshot()},
		Resolver: &fakeResolver{},
		Logger:   log.New(io.Discard),
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Project: &fakeLoader{snap: testSnapshot()}, Resolver: &fakeResolver{}, Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
