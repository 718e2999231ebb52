package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/modfile"
)

func browseSnapshot() *deps.Snapshot {
	return &deps.Snapshot{
		Module: "example.com/app",
		Records: []deps.Record{
			{Path: "github.com/spf13/cobra", Version: "v1.8.0", Latest: "v1.10.1", HasUpdate: true, Used: true},
			{Path: "github.com/google/uuid", Version: "v1.6.0", Latest: "v1.6.0"},
			{Path: "golang.org/x/sys", Version: "v0.20.0", Indirect: true},
			{Path: "example.com/fork", Version: "v1.0.0", Used: true, Replaced: &modfile.ModVersion{Path: "../fork"}},
		},
	}
}

type loadRecorder struct {
	calls       int
	invalidated int
	snap        *deps.Snapshot
	err         error
}

func (l *loadRecorder) load(invalidate bool) tea.Msg {
	l.calls++
	if invalidate {
		l.invalidated++
	}
	return snapshotMsg{snap: l.snap, err: l.err}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded returns a model that has processed its initial load.
func loaded(t *testing.T, rec *loadRecorder) browseModel {
	t.Helper()
	m := newBrowseModel(rec.load)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() should return the load command")
	}
	next, _ := m.Update(cmd())
	return next.(browseModel)
}

func send(m browseModel, msgs ...tea.Msg) (browseModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(browseModel)
	}
	return m, cmd
}

func TestBrowseInitialLoad(t *testing.T) {
	rec := &loadRecorder{snap: browseSnapshot()}
	m := newBrowseModel(rec.load)

	if !strings.Contains(m.View(), "Resolving") {
		t.Errorf("view before load should show progress:\n%s", m.View())
	}

	m = loaded(t, rec)
	if m.loading {
		t.Error("model still loading after snapshotMsg")
	}
	if len(m.visible) != 4 {
		t.Errorf("visible = %d, want 4", len(m.visible))
	}
	if rec.invalidated != 0 {
		t.Error("initial load should not invalidate")
	}
	view := m.View()
	for _, want := range []string{"example.com/app", "github.com/spf13/cobra", "v1.10.1", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseNavigation(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})

	m, _ = send(m, key("down"), key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	m, _ = send(m, key("down"), key("down"), key("down"))
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want clamped to 3", m.cursor)
	}
	m, _ = send(m, key("up"), key("k"), key("k"), key("k"), key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestBrowseScrolls(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})
	m.height = 2

	m, _ = send(m, key("down"), key("down"))
	if m.offset != 1 {
		t.Errorf("offset = %d, want 1", m.offset)
	}
	if strings.Contains(m.View(), "github.com/spf13/cobra") {
		t.Error("first row should be scrolled out of view")
	}
}

func TestBrowseFilter(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})
	m, _ = send(m, key("down"), key("down"), key("down"))

	tests := []struct {
		filter browseFilter
		want   []string
	}{
		{filterUpdates, []string{"github.com/spf13/cobra"}},
		{filterUnused, []string{"github.com/google/uuid"}},
		{filterAll, []string{"github.com/spf13/cobra", "github.com/google/uuid", "golang.org/x/sys", "example.com/fork"}},
	}
	for _, tt := range tests {
		m, _ = send(m, key("tab"))
		if m.filter != tt.filter {
			t.Fatalf("filter = %v, want %v", m.filter, tt.filter)
		}
		var got []string
		for _, r := range m.visible {
			got = append(got, r.Path)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%v: visible = %v, want %v", tt.filter, got, tt.want)
		}
		if m.cursor >= len(m.visible) {
			t.Errorf("%v: cursor %d out of range", tt.filter, m.cursor)
		}
	}
}

func TestBrowseDetails(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})
	m, _ = send(m, key("down"), key("down"), key("down"), key("enter"))

	view := m.View()
	if !strings.Contains(view, "replaced  ../fork") {
		t.Errorf("details should show the replacement:\n%s", view)
	}

	m, _ = send(m, key("enter"))
	if strings.Contains(m.View(), "replaced  ../fork") {
		t.Error("enter should toggle details off")
	}
}

func TestBrowseReload(t *testing.T) {
	rec := &loadRecorder{snap: browseSnapshot()}
	m := loaded(t, rec)

	m, cmd := send(m, key("r"))
	if cmd == nil || !m.loading {
		t.Fatal("r should start a reload")
	}
	if _, again := send(m, key("r")); again != nil {
		t.Error("r while loading should not start another reload")
	}

	updated := browseSnapshot()
	updated.Records = updated.Records[:1]
	rec.snap = updated
	m, _ = send(m, cmd())

	if rec.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", rec.invalidated)
	}
	if len(m.visible) != 1 || m.cursor != 0 {
		t.Errorf("after reload visible = %d cursor = %d", len(m.visible), m.cursor)
	}
}

func TestBrowseLoadError(t *testing.T) {
	rec := &loadRecorder{err: errors.New("no go.mod")}
	m := newBrowseModel(rec.load)

	next, cmd := m.Update(m.Init()())
	if cmd == nil {
		t.Fatal("load error should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
	if next.(browseModel).err == nil {
		t.Error("model should keep the error")
	}
}

func TestBrowseQuit(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})
	for _, k := range []string{"q", "esc"} {
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(k)
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.Quit", k)
		}
	}
}

func TestBrowseWindowSize(t *testing.T) {
	m := loaded(t, &loadRecorder{snap: browseSnapshot()})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.height != 5 {
		t.Errorf("height = %d, want minimum 5", m.height)
	}
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if m.height != 32 {
		t.Errorf("height = %d, want 32", m.height)
	}
}
