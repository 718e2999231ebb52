package toolchain

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
)

type recorder struct {
	dir  string
	name string
	args []string
	out  string
	err  error
}

func (r *recorder) exec(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	r.dir, r.name, r.args = dir, name, args
	return []byte(r.out), r.err
}

func newTestRunner(rec *recorder) *Runner {
	return New("/work/app", WithExec(rec.exec), WithLogger(log.New(io.Discard)))
}

func TestRunnerCommands(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Runner) error
		want []string
	}{
		{"get version", func(r *Runner) error { return r.Get(context.Background(), "github.com/x/y", "v1.2.3") }, []string{"get", "github.com/x/y@v1.2.3"}},
		{"get latest", func(r *Runner) error { return r.Get(context.Background(), "github.com/x/y", "") }, []string{"get", "github.com/x/y@latest"}},
		{"drop", func(r *Runner) error { return r.Drop(context.Background(), "github.com/x/y") }, []string{"get", "github.com/x/y@none"}},
		{"tidy", func(r *Runner) error { return r.Tidy(context.Background()) }, []string{"mod", "tidy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			if err := tt.run(newTestRunner(rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.dir != "/work/app" || rec.name != "go" {
				t.Errorf("ran %s in %s", rec.name, rec.dir)
			}
			if !reflect.DeepEqual(rec.args, tt.want) {
				t.Errorf("args = %v, want %v", rec.args, tt.want)
			}
		})
	}
}

func TestRunnerRejectsBadInput(t *testing.T) {
	rec := &recorder{}
	r := newTestRunner(rec)

	if err := r.Get(context.Background(), "-modfile=/etc/passwd", "v1.0.0"); !apperrors.Is(err, apperrors.ErrCodeInvalidPackage) {
		t.Errorf("Get(flag-like path) error = %v", err)
	}
	if err := r.Get(context.Background(), "github.com/x/y", "master; rm -rf"); !apperrors.Is(err, apperrors.ErrCodeInvalidVersion) {
		t.Errorf("Get(bad version) error = %v", err)
	}
	if err := r.Drop(context.Background(), ""); !apperrors.Is(err, apperrors.ErrCodeInvalidPackage) {
		t.Errorf("Drop(empty) error = %v", err)
	}
	if rec.args != nil {
		t.Errorf("go command ran despite invalid input: %v", rec.args)
	}
}

func TestRunnerFailureCarriesOutput(t *testing.T) {
	rec := &recorder{
		out: "go: github.com/x/y@v9.9.9: invalid version: unknown revision v9.9.9\n",
		err: errors.New("exit status 1"),
	}
	err := newTestRunner(rec).Get(context.Background(), "github.com/x/y", "v9.9.9")

	if !apperrors.Is(err, apperrors.ErrCodeToolchainFailed) {
		t.Fatalf("code = %s, want TOOLCHAIN_FAILED", apperrors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "unknown revision v9.9.9") {
		t.Errorf("error should include command output: %v", err)
	}
}

func TestRunnerCanceled(t *testing.T) {
	rec := &recorder{err: errors.New("signal: killed")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := newTestRunner(rec).Tidy(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunnerMissingBinary(t *testing.T) {
	r := New(t.TempDir(),
		WithGoBinary(filepath.Join(t.TempDir(), "no-such-go")),
		WithLogger(log.New(io.Discard)),
	)
	if err := r.Tidy(context.Background()); !apperrors.Is(err, apperrors.ErrCodeToolchainFailed) {
		t.Errorf("error = %v, want TOOLCHAIN_FAILED", err)
	}
	if r.Dir() == "" {
		t.Error("Dir() should be set")
	}
}
