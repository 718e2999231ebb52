// Package toolchain runs the go command to change a module's requirements.
//
// gomodwatch never edits go.mod itself. Adding, upgrading and dropping
// requirements goes through "go get" and "go mod tidy" so the go command
// keeps go.sum and the rest of the module graph consistent. Callers reload
// their view of go.mod afterwards.
package toolchain

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
)

// ExecFunc runs name with args in dir and returns the combined output.
type ExecFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Runner invokes the go command in a module directory.
type Runner struct {
	dir    string
	goBin  string
	logger *log.Logger
	exec   ExecFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithGoBinary sets the go executable (default "go" from PATH).
func WithGoBinary(bin string) Option {
	return func(r *Runner) { r.goBin = bin }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithExec replaces process execution, mainly for tests.
func WithExec(fn ExecFunc) Option {
	return func(r *Runner) { r.exec = fn }
}

// New creates a Runner for the module in dir.
func New(dir string, opts ...Option) *Runner {
	r := &Runner{dir: dir, goBin: "go", logger: log.Default(), exec: runCommand}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the module directory the runner operates in.
func (r *Runner) Dir() string { return r.dir }

// Get runs "go get path@version". An empty version means "latest".
func (r *Runner) Get(ctx context.Context, path, version string) error {
	if version == "" {
		version = "latest"
	}
	if err := apperrors.ValidateModulePath(path); err != nil {
		return err
	}
	if err := apperrors.ValidateVersion(version); err != nil {
		return err
	}
	return r.run(ctx, "get", path+"@"+version)
}

// Drop removes a requirement with "go get path@none".
func (r *Runner) Drop(ctx context.Context, path string) error {
	if err := apperrors.ValidateModulePath(path); err != nil {
		return err
	}
	return r.run(ctx, "get", path+"@none")
}

// Tidy runs "go mod tidy".
func (r *Runner) Tidy(ctx context.Context) error {
	return r.run(ctx, "mod", "tidy")
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	r.logger.Debug("running go command", "dir", r.dir, "args", strings.Join(args, " "))

	out, err := r.exec(ctx, r.dir, r.goBin, args...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		msg = err.Error()
	}
	return apperrors.Wrap(apperrors.ErrCodeToolchainFailed, err, "go %s: %s", strings.Join(args, " "), msg)
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}
