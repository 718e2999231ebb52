package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/toolchain"
)

// newRunner creates the go command runner for the project.
func (c *CLI) newRunner(dir string) *toolchain.Runner {
	opts := []toolchain.Option{toolchain.WithLogger(c.Logger)}
	if c.goExec != nil {
		opts = append(opts, toolchain.WithExec(c.goExec))
	}
	return toolchain.New(dir, opts...)
}

// getCommand creates the get command.
func (c *CLI) getCommand() *cobra.Command {
	var all, tidy bool

	cmd := &cobra.Command{
		Use:   "get [module[@version]]",
		Short: "Add or upgrade a requirement with go get",
		Long: `Get runs "go get" in the project directory and reports the requirement
afterwards. Without a version the latest version is requested. With --all
every requirement that has an update is upgraded to its latest version.`,
		Example: `  gomodwatch get github.com/spf13/cobra
  gomodwatch get golang.org/x/sync@v0.18.0
  gomodwatch get --all --tidy`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			runner := c.newRunner(a.dir)

			var paths []string
			if all {
				paths, err = c.upgradeAll(ctx, a, runner)
			} else {
				path, version, _ := strings.Cut(args[0], "@")
				paths = []string{path}
				err = runner.Get(ctx, path, version)
			}
			if err != nil {
				return err
			}
			if tidy {
				if err := runner.Tidy(ctx); err != nil {
					return err
				}
			}
			return c.reportAfterMutation(ctx, a, paths)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "upgrade every requirement that has an update")
	cmd.Flags().BoolVar(&tidy, "tidy", false, "run go mod tidy afterwards")
	return cmd
}

// upgradeAll runs go get for every record with an update, stopping at the
// first failure.
func (c *CLI) upgradeAll(ctx context.Context, a *app, runner *toolchain.Runner) ([]string, error) {
	snap, err := c.loadSnapshot(ctx, a, true)
	if err != nil {
		return nil, err
	}
	updates := snap.Updates()
	if len(updates) == 0 {
		printInfo("All requirements are up to date")
		return nil, nil
	}

	paths := make([]string, 0, len(updates))
	for _, r := range updates {
		step := fmt.Sprintf("%s %s %s %s", r.Path, r.Version, iconArrow, r.Latest)
		spinner := newSpinnerWithContext(ctx, step)
		spinner.Start()
		if err := runner.Get(ctx, r.Path, r.Latest); err != nil {
			spinner.StopWithError(step)
			return paths, err
		}
		spinner.StopWithSuccess(step)
		paths = append(paths, r.Path)
	}
	return paths, nil
}

// dropCommand creates the drop command.
func (c *CLI) dropCommand() *cobra.Command {
	var tidy bool

	cmd := &cobra.Command{
		Use:     "drop <module>",
		Short:   "Remove a requirement with go get module@none",
		Example: `  gomodwatch drop github.com/pkg/errors --tidy`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			runner := c.newRunner(a.dir)
			if err := runner.Drop(ctx, args[0]); err != nil {
				return err
			}
			if tidy {
				if err := runner.Tidy(ctx); err != nil {
					return err
				}
			}
			return c.reportAfterMutation(ctx, a, args)
		},
	}

	cmd.Flags().BoolVar(&tidy, "tidy", false, "run go mod tidy afterwards")
	return cmd
}

// reportAfterMutation drops memoized versions, reloads the project and
// prints the state of paths in the new snapshot.
func (c *CLI) reportAfterMutation(ctx context.Context, a *app, paths []string) error {
	a.project.Invalidate()
	snap, err := a.project.Load(ctx, a.dir)
	if err != nil {
		return fmt.Errorf("reload project: %w", err)
	}

	for _, p := range paths {
		r, ok := snap.Lookup(p)
		if !ok {
			printSuccess("%s removed", p)
			continue
		}
		printSuccess("%s %s", r.Path, r.Version)
		if r.HasUpdate {
			printDetail("%s available", r.Latest)
		}
		if !r.Used && !r.Indirect {
			printDetail("not imported by any package")
		}
	}
	printKeyValue("requires", fmt.Sprint(len(snap.Records)))
	printKeyValue("updates", fmt.Sprint(len(deps.Updates(snap.Records))))
	return nil
}
