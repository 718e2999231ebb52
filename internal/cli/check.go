package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// checkOptions holds the flags of the check command.
type checkOptions struct {
	updates bool
	unused  bool
	json    bool
	save    bool
}

// checkCommand creates the check command, the main report.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report the requirements of go.mod with their latest versions",
		Long: `Check reads go.mod in the project directory, resolves the latest version of
every requirement and scans the project's sources for imports.

Requirements with a newer version are marked "update"; direct requirements
that no source file imports are marked "unused".`,
		Example: `  gomodwatch check
  gomodwatch check --updates
  gomodwatch -C ./service check --json --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.updates, "updates", false, "only show requirements with updates")
	cmd.Flags().BoolVar(&opts.unused, "unused", false, "only show unused direct requirements")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the snapshot as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the snapshot in the history")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, w io.Writer, opts checkOptions) error {
	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := c.loadSnapshot(ctx, a, !opts.json)
	if err != nil {
		return err
	}
	defer a.stats.summarize()

	if opts.save {
		store, err := newStore()
		if err != nil {
			return err
		}
		if err := store.Save(ctx, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		c.Logger.Info("Saved snapshot", "id", snap.ID)
	}

	records := filterRecords(snap.Records, opts.updates, opts.unused)

	if opts.json {
		out := *snap
		out.Records = records
		if out.Records == nil {
			out.Records = []deps.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, StyleTitle.Render(snap.Module)+" "+StyleDim.Render(snap.Dir))
	if len(records) == 0 {
		printInfo("Nothing to report")
	} else {
		fmt.Fprintln(w, renderRecords(records))
	}
	printSummary(len(snap.Records), len(snap.Updates()), len(snap.Unused()))

	if n := a.stats.sourceErrors.Load(); n > 0 {
		printWarning("%d source lookups failed; run with -v for details", n)
	}
	return nil
}

// loadSnapshot loads the project snapshot, showing a spinner when
// interactive is set.
func (c *CLI) loadSnapshot(ctx context.Context, a *app, interactive bool) (*deps.Snapshot, error) {
	prog := newProgress(c.Logger)

	var spinner *Spinner
	if interactive {
		spinner = newSpinnerWithContext(ctx, "Resolving requirements...")
		spinner.Start()
	}

	snap, err := a.project.Load(ctx, a.dir)
	if spinner != nil {
		spinner.Stop()
		if spinner.Cancelled() && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	prog.done(fmt.Sprintf("Resolved %d requirements", len(snap.Records)))
	return snap, nil
}

// filterRecords applies the --updates and --unused filters. With both set a
// record must satisfy both.
func filterRecords(records []deps.Record, updates, unused bool) []deps.Record {
	if updates {
		records = deps.Updates(records)
	}
	if unused {
		records = deps.Unused(records)
	}
	return records
}
