package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/pkg/deps"
	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
)

// historyCommand creates the snapshot history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect snapshots saved with check --save",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDiffCommand())
	cmd.AddCommand(c.historyPruneCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var module string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore()
			if err != nil {
				return err
			}
			list, err := store.List(cmd.Context(), module)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No snapshots saved")
				return nil
			}
			w := cmd.OutOrStdout()
			for _, s := range list {
				fmt.Fprintf(w, "%s  %s  %s  %s\n",
					StyleDim.Render(s.ID.String()),
					s.TakenAt.Local().Format(time.DateTime),
					StyleValue.Render(s.Module),
					StyleDim.Render(fmt.Sprintf("%d requires, %d updates", s.Requires, s.Updates)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "only list snapshots of this module path")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore()
			if err != nil {
				return err
			}
			snap, err := getSnapshot(cmd, store, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			fmt.Fprintln(w, StyleTitle.Render(snap.Module)+" "+StyleDim.Render(snap.TakenAt.Local().Format(time.DateTime)))
			fmt.Fprintln(w, renderRecords(snap.Records))
			printSummary(len(snap.Records), len(snap.Updates()), len(snap.Unused()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func (c *CLI) historyDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <id> [id]",
		Short: "List requirement changes between two snapshots",
		Long: `Diff compares a saved snapshot with a second one, or with the current state
of the project when only one id is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newStore()
			if err != nil {
				return err
			}
			old, err := getSnapshot(cmd, store, args[0])
			if err != nil {
				return err
			}

			var cur *deps.Snapshot
			if len(args) == 2 {
				if cur, err = getSnapshot(cmd, store, args[1]); err != nil {
					return err
				}
			} else {
				a, err := c.newApp(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				if cur, err = c.loadSnapshot(ctx, a, true); err != nil {
					return err
				}
			}

			changes := snapshot.Diff(old, cur)
			if len(changes) == 0 {
				printInfo("No changes")
				return nil
			}
			w := cmd.OutOrStdout()
			for _, ch := range changes {
				fmt.Fprintln(w, formatChange(ch))
			}
			return nil
		},
	}
	return cmd
}

func (c *CLI) historyPruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "--older-than must be positive")
			}
			store, err := newStore()
			if err != nil {
				return err
			}
			n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			printSuccess("Pruned %d snapshots", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the snapshots to delete")
	return cmd
}

func getSnapshot(cmd *cobra.Command, store snapshot.Store, raw string) (*deps.Snapshot, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid snapshot id %q", raw)
	}
	snap, err := store.Get(cmd.Context(), id)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "no snapshot %s", id)
	}
	return snap, err
}

func formatChange(ch snapshot.Change) string {
	switch ch.Kind {
	case snapshot.Added:
		return StyleSuccess.Render("+ "+ch.Path) + " " + ch.To
	case snapshot.Removed:
		return styleIconError.Render("- "+ch.Path) + " " + ch.From
	case snapshot.Upgraded:
		return StyleWarning.Render("↑ "+ch.Path) + " " + ch.From + " " + iconArrow + " " + ch.To
	case snapshot.Downgraded:
		return StyleWarning.Render("↓ "+ch.Path) + " " + ch.From + " " + iconArrow + " " + ch.To
	}
	return StyleDim.Render("~ "+ch.Path) + " " + ch.From + " " + iconArrow + " " + ch.To
}
