package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

// latestCommand creates the latest command.
func (c *CLI) latestCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "latest <module>...",
		Short:   "Print the latest version of one or more modules",
		Example: `  gomodwatch latest github.com/spf13/cobra golang.org/x/sync`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range args {
				if err := apperrors.ValidateModulePath(m); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.resolver.CheckUpdates(ctx, args)
			if err := ctx.Err(); err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
			}
			printResults(cmd, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printResults(cmd *cobra.Command, results []resolve.Result) {
	w := cmd.OutOrStdout()
	for _, r := range results {
		latest := StyleWarning.Render("not found")
		if r.Found {
			latest = StyleSuccess.Render(r.Latest)
		}
		fmt.Fprintf(w, "%s %s %s\n", StyleValue.Render(r.Key), StyleDim.Render(iconArrow), latest)
	}
}

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		asJSON bool
		stable bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "versions <module>",
		Short: "List the published versions of a module, newest first",
		Example: `  gomodwatch versions github.com/spf13/cobra
  gomodwatch versions --stable --limit 5 golang.org/x/sync`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module := args[0]
			if err := apperrors.ValidateModulePath(module); err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			versions := selectVersions(a.resolver.Versions(ctx, module), stable, limit)
			if err := ctx.Err(); err != nil {
				return err
			}

			if asJSON {
				if versions == nil {
					versions = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(versions)
			}
			if len(versions) == 0 {
				printWarning("No versions found for %s", module)
				return nil
			}
			w := cmd.OutOrStdout()
			for _, v := range versions {
				fmt.Fprintln(w, v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print versions as a JSON array")
	cmd.Flags().BoolVar(&stable, "stable", false, "omit pre-release and pseudo-versions")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n versions (0 = all)")
	return cmd
}

// selectVersions applies --stable and --limit to a newest-first list.
func selectVersions(versions []string, stable bool, limit int) []string {
	if stable {
		kept := versions[:0:0]
		for _, v := range versions {
			if !semver.IsPrerelease(v) && !semver.IsPseudo(v) {
				kept = append(kept, v)
			}
		}
		versions = kept
	}
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two versions by semantic-version precedence",
		Long: `Compare prints "<", "=" or ">" for a relative to b, following semantic
versioning precedence. Build metadata is ignored.`,
		Example: `  gomodwatch compare v1.10.0 v1.9.3`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", args[0], compareSymbol(semver.Compare(args[0], args[1])), args[1])
			return nil
		},
	}
}

func compareSymbol(n int) string {
	switch {
	case n < 0:
		return "<"
	case n > 0:
		return ">"
	}
	return "="
}
