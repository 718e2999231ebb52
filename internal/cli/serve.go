package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/internal/api"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen    string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency report over HTTP",
		Long: `Serve exposes the project report as a JSON API. Latest-version lookups are
memoized by the resolver and expired entries are swept in the background.

Set redis_url in the config to share the HTTP response cache between
several instances.`,
		Example: `  gomodwatch serve --listen :8080
  curl localhost:8080/dependencies?updates=1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("listen") {
				listen = a.cfg.Listen
			}

			var store snapshot.Store
			if !noHistory {
				if store, err = newStore(); err != nil {
					return err
				}
			}

			a.resolver.StartSweeper(ctx, a.resolver.TTL())

			srv := api.New(api.Config{
				Dir:      a.dir,
				Project:  a.project,
				Resolver: a.resolver,
				Store:    store,
				Logger:   c.Logger,
			})

			c.Logger.Info("Serving", "addr", listen, "dir", a.dir, "sources", a.resolver.Sources())
			if err := srv.ListenAndServe(ctx, listen); err != nil {
				return err
			}
			c.Logger.Info("Server stopped")
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "disable the snapshot routes")
	return cmd
}
