package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/api"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path generation over HTTP",
		Long: `Serve path generation over HTTP.

Endpoints:
  GET  /healthz
  GET  /version
  POST /v1/paths     generate a turnout's Path Table
  POST /v1/compare   generate and check against the saved table
  POST /v1/render    track diagram as svg or dot
  POST /v1/decode    decode an encoded table

The table cache is the one configured in [cache]; use redis or mongo to share
it between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.NewServer(runner, c.options(), loggerFromContext(ctx))
			printInfo("Serving on %s", StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the table cache")

	return cmd
}
