package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leafspan/pkg/cache"
	"github.com/matzehuels/leafspan/pkg/config"
	"github.com/matzehuels/leafspan/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve API",
		Long: `Run the HTTP solve API.

Endpoints:
  GET  /healthz       liveness probe
  POST /v1/solve      solve a graph posted in canonical text form
  POST /v1/leaves     count the leaves of a parent array
  GET  /v1/generate   generate a random connected graph

Limits and the listen address come from the [server] section of the config
file. The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			if b := c.Config.Cache.Backend; b == config.BackendRedis || b == config.BackendMongo {
				runner.Keyer = cache.NewScopedKeyer(nil, "api:")
			}

			srv := server.New(runner,
				server.WithAddr(cfg.Addr),
				server.WithLogger(c.Logger),
				server.WithMaxVertices(cfg.MaxVertices),
				server.WithMaxBodyBytes(cfg.MaxBodyBytes),
				server.WithTimeout(cfg.Timeout.Duration),
				server.WithDefaults(c.solveOptions()),
			)
			c.Logger.Info("serving", "addr", srv.Addr(), "cache", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
