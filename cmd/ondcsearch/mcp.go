package main

import (
	"github.com/spf13/cobra"

	mcpTransport "github.com/kailas-cloud/ondcsearch/internal/transport/mcp"
	"github.com/kailas-cloud/ondcsearch/internal/version"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search tools over MCP stdio",
		Long: "Serve search_products, advanced_search and browse_categories as MCP tools on stdin/stdout.\n" +
			"Logs go to stderr so they never interleave with the protocol stream.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			a.logger.Info("Starting MCP server")
			return mcpTransport.NewServer(d.search, a.cfg.MCP.Name, version.Version, a.logger).Serve()
		},
	}
}
