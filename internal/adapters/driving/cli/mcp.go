package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants and
research agents can search disclosure reports.

Tools: search, hybrid_search (when retrieval is configured) and
resolve_company. Resources: storm://companies and
storm://reports/{reportId}/context/{seq}.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode
  storm mcp serve

  # HTTP mode
  storm mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "storm": {
        "command": "/path/to/storm",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if searchService == nil {
		return notConfigured("search")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:    searchService,
		Retriever: retriever,
		Companies: companyService,
		Reports:   reportService,
	})
	if err != nil {
		return err
	}

	stop := runWatchers(cmd.Context())
	defer stop()

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
