package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/mcp"
	"github.com/custodia-labs/paperqa/internal/core/services"
)

const (
	httpPortStart = 8080
	httpPortEnd   = 8180
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Build the index, then serve it over the Model Context Protocol.

The server exposes two tools, ask and retrieve, and one resource,
paperqa://index, with the index statistics. Questions are answered one
at a time.

By default the server communicates over stdio using JSON-RPC. Progress
and errors go to stderr so stdout carries only protocol messages.

Use --port or --http to serve over HTTP instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  paperqa mcp serve --data-dir ~/papers

  # HTTP mode on a fixed port
  paperqa mcp serve --port 8080

  # HTTP mode on the first free port from 8080
  paperqa mcp serve --http

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "paperqa": {
        "command": "/path/to/paperqa",
        "args": ["mcp", "serve", "--data-dir", "/path/to/papers"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("http", false, "serve over HTTP on the first free port from 8080")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	if useHTTP && port == 0 {
		port, err = services.FindAvailablePort(httpPortStart, httpPortEnd)
		if err != nil {
			return err
		}
	}

	qa, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer qa.Close()

	server, err := mcp.NewServer(&mcp.Ports{Answerer: qa})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
