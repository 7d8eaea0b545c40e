package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can run voice
turns, search the knowledge base and list actions.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead; it listens on 127.0.0.1 unless
--host says otherwise.

Every voice turn runs as the caller given by --user, --tier and
--authenticated. MCP clients cannot choose their own tier.

Examples:
  # Stdio mode (default), as an anonymous guest
  voiceos mcp serve

  # HTTP mode (for MCP Inspector) as an authenticated member
  voiceos mcp serve --port 8080 --user m-42 --tier member --authenticated

Client configuration:
  {
    "mcpServers": {
      "voiceos": {
        "command": "/path/to/voiceos",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "HTTP listen address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}
	if voiceService == nil {
		return errors.New("voice service not configured")
	}
	caller, err := currentCaller()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Voice:     voiceService,
		Knowledge: knowledgeService,
		Actions:   actionDispatcher,
		Caller:    caller,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s as %s\n", addr, caller.Tier)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
