package cli

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve feeds to AI assistants over the Model Context Protocol",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serves feeds, "more like this" matching, roundup ranking and the slot
table to MCP clients.

Tools:     feed_page, more_like_this, rank_roundup, slot_report
Resources: storyfeed://topics, storyfeed://topics/{topicId}/roundups

The server speaks JSON-RPC over stdio unless --port is given, in which case
it serves streamable HTTP (useful with the MCP Inspector).

Examples:
  storyfeed mcp serve
  storyfeed mcp serve --port 8080

Client configuration:
  {"mcpServers": {"storyfeed": {"command": "storyfeed", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 serves over stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Feed:    feedService,
		Topics:  topicService,
		Ranking: rankingService,
		Slots:   slotDiagnostics,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPort <= 0 {
		return server.Run(ctx)
	}

	addr := mcpAddr(mcpHost, mcpPort)
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

func mcpAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
